package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
	"github.com/ekaya-inc/ticket-insights/pkg/config"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(filepath.Join(dir, "bucket"), zap.NewNop())
	require.NoError(t, err)

	src := filepath.Join(dir, "tickets.csv")
	require.NoError(t, os.WriteFile(src, []byte("ticket_id\n1\n"), 0644))

	require.NoError(t, store.Upload(ctx, src, KeyTicketsCSV))

	dst := filepath.Join(dir, "nested", "out", "tickets.csv")
	require.NoError(t, store.Download(ctx, KeyTicketsCSV, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "ticket_id\n1\n", string(got))
}

func TestLocalStore_UploadOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalStore(filepath.Join(dir, "bucket"), zap.NewNop())
	require.NoError(t, err)

	src := filepath.Join(dir, "tickets.db")
	require.NoError(t, os.WriteFile(src, []byte("v1"), 0644))
	require.NoError(t, store.Upload(ctx, src, KeyDatabase))

	require.NoError(t, os.WriteFile(src, []byte("v2"), 0644))
	require.NoError(t, store.Upload(ctx, src, KeyDatabase))

	dst := filepath.Join(dir, "copy.db")
	require.NoError(t, store.Download(ctx, KeyDatabase, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestLocalStore_DownloadMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	err = store.Download(context.Background(), "missing.csv", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
}

func TestLocalStore_UploadMissingSource(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	err = store.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), KeyTicketsCSV)
	require.Error(t, err)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	for _, key := range []string{"", "../outside", "/etc/passwd", ".."} {
		assert.Error(t, store.Upload(context.Background(), src, key), "key %q", key)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Download(ctx, KeyDatabase, filepath.Join(t.TempDir(), "x.db"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_Location(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, store.Location(KeyEnrichedCSV), "file://")
	assert.Contains(t, store.Location(KeyEnrichedCSV), "enriched_tickets.csv")
}

func TestNew_SelectsBackend(t *testing.T) {
	store, err := New(context.Background(), &config.StorageConfig{
		Backend:  config.StorageBackendLocal,
		LocalDir: t.TempDir(),
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), &config.StorageConfig{Backend: "gcs"}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(context.Background(), &config.StorageConfig{Backend: config.StorageBackendS3}, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrMissingConfig)
}
