// Package storage moves pipeline files between local disk and an object store
// that acts as the hand-off point between stages.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
)

// Object keys shared by every stage.
const (
	KeyTicketsCSV  = "tickets.csv"
	KeyDatabase    = "tickets.db"
	KeyEnrichedCSV = "enriched_tickets.csv"
)

// ObjectStore uploads local files to, and downloads them from, a single bucket.
type ObjectStore interface {
	// Upload copies the file at localPath to key.
	Upload(ctx context.Context, localPath, key string) error

	// Download copies key to localPath, creating parent directories as needed.
	// A missing key yields an error wrapping apperrors.ErrObjectNotFound.
	Download(ctx context.Context, key, localPath string) error

	// Location returns a printable location for key, e.g. "s3://bucket/key".
	Location(key string) string
}

// New creates the ObjectStore selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.Backend {
	case config.StorageBackendS3:
		return NewS3Store(ctx, cfg, logger)
	case config.StorageBackendLocal:
		return NewLocalStore(cfg.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
