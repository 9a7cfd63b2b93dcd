package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
)

// LocalStore is an ObjectStore backed by a directory. Keys map to files under root.
type LocalStore struct {
	root   string
	logger *zap.Logger
}

var _ ObjectStore = (*LocalStore)(nil)

// NewLocalStore creates root if needed and returns a store rooted there.
func NewLocalStore(root string, logger *zap.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create local storage root: %w", err)
	}
	return &LocalStore{
		root:   root,
		logger: logger.Named("storage"),
	}, nil
}

// Upload implements ObjectStore.
func (s *LocalStore) Upload(ctx context.Context, localPath, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest, err := s.objectPath(key)
	if err != nil {
		return err
	}

	s.logger.Info("Uploading file",
		zap.String("path", localPath),
		zap.String("location", s.Location(key)))

	if err := copyFile(localPath, dest); err != nil {
		s.logger.Error("Upload failed",
			zap.String("path", localPath),
			zap.String("location", s.Location(key)),
			zap.Error(err))
		return fmt.Errorf("upload %s to %s: %w", localPath, s.Location(key), err)
	}

	s.logger.Info("Upload successful", zap.String("location", s.Location(key)))
	return nil
}

// Download implements ObjectStore.
func (s *LocalStore) Download(ctx context.Context, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := s.objectPath(key)
	if err != nil {
		return err
	}

	s.logger.Info("Downloading file",
		zap.String("location", s.Location(key)),
		zap.String("path", localPath))

	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Download failed: object missing", zap.String("location", s.Location(key)))
		return fmt.Errorf("download %s: %w", s.Location(key), apperrors.ErrObjectNotFound)
	}

	if err := copyFile(src, localPath); err != nil {
		s.logger.Error("Download failed",
			zap.String("location", s.Location(key)),
			zap.String("path", localPath),
			zap.Error(err))
		return fmt.Errorf("download %s to %s: %w", s.Location(key), localPath, err)
	}

	s.logger.Info("Download successful",
		zap.String("location", s.Location(key)),
		zap.String("path", localPath))
	return nil
}

// Location implements ObjectStore.
func (s *LocalStore) Location(key string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.root, key))
}

// objectPath maps key to a file under root, rejecting keys that escape it.
func (s *LocalStore) objectPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// copyFile copies src to dst without exposing a partially written dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = writeAtomically(dst, in)
	return err
}
