package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/logging"
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store is an ObjectStore backed by one S3 bucket.
type S3Store struct {
	client s3API
	bucket string
	logger *zap.Logger
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store builds an S3 client from the default AWS credential chain
// (environment, shared config, instance role) and cfg.
func NewS3Store(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: S3_BUCKET_NAME is required", apperrors.ErrMissingConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Named("storage").Debug("S3 store configured",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
		zap.String("endpoint", logging.SanitizeEndpoint(cfg.Endpoint)),
		zap.Bool("path_style", cfg.UsePathStyle))

	return newS3Store(client, cfg.Bucket, logger), nil
}

func newS3Store(client s3API, bucket string, logger *zap.Logger) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		logger: logger.Named("storage"),
	}
}

// Upload implements ObjectStore.
func (s *S3Store) Upload(ctx context.Context, localPath, key string) error {
	s.logger.Info("Uploading file",
		zap.String("path", localPath),
		zap.String("location", s.Location(key)))

	f, err := os.Open(localPath)
	if err != nil {
		s.logger.Error("Upload failed", zap.String("path", localPath), zap.Error(err))
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		s.logger.Error("Upload failed",
			zap.String("path", localPath),
			zap.String("location", s.Location(key)),
			zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("upload %s to %s: %w", localPath, s.Location(key), err)
	}

	s.logger.Info("Upload successful",
		zap.String("location", s.Location(key)),
		zap.Int64("bytes", info.Size()))
	return nil
}

// Download implements ObjectStore.
func (s *S3Store) Download(ctx context.Context, key, localPath string) error {
	s.logger.Info("Downloading file",
		zap.String("location", s.Location(key)),
		zap.String("path", localPath))

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Download failed",
			zap.String("location", s.Location(key)),
			zap.String("error", logging.SanitizeError(err)))

		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("download %s: %w", s.Location(key), apperrors.ErrObjectNotFound)
		}
		return fmt.Errorf("download %s: %w", s.Location(key), err)
	}
	defer out.Body.Close()

	n, err := writeAtomically(localPath, out.Body)
	if err != nil {
		s.logger.Error("Download failed",
			zap.String("location", s.Location(key)),
			zap.String("path", localPath),
			zap.Error(err))
		return fmt.Errorf("write %s: %w", localPath, err)
	}

	s.logger.Info("Download successful",
		zap.String("location", s.Location(key)),
		zap.String("path", localPath),
		zap.Int64("bytes", n))
	return nil
}

// Location implements ObjectStore.
func (s *S3Store) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// writeAtomically streams r into path via a temp file in the same directory.
func writeAtomically(path string, r io.Reader) (int64, error) {
	if err := ensureParentDir(path); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmpName, path)
}
