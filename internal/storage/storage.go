// Package storage holds the blob backends that keep uploaded file bytes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/config"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

// Storage defines the blob operations the file service relies on.
type Storage interface {
	// Save stores r under key and returns the number of bytes written.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)

	// Open returns a reader for the blob at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob at key. A missing blob is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored blob.
	List(ctx context.Context) ([]BlobInfo, error)
}

type BlobInfo struct {
	Key      string
	Size     int64
	Modified time.Time
}

// New builds the backend selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "local":
		slog.Info("initializing local storage", "path", cfg.FileUploadPath)
		local, err := NewLocalStorage(cfg.FileUploadPath)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", cfg.S3Bucket,
			"region", cfg.S3Region,
			"endpoint", cfg.S3Endpoint,
		)
		remote, err := NewS3Storage(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return remote, nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
