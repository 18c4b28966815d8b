// Package storage keeps uploaded résumés and supporting documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go-recruiter-backend/config"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("storage: object not found")
	ErrInvalidName = errors.New("storage: invalid object name")
)

// Storage stores opaque objects addressed by the reference Save returns.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// ObjectName returns a collision-free name keeping only the extension of
// the client's filename.
func ObjectName(ext string) string {
	return uuid.NewString() + strings.ToLower(ext)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// New builds the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return NewS3Storage(ctx, S3Config{
			Provider:        S3Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
	case config.StorageMinio:
		return NewMinioStorage(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return NewLocalStorage(cfg.UploadDir)
	}
}
