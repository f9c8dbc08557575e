package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"cityconnect/internal/apperr"
	"cityconnect/internal/config"
	"cityconnect/internal/models"
)

var ErrImageNotFound = apperr.NotFound("image not found")

// ImageStore keeps uploaded images addressed by file name.
type ImageStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]models.StoredImage, error)
}

// New picks the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), cfg.LocalDir))
	case "minio":
		store, err := NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
