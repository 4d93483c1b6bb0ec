package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mcbagz/edSIS/internal/config"
)

// ErrNotFound is returned by Download when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Storage holds extraction snapshots between runs.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageLocal:
		return NewLocalStorage(cfg.Storage.Local.Dir)
	case config.StorageS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
