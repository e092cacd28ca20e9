package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore keeps opaque binary objects such as uploaded teaching images.
// Content is never interpreted.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type Object struct {
	Key         string
	Data        []byte
	ContentType string
}

func New(cfg config.StorageConfig, logger zerolog.Logger) (BlobStore, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(), nil
	case "minio":
		return NewMinIOStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
