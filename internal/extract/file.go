package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/internal/storage"
)

// SnapshotKey is the storage key a collection snapshot is written under.
func SnapshotKey(entity model.EntityType) string {
	return string(entity) + ".json"
}

// FileSource replays snapshots previously written by a fetch.
type FileSource struct {
	store storage.Storage
}

func NewFileSource(store storage.Storage) *FileSource {
	return &FileSource{store: store}
}

func (s *FileSource) Name() string { return config.SourceFile }

func (s *FileSource) NeedsSIS() bool { return false }

func (s *FileSource) Fetch(ctx context.Context, _ model.Credentials, entity model.EntityType) (*Collection, error) {
	key := SnapshotKey(entity)

	rc, err := s.store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fetchError(entity, fmt.Errorf("snapshot %s not found", key))
		}
		return nil, fetchError(entity, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to read snapshot %s: %w", key, err))
	}

	coll, err := decodeCollection(entity, data)
	if err != nil {
		return nil, fetchError(entity, err)
	}
	return coll, nil
}
