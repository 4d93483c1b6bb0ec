package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/internal/storage"

	"github.com/rs/zerolog"
)

// SnapshotSource writes every fetched collection to storage before handing
// it on. A snapshot that cannot be written fails the fetch.
type SnapshotSource struct {
	inner Source
	store storage.Storage
	log   zerolog.Logger
}

func NewSnapshotSource(inner Source, store storage.Storage) *SnapshotSource {
	return &SnapshotSource{inner: inner, store: store, log: logger.Get()}
}

func (s *SnapshotSource) Name() string { return s.inner.Name() }

func (s *SnapshotSource) NeedsSIS() bool { return s.inner.NeedsSIS() }

func (s *SnapshotSource) Fetch(ctx context.Context, creds model.Credentials, entity model.EntityType) (*Collection, error) {
	coll, err := s.inner.Fetch(ctx, creds, entity)
	if err != nil {
		return nil, err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, coll.Raw, "", "    "); err != nil {
		return nil, fmt.Errorf("failed to format %s snapshot: %w", entity, err)
	}
	pretty.WriteByte('\n')

	key := SnapshotKey(entity)
	if err := s.store.Upload(ctx, key, &pretty); err != nil {
		return nil, fmt.Errorf("failed to save %s snapshot: %w", entity, err)
	}

	s.log.Info().Str("key", key).Int("count", coll.Len()).Msg("Saved snapshot")
	return coll, nil
}
