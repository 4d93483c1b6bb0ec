package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/internal/storage"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"
)

// Source yields the full SIS collection for one entity type. Implementations
// either return every record or an error; there is no partial collection.
type Source interface {
	Fetch(ctx context.Context, creds model.Credentials, entity model.EntityType) (*Collection, error)
	Name() string
	// NeedsSIS reports whether Fetch calls the live SIS API.
	NeedsSIS() bool
}

// Collection keeps the undecoded records so a malformed record fails on its
// own instead of failing the whole fetch.
type Collection struct {
	Entity  model.EntityType
	Raw     []byte
	Records []json.RawMessage
}

func (c *Collection) Len() int {
	return len(c.Records)
}

// NewSource selects the extraction source from config. With extract.snapshot
// set, live responses are also written to storage for later file runs.
func NewSource(cfg *config.Config, store storage.Storage) (Source, error) {
	var src Source
	switch cfg.Extract.Source {
	case config.SourceAPI:
		src = NewAPISource(cfg, httpclient.New(cfg.SIS.Timeout, false))
	case config.SourceFile:
		src = NewFileSource(store)
	case config.SourceXLSX:
		src = NewWorkbookSource(cfg.Extract.Workbook)
	default:
		return nil, fmt.Errorf("%w: unknown extract source %q", apperrors.ErrInvalidConfig, cfg.Extract.Source)
	}

	if cfg.Extract.Snapshot && cfg.Extract.Source != config.SourceFile {
		src = NewSnapshotSource(src, store)
	}
	return src, nil
}

// decodeCollection accepts a bare array or an object wrapping the array under
// the entity name (or "data").
func decodeCollection(entity model.EntityType, data []byte) (*Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty %s document", entity)
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entity, err)
		}
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entity, err)
		}
		inner, ok := wrapper[string(entity)]
		if !ok {
			inner, ok = wrapper["data"]
		}
		if !ok {
			return nil, fmt.Errorf("%s document has no %q array", entity, entity)
		}
		if err := json.Unmarshal(inner, &records); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", entity, err)
		}
	default:
		return nil, fmt.Errorf("%s document is neither an array nor an object", entity)
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	return &Collection{Entity: entity, Raw: data, Records: records}, nil
}

func fetchError(entity model.EntityType, err error) error {
	return &apperrors.FetchError{Entity: string(entity), Err: err}
}
