package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/rs/zerolog"
)

// APISource pulls collections from the live SIS with the run's SIS token.
type APISource struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewAPISource(cfg *config.Config, client *http.Client) *APISource {
	return &APISource{
		cfg:        cfg,
		httpClient: client,
		log:        logger.Get(),
	}
}

func (s *APISource) Name() string { return config.SourceAPI }

func (s *APISource) NeedsSIS() bool { return true }

func (s *APISource) Fetch(ctx context.Context, creds model.Credentials, entity model.EntityType) (*Collection, error) {
	if !creds.SIS.Valid() {
		return nil, fetchError(entity, apperrors.ErrMissingToken)
	}

	s.log.Info().Str("entity", string(entity)).Msg("Fetching from SIS")

	url := s.cfg.SISCollectionURL(string(entity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", creds.SIS.BearerHeader())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fetchError(entity, err)
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, &apperrors.FetchError{
			Entity:     string(entity),
			StatusCode: resp.StatusCode,
			Body:       httpclient.ReadBody(resp.Body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchError(entity, fmt.Errorf("failed to read response: %w", err))
	}

	coll, err := decodeCollection(entity, data)
	if err != nil {
		return nil, fetchError(entity, err)
	}

	s.log.Debug().Str("entity", string(entity)).Int("count", coll.Len()).Msg("Received records from SIS")
	return coll, nil
}
