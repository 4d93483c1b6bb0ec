package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/pkg/errors"

	"github.com/rs/zerolog"
)

// Loader posts mapped resources to the Ed-Fi API one at a time. It never
// retries; every outcome, good or bad, is returned to the caller.
type Loader struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func New(cfg *config.Config, client *http.Client) *Loader {
	return &Loader{
		cfg:        cfg,
		httpClient: client,
		log:        logger.Get(),
	}
}

// Upload sends one resource. key is the record's natural key, used only for
// reporting.
func (l *Loader) Upload(ctx context.Context, cred model.Credential, resourceType model.EntityType, key string, resource model.EdFiResource) model.UploadResult {
	result := model.UploadResult{Resource: resourceType, Key: key}

	fail := func(status int, body string, err error) model.UploadResult {
		result.StatusCode = status
		result.Body = body
		result.Err = &errors.UploadError{
			Resource:   string(resourceType),
			Key:        key,
			StatusCode: status,
			Body:       body,
			Err:        err,
		}
		return result
	}

	jsonData, err := json.Marshal(resource)
	if err != nil {
		return fail(0, "", fmt.Errorf("failed to marshal resource: %w", err))
	}

	url := l.cfg.EdFiResourceURL(string(resourceType))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fail(0, "", fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", cred.BearerHeader())

	l.log.Debug().Str("resource", string(resourceType)).Str("key", key).Msg("Uploading to Ed-Fi")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	body := httpclient.ReadBody(resp.Body)
	if !httpclient.IsSuccess(resp.StatusCode) {
		// 401 here means the token expired mid-run; it is reported like any
		// other rejected record.
		return fail(resp.StatusCode, body, nil)
	}

	result.StatusCode = resp.StatusCode
	result.Body = body
	return result
}
