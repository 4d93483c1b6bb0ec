package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"

	"github.com/rs/zerolog"
)

// Probe checks that the Ed-Fi API is reachable and that the token can read data.
type Probe struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewProbe(cfg *config.Config, client *http.Client) *Probe {
	return &Probe{
		cfg:        cfg,
		httpClient: client,
		log:        logger.Get(),
	}
}

// Check reads the API root document, then counts schools with cred.
func (p *Probe) Check(ctx context.Context, cred model.Credential) (*model.ProbeReport, error) {
	report := &model.ProbeReport{TokenIssued: cred.Valid()}

	rootURL := strings.TrimRight(p.cfg.EdFi.BaseURL, "/") + "/"
	if err := p.getJSON(ctx, rootURL, nil, &report.Root); err != nil {
		return report, fmt.Errorf("failed to read Ed-Fi root: %w", err)
	}

	p.log.Info().
		Str("version", report.Root.Version).
		Int("data_models", len(report.Root.DataModels)).
		Msg("Ed-Fi API reachable")

	if !report.TokenIssued {
		return report, fmt.Errorf("no Ed-Fi token to check data access with")
	}

	var schools []json.RawMessage
	schoolsURL := p.cfg.EdFiResourceURL(string(model.EntitySchools)) + "?totalCount=true"
	header, err := p.get(ctx, schoolsURL, &cred, &schools)
	if err != nil {
		return report, fmt.Errorf("failed to list schools: %w", err)
	}

	report.SchoolCount = len(schools)
	if total, err := strconv.Atoi(header.Get("Total-Count")); err == nil {
		report.SchoolCount = total
	}

	p.log.Info().Int("schools", report.SchoolCount).Msg("Ed-Fi data access verified")
	return report, nil
}

func (p *Probe) getJSON(ctx context.Context, url string, cred *model.Credential, out any) error {
	_, err := p.get(ctx, url, cred, out)
	return err
}

func (p *Probe) get(ctx context.Context, url string, cred *model.Credential, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cred != nil {
		req.Header.Set("Authorization", cred.BearerHeader())
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, httpclient.ReadBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Header, nil
}
