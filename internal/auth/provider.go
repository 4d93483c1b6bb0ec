package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/rs/zerolog"
)

// Provider obtains one bearer token per system and caches it for the life of
// a run. There is no refresh: a token rejected mid-run fails that record only.
type Provider struct {
	cfg        *config.Config
	sisClient  *http.Client
	edfiClient *http.Client
	cache      map[model.System]model.Credential
	mu         sync.RWMutex
	now        func() time.Time
	log        zerolog.Logger
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		cfg:        cfg,
		sisClient:  httpclient.New(cfg.SIS.Timeout, false),
		edfiClient: httpclient.New(cfg.EdFi.Timeout, cfg.EdFi.InsecureSkipVerify),
		cache:      make(map[model.System]model.Credential),
		now:        time.Now,
		log:        logger.Get(),
	}
}

func (p *Provider) Acquire(ctx context.Context, system model.System) (model.Credential, error) {
	p.mu.RLock()
	if cred, ok := p.cache[system]; ok {
		p.mu.RUnlock()
		return cred, nil
	}
	p.mu.RUnlock()

	return p.acquire(ctx, system)
}

// Reset drops cached tokens so the next run authenticates again.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[model.System]model.Credential)
}

func (p *Provider) acquire(ctx context.Context, system model.System) (model.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Double check after acquiring write lock
	if cred, ok := p.cache[system]; ok {
		return cred, nil
	}

	var (
		cred model.Credential
		err  error
	)
	switch system {
	case model.SystemSIS:
		cred, err = p.loginSIS(ctx)
	case model.SystemEdFi:
		cred, err = p.exchangeEdFi(ctx)
	default:
		return model.Credential{}, &apperrors.AuthenticationError{
			System: string(system),
			Err:    fmt.Errorf("unknown system %q", system),
		}
	}
	if err != nil {
		return model.Credential{}, err
	}

	p.cache[system] = cred

	event := p.log.Info().Str("system", string(system))
	if !cred.ExpiresAt.IsZero() {
		event = event.Time("expires_at", cred.ExpiresAt)
	}
	event.Msg("Obtained access token")

	return cred, nil
}

func (p *Provider) loginSIS(ctx context.Context) (model.Credential, error) {
	authData := map[string]string{
		"email":    p.cfg.SIS.Email,
		"password": p.cfg.SIS.Password,
	}

	jsonData, err := json.Marshal(authData)
	if err != nil {
		return model.Credential{}, authError(model.SystemSIS, fmt.Errorf("failed to marshal auth data: %w", err))
	}

	loginURL := strings.TrimRight(p.cfg.SIS.BaseURL, "/") + p.cfg.SIS.LoginEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return model.Credential{}, authError(model.SystemSIS, fmt.Errorf("failed to create auth request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	p.log.Debug().Str("url", loginURL).Msg("Logging in to SIS")

	resp, err := p.sisClient.Do(req)
	if err != nil {
		return model.Credential{}, authError(model.SystemSIS, fmt.Errorf("auth request failed: %w", err))
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return model.Credential{}, &apperrors.AuthenticationError{
			System:     string(model.SystemSIS),
			StatusCode: resp.StatusCode,
			Body:       httpclient.ReadBody(resp.Body),
		}
	}

	var tokenResp model.AuthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return model.Credential{}, authError(model.SystemSIS, fmt.Errorf("failed to decode auth response: %w", err))
	}
	if tokenResp.Token == "" {
		return model.Credential{}, authError(model.SystemSIS, apperrors.ErrMissingToken)
	}

	return model.Credential{
		System:     model.SystemSIS,
		Token:      tokenResp.Token,
		AcquiredAt: p.now(),
		ExpiresAt:  tokenExpiry(tokenResp.Token),
	}, nil
}

func (p *Provider) exchangeEdFi(ctx context.Context) (model.Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	tokenURL := strings.TrimRight(p.cfg.EdFi.BaseURL, "/") + p.cfg.EdFi.TokenEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return model.Credential{}, authError(model.SystemEdFi, fmt.Errorf("failed to create token request: %w", err))
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(p.cfg.EdFi.ClientID, p.cfg.EdFi.ClientSecret)

	p.log.Debug().Str("url", tokenURL).Str("client_id", p.cfg.EdFi.ClientID).Msg("Requesting Ed-Fi token")

	resp, err := p.edfiClient.Do(req)
	if err != nil {
		return model.Credential{}, authError(model.SystemEdFi, fmt.Errorf("token request failed: %w", err))
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return model.Credential{}, &apperrors.AuthenticationError{
			System:     string(model.SystemEdFi),
			StatusCode: resp.StatusCode,
			Body:       httpclient.ReadBody(resp.Body),
		}
	}

	var tokenResp model.OAuthTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return model.Credential{}, authError(model.SystemEdFi, fmt.Errorf("failed to decode token response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return model.Credential{}, authError(model.SystemEdFi, apperrors.ErrMissingToken)
	}

	acquiredAt := p.now()
	expiresAt := tokenExpiry(tokenResp.AccessToken)
	if expiresAt.IsZero() && tokenResp.ExpiresIn > 0 {
		expiresAt = acquiredAt.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return model.Credential{
		System:     model.SystemEdFi,
		Token:      tokenResp.AccessToken,
		AcquiredAt: acquiredAt,
		ExpiresAt:  expiresAt,
	}, nil
}

func authError(system model.System, err error) error {
	return &apperrors.AuthenticationError{System: string(system), Err: err}
}
