package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig(sisURL, edfiURL string) *config.Config {
	cfg := config.Default()
	cfg.SIS.BaseURL = sisURL
	cfg.SIS.Email = "admin@school.edu"
	cfg.SIS.Password = "admin123"
	cfg.EdFi.BaseURL = edfiURL
	cfg.EdFi.ClientID = "minimal"
	cfg.EdFi.ClientSecret = "minimalSecret"
	return cfg
}

func TestAcquireSISToken(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode login body: %v", err)
		}
		if body["email"] != "admin@school.edu" || body["password"] != "admin123" {
			t.Errorf("Unexpected login body %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": signed})
	}))
	defer srv.Close()

	p := NewProvider(testConfig(srv.URL, "http://unused"))

	cred, err := p.Acquire(context.Background(), model.SystemSIS)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if cred.Token != signed {
		t.Errorf("Expected token %q, got %q", signed, cred.Token)
	}
	if !cred.ExpiresAt.Equal(exp) {
		t.Errorf("Expected expiry %v from JWT, got %v", exp, cred.ExpiresAt)
	}

	if _, err := p.Acquire(context.Background(), model.SystemSIS); err != nil {
		t.Fatalf("Second Acquire failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected cached token to avoid a second login, got %d calls", got)
	}

	p.Reset()
	if _, err := p.Acquire(context.Background(), model.SystemSIS); err != nil {
		t.Fatalf("Acquire after Reset failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected Reset to force a new login, got %d calls", got)
	}
}

func TestAcquireEdFiToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form content type, got %q", ct)
		}
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("minimal:minimalSecret"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Expected Authorization %q, got %q", want, got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
		}
		if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
			t.Errorf("Expected client_credentials grant, got %q", gt)
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "opaque-token", "expires_in": 1800})
	}))
	defer srv.Close()

	p := NewProvider(testConfig("http://unused", srv.URL))
	fixed := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	cred, err := p.Acquire(context.Background(), model.SystemEdFi)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if cred.Token != "opaque-token" {
		t.Errorf("Expected opaque-token, got %q", cred.Token)
	}
	if cred.System != model.SystemEdFi {
		t.Errorf("Expected system edfi, got %q", cred.System)
	}
	if want := fixed.Add(30 * time.Minute); !cred.ExpiresAt.Equal(want) {
		t.Errorf("Expected expiry %v from expires_in, got %v", want, cred.ExpiresAt)
	}
}

func TestAcquireFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		system     model.System
		status     int
		body       string
		wantStatus int
		wantErr    error
	}{
		{name: "sis rejects credentials", system: model.SystemSIS, status: http.StatusUnauthorized, body: `{"error":"bad password"}`, wantStatus: 401},
		{name: "edfi rejects client", system: model.SystemEdFi, status: http.StatusBadRequest, body: `{"error":"invalid_client"}`, wantStatus: 400},
		{name: "sis omits token", system: model.SystemSIS, status: http.StatusOK, body: `{"user":{}}`, wantErr: apperrors.ErrMissingToken},
		{name: "edfi omits access_token", system: model.SystemEdFi, status: http.StatusOK, body: `{"token_type":"bearer"}`, wantErr: apperrors.ErrMissingToken},
		{name: "edfi returns html", system: model.SystemEdFi, status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProvider(testConfig(srv.URL, srv.URL))
			_, err := p.Acquire(context.Background(), tt.system)
			if !errors.Is(err, apperrors.ErrAuthenticationFailed) {
				t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
			}

			var authErr *apperrors.AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("Expected *AuthenticationError, got %T", err)
			}
			if authErr.System != string(tt.system) {
				t.Errorf("Expected system %q, got %q", tt.system, authErr.System)
			}
			if authErr.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, authErr.StatusCode)
			}
			if tt.wantStatus != 0 && authErr.Body != tt.body {
				t.Errorf("Expected body %q, got %q", tt.body, authErr.Body)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v in chain, got %v", tt.wantErr, err)
			}

			p.mu.RLock()
			_, cached := p.cache[tt.system]
			p.mu.RUnlock()
			if cached {
				t.Error("Expected failed acquisition to leave cache empty")
			}
		})
	}
}

func TestAcquireUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewProvider(testConfig(url, url))
	if _, err := p.Acquire(context.Background(), model.SystemEdFi); !errors.Is(err, apperrors.ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed for refused connection, got %v", err)
	}
}

func TestTokenExpiryOpaque(t *testing.T) {
	t.Parallel()

	if got := tokenExpiry("not-a-jwt"); !got.IsZero() {
		t.Errorf("Expected zero expiry for opaque token, got %v", got)
	}
}
