package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/mcbagz/edSIS/pkg/errors"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Extract.Source != SourceAPI {
		t.Errorf("Expected source %q, got %q", SourceAPI, cfg.Extract.Source)
	}
	if cfg.EdFi.DataPath != "/data/v3/ed-fi" {
		t.Errorf("Expected default data path, got %q", cfg.EdFi.DataPath)
	}
	if cfg.Workers.Schedule.Interval != 5*time.Minute {
		t.Errorf("Expected 5m schedule interval, got %v", cfg.Workers.Schedule.Interval)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
edfi:
  base_url: http://localhost:8001
  client_id: minimal
  client_secret: minimalSecret
extract:
  source: file
storage:
  local:
    dir: /tmp/snapshots
mapping:
  placeholders: omit
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.EdFi.BaseURL != "http://localhost:8001" {
		t.Errorf("Expected base url from file, got %q", cfg.EdFi.BaseURL)
	}
	if cfg.EdFi.TokenEndpoint != "/oauth/token" {
		t.Errorf("Expected default token endpoint to survive, got %q", cfg.EdFi.TokenEndpoint)
	}
	if cfg.Storage.Local.Dir != "/tmp/snapshots" {
		t.Errorf("Expected snapshot dir from file, got %q", cfg.Storage.Local.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected file-source config to validate without SIS credentials, got %v", err)
	}
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("edfi: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EDFI_API_BASE_URL", "https://edfi.example.org")
	t.Setenv("EDFI_API_CLIENT_ID", "key")
	t.Setenv("EDFI_API_CLIENT_SECRET", "secret")
	t.Setenv("SIS_ADMIN_EMAIL", "admin@school.edu")
	t.Setenv("SYNC_SOURCE", "file")

	cfg := Default()
	cfg.EdFi.BaseURL = "http://from-file"
	cfg.ApplyEnv()

	if cfg.EdFi.BaseURL != "https://edfi.example.org" {
		t.Errorf("Expected env to win over file, got %q", cfg.EdFi.BaseURL)
	}
	if cfg.SIS.Email != "admin@school.edu" {
		t.Errorf("Expected SIS email from env, got %q", cfg.SIS.Email)
	}
	if cfg.Extract.Source != SourceFile {
		t.Errorf("Expected source from env, got %q", cfg.Extract.Source)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := Default()
		cfg.EdFi.BaseURL = "http://localhost:8001"
		cfg.EdFi.ClientID = "id"
		cfg.EdFi.ClientSecret = "secret"
		cfg.SIS.BaseURL = "http://localhost:5000/api"
		cfg.SIS.Email = "admin@school.edu"
		cfg.SIS.Password = "pw"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "complete api config", mutate: func(*Config) {}},
		{name: "missing edfi secret", mutate: func(c *Config) { c.EdFi.ClientSecret = "" }, wantErr: true},
		{name: "missing sis password for api source", mutate: func(c *Config) { c.SIS.Password = "" }, wantErr: true},
		{name: "xlsx without workbook", mutate: func(c *Config) { c.Extract.Source = SourceXLSX }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Extract.Source = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = StorageS3 }, wantErr: true},
		{name: "unknown placeholder policy", mutate: func(c *Config) { c.Mapping.Placeholders = "guess" }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidatePerSystem(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.EdFi.BaseURL = "http://localhost:8001"
	cfg.EdFi.ClientID = "id"
	cfg.EdFi.ClientSecret = "secret"

	if err := cfg.ValidateEdFi(); err != nil {
		t.Errorf("Expected Ed-Fi settings to validate without SIS, got %v", err)
	}
	if err := cfg.ValidateSIS(); !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("Expected missing SIS settings to be rejected, got %v", err)
	}
}

func TestURLHelpers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.EdFi.BaseURL = "http://localhost:8001/"
	cfg.SIS.BaseURL = "http://localhost:5000/api/"

	if got := cfg.EdFiResourceURL("schools"); got != "http://localhost:8001/data/v3/ed-fi/schools" {
		t.Errorf("Unexpected Ed-Fi resource url %q", got)
	}
	if got := cfg.SISCollectionURL("students"); got != "http://localhost:5000/api/students" {
		t.Errorf("Unexpected SIS collection url %q", got)
	}
}
