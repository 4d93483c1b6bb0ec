package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitTeesIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.log")

	closer, err := Init("debug", "json", path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	log := Get()
	log.Info().Str("entity", "schools").Msg("Run summary")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"entity":"schools"`) {
		t.Errorf("Expected log line in file, got %q", data)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", zerolog.GlobalLevel())
	}

	if _, err := Init("info", "console", ""); err != nil {
		t.Fatalf("Init without file failed: %v", err)
	}
}
