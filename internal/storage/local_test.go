package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mcbagz/edSIS/internal/config"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	if ok, err := s.Exists(ctx, "schools.json"); err != nil || ok {
		t.Fatalf("Expected missing object, got ok=%v err=%v", ok, err)
	}

	if err := s.Upload(ctx, "schools.json", strings.NewReader(`[]`)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := s.Upload(ctx, "schools.json", strings.NewReader(`[{"schoolId":1}]`)); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	rc, err := s.Download(ctx, "schools.json")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != `[{"schoolId":1}]` {
		t.Errorf("Expected overwritten content, got %q", data)
	}

	if err := s.Delete(ctx, "schools.json"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Download(ctx, "schools.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "schools.json"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"../outside.json", "/etc/passwd"} {
		if err := s.Upload(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Expected key %q to be rejected", key)
		}
	}
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Storage.Local.Dir = t.TempDir()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("Expected *LocalStorage, got %T", s)
	}

	cfg.Storage.Backend = "ftp"
	if _, err := New(cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
