package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hirepay/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Uploads.MaxSizeMiB != 10 {
		t.Fatalf("expected default max upload 10 MiB, got %d", cfg.Uploads.MaxSizeMiB)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
storage_dir = "` + filepath.Join(dir, "docs") + `"
api_bind = "127.0.0.1:0"

[uploads]
max_size_mib = 2
allowed_content_types = ["  Application/PDF ", ""]

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Uploads.MaxSizeMiB != 2 {
		t.Fatalf("expected max upload 2 MiB, got %d", cfg.Uploads.MaxSizeMiB)
	}
	if len(cfg.Uploads.AllowedContentTypes) != 1 || cfg.Uploads.AllowedContentTypes[0] != "application/pdf" {
		t.Fatalf("unexpected content types: %v", cfg.Uploads.AllowedContentTypes)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestContentTypeAllowed(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		contentType string
		want        bool
	}{
		{"application/pdf", true},
		{"Application/PDF", true},
		{"application/pdf; charset=binary", true},
		{"application/msword", true},
		{"image/png", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := cfg.ContentTypeAllowed(tc.contentType); got != tc.want {
			t.Errorf("ContentTypeAllowed(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := config.Default()
	cfg.Uploads.MaxSizeMiB = 10
	if got := cfg.MaxUploadBytes(); got != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d, want %d", got, int64(10<<20))
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path, false); err == nil {
		t.Fatal("expected error writing over existing config")
	}
	if err := config.WriteSample(path, true); err != nil {
		t.Fatalf("WriteSample overwrite: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Paths.APIBind != "127.0.0.1:7319" {
		t.Fatalf("unexpected api bind from sample: %q", cfg.Paths.APIBind)
	}
}
