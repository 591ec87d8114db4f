package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendacal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.URL != "https://turismo.estepona.es/agenda/" {
		t.Errorf("URL = %q, want default agenda URL", cfg.URL)
	}
	if cfg.Timezone != "Europe/Madrid" {
		t.Errorf("Timezone = %q, want Europe/Madrid", cfg.Timezone)
	}
	if cfg.Fetch.Mode != "chromium" {
		t.Errorf("Fetch.Mode = %q, want chromium", cfg.Fetch.Mode)
	}
	if cfg.DefaultDurationMinutes != 120 {
		t.Errorf("DefaultDurationMinutes = %d, want 120", cfg.DefaultDurationMinutes)
	}

	// The default config file must now exist with restricted permissions.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perm = %o, want 600", perm)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendacal.yaml")

	cfg := DefaultConfig()
	cfg.URL = "https://example.org/agenda/"
	cfg.Output = "/tmp/out.ics"
	cfg.ExcludeTitles = []string{"LOUIE LOUIE", "CANCELADO"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.URL != cfg.URL {
		t.Errorf("URL = %q, want %q", loaded.URL, cfg.URL)
	}
	if loaded.Output != cfg.Output {
		t.Errorf("Output = %q, want %q", loaded.Output, cfg.Output)
	}
	if len(loaded.ExcludeTitles) != 2 || loaded.ExcludeTitles[1] != "CANCELADO" {
		t.Errorf("ExcludeTitles = %v, want %v", loaded.ExcludeTitles, cfg.ExcludeTitles)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{Timezone: "Europe/Madrid"}
	cfg.Normalize()

	if cfg.URL == "" {
		t.Error("URL not defaulted")
	}
	if cfg.Output == "" {
		t.Error("Output not defaulted")
	}
	if cfg.Fetch.Mode != "chromium" {
		t.Errorf("Fetch.Mode = %q, want chromium", cfg.Fetch.Mode)
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		t.Error("Fetch.TimeoutSeconds not defaulted")
	}
	if len(cfg.SectionHeaders) == 0 {
		t.Error("SectionHeaders not defaulted")
	}
	if len(cfg.LocationKeywords) == 0 {
		t.Error("LocationKeywords not defaulted")
	}
	if cfg.DefaultDurationMinutes != 120 {
		t.Errorf("DefaultDurationMinutes = %d, want 120", cfg.DefaultDurationMinutes)
	}
}

func TestNormalizeRejectsUnknownFetchMode(t *testing.T) {
	cfg := &Config{Fetch: FetchConfig{Mode: "carrier-pigeon"}}
	cfg.Normalize()

	if cfg.Fetch.Mode != "chromium" {
		t.Errorf("Fetch.Mode = %q, want fallback to chromium", cfg.Fetch.Mode)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location failed: %v", err)
	}
	if loc.String() != "Europe/Madrid" {
		t.Errorf("location = %q, want Europe/Madrid", loc)
	}

	cfg.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
