package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FetchConfig selects and tunes the page retrieval strategy.
type FetchConfig struct {
	// Mode is "chromium" (headless render via chromedp, the default) or
	// "http" (plain conditional GET with a disk cache).
	Mode string `yaml:"mode" json:"mode"`

	// TimeoutSeconds bounds one fetch attempt.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// CacheDir is where the http mode stores its ETag/body cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	// URL is the agenda page to scrape.
	URL string `yaml:"url" json:"url"`

	// Output is the path of the generated ICS file.
	Output string `yaml:"output" json:"output"`

	// Timezone is the IANA zone the agenda's clock times are in.
	Timezone string `yaml:"timezone" json:"timezone"`

	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// RefreshCron is a cron-style schedule used only in daemon mode
	// (e.g. "0 6 * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// SourceLine is the attribution line prepended to every event
	// description.
	SourceLine string `yaml:"source_line" json:"source_line"`

	// ExcludeTitles lists keywords; any event whose title contains one
	// (case-insensitive) is dropped.
	ExcludeTitles []string `yaml:"exclude_titles" json:"exclude_titles"`

	// GarbagePrefixes lists line prefixes filtered out during
	// normalization.
	GarbagePrefixes []string `yaml:"garbage_prefixes" json:"garbage_prefixes"`

	// SectionHeaders lists lines (matched case-insensitively, whole line)
	// that are structural noise on the agenda page.
	SectionHeaders []string `yaml:"section_headers" json:"section_headers"`

	// LocationKeywords lists venue markers; the first line after an event
	// title containing one becomes the event location.
	LocationKeywords []string `yaml:"location_keywords" json:"location_keywords"`

	// DefaultDurationMinutes is used when a timed line has no end time.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`
}

// DefaultConfig returns an in-memory default configuration matching the
// Estepona tourism agenda.
func DefaultConfig() *Config {
	return &Config{
		URL:      "https://turismo.estepona.es/agenda/",
		Output:   "agenda.ics",
		Timezone: "Europe/Madrid",
		Fetch: FetchConfig{
			Mode:           "chromium",
			TimeoutSeconds: 90,
			CacheDir:       "./var/page-cache",
		},
		RefreshCron: "0 6 * * *",
		SourceLine:  "Fuente: turismo.estepona.es/agenda",
		ExcludeTitles: []string{
			"LOUIE LOUIE",
		},
		GarbagePrefixes: []string{
			"Copyright ©",
		},
		SectionHeaders: []string{
			"AGENDA", "DICIEMBRE", "ENERO", "BELENES", "SEMANALES", "EXPOSICIONES",
		},
		LocationKeywords: []string{
			"TEATRO", "PLAZA", "BIBLIOTECA", "CASA", "PALACIO", "POLIDEPORTIVO",
			"IGLESIA", "CALLE", "AVDA", "URBANIZACIÓN", "PUERTO", "CENTRO",
		},
		DefaultDurationMinutes: 120,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.URL == "" {
		c.URL = def.URL
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.Fetch.Mode {
	case "chromium", "http":
		// ok
	default:
		c.Fetch.Mode = def.Fetch.Mode
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = def.Fetch.TimeoutSeconds
	}
	if c.Fetch.CacheDir == "" {
		c.Fetch.CacheDir = def.Fetch.CacheDir
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.SourceLine == "" {
		c.SourceLine = def.SourceLine
	}
	if c.ExcludeTitles == nil {
		c.ExcludeTitles = def.ExcludeTitles
	}
	if c.GarbagePrefixes == nil {
		c.GarbagePrefixes = def.GarbagePrefixes
	}
	if c.SectionHeaders == nil {
		c.SectionHeaders = def.SectionHeaders
	}
	if c.LocationKeywords == nil {
		c.LocationKeywords = def.LocationKeywords
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = def.DefaultDurationMinutes
	}
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600,
//     parent directory created) and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
