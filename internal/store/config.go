// Package store handles local persistence: the TOML config file and the
// SQLite session database under the user's config directory.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the user-editable settings.
type Config struct {
	// APIURL is the parsing backend base URL.
	APIURL string `toml:"api_url"`
	// Method selects the parsing backend ("gemini" or "tesseract").
	Method string `toml:"method"`
	// APIKey is an optional key forwarded with uploads. Plain text on disk;
	// prefer the env var for shared machines.
	APIKey string `toml:"api_key"`
	// CountryOfOrigin pre-fills the report metadata form.
	CountryOfOrigin string `toml:"country_of_origin"`
	// Supplier pre-fills the report supplier when the parser detects none.
	Supplier string `toml:"supplier"`
	// RowEstimate is the assumed grid row height in lines before measurement.
	RowEstimate int `toml:"row_estimate"`
	// Overscan is how many extra rows render beyond the viewport edges.
	Overscan int `toml:"overscan"`
}

const defaultConfigTOML = `# customsdesk configuration.
# Settings here can be overridden per run with flags and env vars.

api_url = "http://localhost:8000"
method = "gemini"
api_key = ""
country_of_origin = "Китай"
supplier = ""
row_estimate = 2
overscan = 4
`

func DefaultConfig() Config {
	return Config{
		APIURL:          "http://localhost:8000",
		Method:          "gemini",
		CountryOfOrigin: "Китай",
		RowEstimate:     2,
		Overscan:        4,
	}
}

// ConfigDir returns the customsdesk config directory. CUSTOMSDESK_CONFIG_DIR
// overrides it, which keeps unit tests away from the real user config.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("CUSTOMSDESK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "customsdesk"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadConfig reads the config file, writing one with defaults first if it
// does not exist yet. CUSTOMSDESK_API_URL overrides the stored backend URL.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return cfg, fmt.Errorf("create config dir: %w", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(defaultConfigTOML), 0o644); wErr != nil {
			return cfg, fmt.Errorf("write default config: %w", wErr)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config.toml: %w", err)
	}
	cfg = normalize(cfg)

	if v := strings.TrimSpace(os.Getenv("CUSTOMSDESK_API_URL")); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}

// SaveConfig writes cfg back to the config file atomically.
func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "config.toml.*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if err := toml.NewEncoder(f).Encode(normalize(cfg)); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode config.toml: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func normalize(cfg Config) Config {
	out := cfg
	def := DefaultConfig()
	if strings.TrimSpace(out.APIURL) == "" {
		out.APIURL = def.APIURL
	}
	switch strings.ToLower(strings.TrimSpace(out.Method)) {
	case "tesseract":
		out.Method = "tesseract"
	default:
		out.Method = "gemini"
	}
	if out.RowEstimate < 1 || out.RowEstimate > 10 {
		out.RowEstimate = def.RowEstimate
	}
	if out.Overscan < 0 || out.Overscan > 50 {
		out.Overscan = def.Overscan
	}
	return out
}
