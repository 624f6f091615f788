package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

var (
	validDrivers        = []string{"ollama", "openai", "mistral", "anthropic", "gemini"}
	validStorageDrivers = []string{"file", "sqlite"}
)

// Load reads a config file, expands ${{ .Env.VAR }} templates, unmarshals it
// into Config and applies defaults. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSONC. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// Expand environment variable templates (before parsing, since templates are in strings)
		expanded := []byte(expandEnvTemplates(string(data)))
		if err := unmarshal(path, expanded, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		return json.Unmarshal(std, cfg)
	}
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Backend.Driver == "" {
		cfg.Backend.Driver = "ollama"
	}
	cfg.Backend.Driver = strings.ToLower(cfg.Backend.Driver)
	if cfg.Backend.Model == "" && cfg.Backend.Driver == "ollama" {
		cfg.Backend.Model = DefaultModel
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.Key == "" {
		if cfg.Storage.Driver == "sqlite" {
			cfg.Storage.Key = DefaultSessionKey
		} else {
			cfg.Storage.Key = ConversationPath()
		}
	}
	if cfg.Storage.Database == "" {
		cfg.Storage.Database = DatabasePath()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = LogPath()
	}
	if cfg.Log.Events == "" {
		cfg.Log.Events = EventsPath()
	}
	// Base URL, timeout and auth defaults are per driver, see internal/models.
}

// Validate reports configuration errors that would prevent startup.
func (c *Config) Validate() error {
	var errs []error
	if !contains(validDrivers, c.Backend.Driver) {
		errs = append(errs, fmt.Errorf("backend.driver %q: must be one of %s", c.Backend.Driver, strings.Join(validDrivers, ", ")))
	}
	if strings.TrimSpace(c.Backend.Model) == "" {
		errs = append(errs, errors.New("backend.model: required"))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout: must not be negative"))
	}
	if !contains(validStorageDrivers, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("storage.driver %q: must be one of %s", c.Storage.Driver, strings.Join(validStorageDrivers, ", ")))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key: required"))
	}
	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
