// Package config loads tinychat's configuration: a JSONC or YAML file under
// $TINYCHAT_PATH, with ${{ .Env.VAR }} templates and an optional .env file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for tinychat.
type Config struct {
	Backend BackendConfig `json:"backend" yaml:"backend"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// BackendConfig configures the text-generation backend.
type BackendConfig struct {
	Driver             string         `json:"driver" yaml:"driver"` // "ollama", "openai", "mistral", "anthropic", "gemini"
	BaseURL            string         `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model              string         `json:"model" yaml:"model"` // default model
	Auth               AuthConfig     `json:"auth" yaml:"auth"`
	Timeout            Duration       `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxTokens          int            `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Options            map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	UserAgent          string         `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool           `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

// AuthConfig configures API key resolution.
type AuthConfig struct {
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"` // Direct API key or ${{ .Env.VAR }} template
	Token  string `json:"token,omitempty" yaml:"token,omitempty"`     // Bearer token
}

// StorageConfig selects where the conversation is persisted.
type StorageConfig struct {
	Driver   string `json:"driver" yaml:"driver"`     // "file" or "sqlite"
	Key      string `json:"key" yaml:"key"`           // file path (file) or row key (sqlite)
	Database string `json:"database" yaml:"database"` // sqlite only
}

// LogConfig configures the log file used while the TUI owns the terminal.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	File   string `json:"file" yaml:"file"`
	Events string `json:"events" yaml:"events"` // JSONL event journal
}

// Duration wraps time.Duration for JSON and YAML unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
