package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultModel is used when neither the config nor the flags name one.
	DefaultModel = "nemotron"
	// DefaultSessionKey is the sqlite row key of the single conversation.
	DefaultSessionKey = "default"
)

// TinychatPath returns the root directory for tinychat data.
// It uses $TINYCHAT_PATH if set, otherwise defaults to ~/.tinychat.
func TinychatPath() string {
	if v := os.Getenv("TINYCHAT_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tinychat")
	}
	return filepath.Join(home, ".tinychat")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(TinychatPath(), "config.jsonc")
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(TinychatPath(), ".env")
}

// LogPath returns the default log file.
func LogPath() string {
	return filepath.Join(TinychatPath(), "tinychat.log")
}

// EventsPath returns the default event journal.
func EventsPath() string {
	return filepath.Join(TinychatPath(), "events.jsonl")
}

// ConversationPath returns the default conversation file for the file store.
func ConversationPath() string {
	return filepath.Join(TinychatPath(), "conversation_cache.json")
}

// DatabasePath returns the default sqlite database.
func DatabasePath() string {
	return filepath.Join(TinychatPath(), "tinychat.db")
}
