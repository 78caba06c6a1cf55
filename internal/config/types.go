package config

import "fmt"

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Catalog  CatalogConfig  `json:"catalog"`
	Wird     WirdConfig     `json:"wird"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// GroupLog optionally mirrors warnings/errors to a chat (numeric chat id).
	GroupLog string `json:"group_log,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// CatalogConfig points at the static recitation archive index.
type CatalogConfig struct {
	Path string `json:"path"`
}

// WirdConfig controls the daily portion delivery.
//
// DeliverAt is local "HH:MM" in Timezone. Defaults: 05:00, Africa/Cairo,
// matching the announced delivery time.
type WirdConfig struct {
	StorePath string `json:"store_path"`
	DeliverAt string `json:"deliver_at,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// StorageConfig controls the optional delivery journal.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./wird_journal" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

const (
	DefaultDeliverAt = "05:00"
	DefaultTimezone  = "Africa/Cairo"
	DefaultStorePath = "./daily_wird.json"
)

// ApplyDefaults fills optional fields and rejects missing required ones.
func (c *Config) ApplyDefaults() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Wird.StorePath == "" {
		c.Wird.StorePath = DefaultStorePath
	}
	if c.Wird.DeliverAt == "" {
		c.Wird.DeliverAt = DefaultDeliverAt
	}
	if c.Wird.Timezone == "" {
		c.Wird.Timezone = DefaultTimezone
	}
	return nil
}
