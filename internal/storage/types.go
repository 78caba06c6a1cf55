package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the delivery journal.
//
// Driver values:
//   - "file": dependency-free JSON Lines file
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Result classifies what a delivery run did for one user.
const (
	ResultDelivered = "delivered"
	ResultSkipped   = "skipped" // eligibility denied, no messages sent
	ResultFailed    = "failed"  // transport error, isolated to this user
)

// DeliveryEntry records one user's outcome in one delivery run.
// Keep it compact and schema-stable.
type DeliveryEntry struct {
	At        time.Time `json:"at"`
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Items     []string  `json:"items,omitempty"`
	Forwarded int       `json:"forwarded"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
	TookMS    int64     `json:"took_ms"`
}

// Store is the journal API used by the delivery engine.
type Store interface {
	AppendDelivery(ctx context.Context, e DeliveryEntry) error
	RecentDeliveries(ctx context.Context, limit int) ([]DeliveryEntry, error)
	Close() error
}
