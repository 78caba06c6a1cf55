// Package session tracks short-lived per-user input state: after tapping
// "set duration" or "add surah" the bot waits for the user's next text
// message. The state is in-memory only and independent of the durable
// subscription store.
package session

import "sync"

type Action int

const (
	ActionNone Action = iota
	ActionAwaitDuration
	ActionAwaitItemName
)

func (a Action) String() string {
	switch a {
	case ActionAwaitDuration:
		return "await_duration"
	case ActionAwaitItemName:
		return "await_item_name"
	default:
		return "none"
	}
}

// Manager is a concurrency-safe pending-action map keyed by user ID.
type Manager struct {
	mu      sync.Mutex
	pending map[int64]Action
}

func NewManager() *Manager {
	return &Manager{pending: map[int64]Action{}}
}

// Set replaces the user's pending action.
func (m *Manager) Set(userID int64, a Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a == ActionNone {
		delete(m.pending, userID)
		return
	}
	m.pending[userID] = a
}

// Get returns the user's pending action without clearing it; retryable
// validation failures keep the user in the same state.
func (m *Manager) Get(userID int64) Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[userID]
}

// Clear drops the user's pending action.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, userID)
}
