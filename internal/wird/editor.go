package wird

import (
	"errors"
	"fmt"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

var (
	// ErrDurationOutOfRange rejects durations outside [MinDuration, MaxDuration].
	ErrDurationOutOfRange = errors.New("duration out of range")
	// ErrUnknownName rejects item names absent from the catalog's canonical set.
	ErrUnknownName = errors.New("unknown recitation name")
)

// NameSet answers canonical-name membership; the catalog satisfies it.
type NameSet interface {
	HasName(name string) bool
}

// Editor applies user edits to the subscription store. Every operation is a
// full load -> validate -> mutate -> save cycle against the store; on any
// validation failure the persisted state is left untouched.
type Editor struct {
	store *Store
	names NameSet
	log   logx.Logger
}

func NewEditor(store *Store, names NameSet, log logx.Logger) *Editor {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Editor{store: store, names: names, log: log}
}

// Register records a user on first contact, fixing the delivery destination
// to the chat the contact came from. Returns true if the user was new.
// Registering an existing user is a no-op: the destination is immutable.
func (e *Editor) Register(userID, chatID int64) (bool, error) {
	doc := e.store.Load()
	if _, ok := doc.Get(userID); ok {
		return false, nil
	}
	sub := doc.GetOrDefault(userID)
	sub.ChatID = chatID
	doc.Upsert(userID, sub)
	if err := e.store.Save(doc); err != nil {
		return false, fmt.Errorf("register user %d: %w", userID, err)
	}
	e.log.Info("user registered", logx.Int64("user", userID), logx.Int64("chat", chatID))
	return true, nil
}

// SetDuration sets the daily portion duration in minutes and activates the
// subscription. Returns the progress estimate for the user-facing reply.
func (e *Editor) SetDuration(userID int64, minutes int) (daysNeeded, daily int, err error) {
	if minutes < MinDuration || minutes > MaxDuration {
		return 0, 0, ErrDurationOutOfRange
	}
	doc := e.store.Load()
	sub := doc.GetOrDefault(userID)
	sub.Duration = minutes
	sub.Active = true
	doc.Upsert(userID, sub)
	if err := e.store.Save(doc); err != nil {
		return 0, 0, fmt.Errorf("set duration for %d: %w", userID, err)
	}
	last := ""
	if n := len(sub.Surahs); n > 0 {
		last = sub.Surahs[n-1]
	}
	daysNeeded, daily = Estimate(last, minutes)
	return daysNeeded, daily, nil
}

// AddItem appends a canonical name to the user's portion (duplicates allowed,
// order meaningful) and activates the subscription. Unknown names are
// rejected without touching state.
func (e *Editor) AddItem(userID int64, name string) (daysNeeded, daily int, err error) {
	if e.names == nil || !e.names.HasName(name) {
		return 0, 0, ErrUnknownName
	}
	doc := e.store.Load()
	sub := doc.GetOrDefault(userID)
	sub.Surahs = append(sub.Surahs, name)
	sub.Active = true
	doc.Upsert(userID, sub)
	if err := e.store.Save(doc); err != nil {
		return 0, 0, fmt.Errorf("add item for %d: %w", userID, err)
	}
	daysNeeded, daily = Estimate(name, sub.Duration)
	return daysNeeded, daily, nil
}

// Stop deactivates the subscription. Items and duration are kept so a later
// duration-set or item-add resumes where the user left off.
func (e *Editor) Stop(userID int64) error {
	doc := e.store.Load()
	sub := doc.GetOrDefault(userID)
	sub.Active = false
	doc.Upsert(userID, sub)
	if err := e.store.Save(doc); err != nil {
		return fmt.Errorf("stop wird for %d: %w", userID, err)
	}
	e.log.Info("wird stopped", logx.Int64("user", userID))
	return nil
}
