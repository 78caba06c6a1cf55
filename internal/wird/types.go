// Package wird manages daily-portion subscriptions: the durable per-user
// store, the edit operations driven by chat interaction, and the progress
// estimate shown alongside confirmations.
package wird

import "strconv"

const (
	MinDuration     = 5
	MaxDuration     = 60
	DefaultDuration = 10
)

// Subscription is one user's durable daily-portion configuration.
//
// Surahs keeps insertion order (duplicates allowed); delivery follows it.
// ChatID is the delivery destination, set at first contact and immutable
// afterwards.
type Subscription struct {
	Active   bool     `json:"active"`
	Duration int      `json:"duration"`
	Surahs   []string `json:"surahs"`
	ChatID   int64    `json:"chat_id"`
}

// Document is the full persisted store. It is always written as one unit;
// there are no partial updates. NextID is reserved (no allocation uses it
// yet) but must survive round-trips.
type Document struct {
	Users  map[string]Subscription `json:"users"`
	NextID int                     `json:"next_id"`
}

func NewDocument() Document {
	return Document{Users: map[string]Subscription{}, NextID: 1}
}

func userKey(userID int64) string { return strconv.FormatInt(userID, 10) }

// Get returns the subscription for userID and whether it exists.
func (d Document) Get(userID int64) (Subscription, bool) {
	s, ok := d.Users[userKey(userID)]
	return s, ok
}

// GetOrDefault returns the stored subscription or the zero-value default:
// inactive, 10 minutes, no items, no destination.
func (d Document) GetOrDefault(userID int64) Subscription {
	if s, ok := d.Users[userKey(userID)]; ok {
		return s
	}
	return Subscription{Active: false, Duration: DefaultDuration, Surahs: []string{}}
}

// Upsert replaces the entry for userID.
func (d *Document) Upsert(userID int64, s Subscription) {
	if d.Users == nil {
		d.Users = map[string]Subscription{}
	}
	d.Users[userKey(userID)] = s
}
