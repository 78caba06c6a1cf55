package wird

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

// Store persists the subscription document as a single JSON file.
//
// Load never fails outward: a missing or unreadable file yields a fresh empty
// document (availability over old data; losing a corrupt store is accepted).
// Save always rewrites the whole document. Operations follow load -> mutate ->
// save; the file lock below only serializes file access within this process,
// so two overlapping edits of the same user still resolve last-write-wins.
type Store struct {
	path string
	log  logx.Logger

	mu sync.Mutex
}

func NewStore(path string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

// Init creates the store file with an empty document if it does not exist.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat store: %w", err)
	}
	return s.writeLocked(NewDocument())
}

// Load reads the full document into memory. Corrupt or missing content
// recovers to a fresh empty document.
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("store unreadable; starting empty", logx.String("path", s.path), logx.Err(err))
		}
		return NewDocument()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("store corrupt; starting empty", logx.String("path", s.path), logx.Err(err))
		return NewDocument()
	}
	if doc.Users == nil {
		doc.Users = map[string]Subscription{}
	}
	if doc.NextID == 0 {
		doc.NextID = 1
	}
	return doc
}

// Save writes the full document, overwriting prior content. A write failure
// is surfaced to the caller; it must not be swallowed.
func (s *Store) Save(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(doc)
}

func (s *Store) writeLocked(doc Document) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	// Item names are Arabic; keep them readable in the file rather than
	// \u-escaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
