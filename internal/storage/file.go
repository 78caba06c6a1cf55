package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

// fileStore is a dependency-free journal backend: one JSON object per line,
// append-only. Reads scan the whole file; journal volume is one line per
// subscriber per day, so this stays cheap.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
	f    *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if !strings.HasSuffix(path, ".jsonl") {
		path += ".jsonl"
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path, f: f}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) AppendDelivery(ctx context.Context, e DeliveryEntry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("journal file closed")
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	return json.NewEncoder(s.f).Encode(e)
}

func (s *fileStore) RecentDeliveries(ctx context.Context, limit int) ([]DeliveryEntry, error) {
	_ = ctx
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []DeliveryEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e DeliveryEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			// Skip torn lines (e.g. crash mid-append).
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
