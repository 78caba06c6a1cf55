package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none", " NONE "} {
		s, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if s != nil {
			t.Fatalf("Open(%q) returned a store, want nil", driver)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver must fail")
	}
}

func TestFileJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal")
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		entry := DeliveryEntry{
			At:        time.Date(2026, 3, i, 5, 0, 0, 0, time.UTC),
			UserID:    int64(i),
			ChatID:    int64(100 + i),
			Items:     []string{"الكهف"},
			Forwarded: 2,
			Result:    ResultDelivered,
			TookMS:    12,
		}
		if err := s.AppendDelivery(ctx, entry); err != nil {
			t.Fatalf("AppendDelivery: %v", err)
		}
	}

	got, err := s.RecentDeliveries(ctx, 3)
	if err != nil {
		t.Fatalf("RecentDeliveries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Oldest-first order, trimmed to the newest N.
	if got[0].UserID != 3 || got[2].UserID != 5 {
		t.Fatalf("entries = [%d .. %d], want [3 .. 5]", got[0].UserID, got[2].UserID)
	}
	if got[0].Items[0] != "الكهف" || got[0].Result != ResultDelivered {
		t.Fatalf("entry mangled: %+v", got[0])
	}
}

func TestFileJournalSkipsTornLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.AppendDelivery(ctx, DeliveryEntry{UserID: 1, Result: ResultDelivered}); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash mid-append.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"user_id": 2, "resu`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := s.RecentDeliveries(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != 1 {
		t.Fatalf("torn line must be skipped, got %+v", got)
	}
}

func TestFileJournalAppendAfterCloseFails(t *testing.T) {
	s, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "j")}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendDelivery(context.Background(), DeliveryEntry{}); err == nil {
		t.Fatal("append after close must fail")
	}
}

func TestFileDriverRequiresPath(t *testing.T) {
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("file driver without path must fail")
	}
}
