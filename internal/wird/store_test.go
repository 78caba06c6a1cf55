package wird

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	logx "github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "daily_wird.json"), logx.Nop())
}

func TestLoadMissingFileReturnsEmptyDocument(t *testing.T) {
	s := newTestStore(t)
	doc := s.Load()
	if doc.Users == nil || len(doc.Users) != 0 {
		t.Fatalf("Users = %v, want empty map", doc.Users)
	}
	if doc.NextID != 1 {
		t.Fatalf("NextID = %d, want 1", doc.NextID)
	}
}

func TestLoadCorruptFileRecovers(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{{{ not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := s.Load()
	if len(doc.Users) != 0 || doc.NextID != 1 {
		t.Fatalf("corrupt store must recover empty, got %+v", doc)
	}
}

func TestInitCreatesOnce(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	doc := s.Load()
	doc.Upsert(42, Subscription{Active: true, Duration: 10, ChatID: 42})
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second Init must not wipe existing content.
	if err := s.Init(); err != nil {
		t.Fatalf("Init again: %v", err)
	}
	if _, ok := s.Load().Get(42); !ok {
		t.Fatal("Init overwrote existing store")
	}
}

func TestSaveRoundTripAndFileShape(t *testing.T) {
	s := newTestStore(t)
	doc := NewDocument()
	doc.Upsert(1001, Subscription{
		Active:   true,
		Duration: 15,
		Surahs:   []string{"الفاتحة", "الكهف", "الكهف"},
		ChatID:   -100555,
	})
	doc.NextID = 7
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := s.Load()
	sub, ok := got.Get(1001)
	if !ok {
		t.Fatal("user 1001 missing after round trip")
	}
	if !sub.Active || sub.Duration != 15 || sub.ChatID != -100555 {
		t.Fatalf("subscription mangled: %+v", sub)
	}
	if len(sub.Surahs) != 3 || sub.Surahs[0] != "الفاتحة" || sub.Surahs[2] != "الكهف" {
		t.Fatalf("surahs mangled: %v", sub.Surahs)
	}
	if got.NextID != 7 {
		t.Fatalf("NextID = %d, want 7", got.NextID)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{`"users"`, `"next_id"`, `"1001"`, "الفاتحة", "\n  "} {
		if !strings.Contains(text, want) {
			t.Errorf("store file missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, `\u`) {
		t.Errorf("store file must keep Arabic readable, got escapes:\n%s", text)
	}
}

// Overlapping load-mutate-save cycles resolve last-write-wins: the second
// save overwrites the first one's user. This documents the accepted race of
// whole-document persistence; it is not a durability guarantee.
func TestConcurrentEditsLastWriteWins(t *testing.T) {
	s := newTestStore(t)

	docA := s.Load()
	docB := s.Load()

	docA.Upsert(1, Subscription{Active: true, Duration: 10, ChatID: 1})
	docB.Upsert(2, Subscription{Active: true, Duration: 20, ChatID: 2})

	if err := s.Save(docA); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(docB); err != nil {
		t.Fatal(err)
	}

	final := s.Load()
	if _, ok := final.Get(2); !ok {
		t.Fatal("last write must win")
	}
	if _, ok := final.Get(1); ok {
		t.Fatal("first write must be overwritten by the second full-document save")
	}
}
