package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"114-An-Nas", "An-Nas"},
		{"003_Al-Imran", "Al-Imran"},
		{"01 - An-Nas", "An-Nas"},
		{"2 Baqarah", "Baqarah"},
		{"Al-Fatiha", "Al-Fatiha"},
		{"123", ""},
		{"", ""},
		{"1.Fatiha", "Fatiha"},
		{"001 سورة الفاتحة", "سورة الفاتحة"},
	}
	for _, c := range cases {
		if got := CanonicalName(c.title); got != c.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestNamesDedupAndSort(t *testing.T) {
	c := New([]Record{
		{Title: "2 Baqarah", ChatID: 1, MessageID: 1},
		{Title: "02-Baqarah", ChatID: 1, MessageID: 2},
		{Title: "1 Fatiha", ChatID: 1, MessageID: 3},
	})
	want := []string{"Baqarah", "Fatiha"}
	if !reflect.DeepEqual(c.Names(), want) {
		t.Fatalf("Names() = %v, want %v", c.Names(), want)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if !c.HasName("Baqarah") || c.HasName("2 Baqarah") {
		t.Fatal("HasName must match canonical names only")
	}
}

func TestResolveSubstringKeepsCatalogOrder(t *testing.T) {
	c := New([]Record{
		{Title: "001 Kahf part 1", MessageID: 10},
		{Title: "002 Mulk", MessageID: 20},
		{Title: "003 Kahf part 2", MessageID: 30},
	})

	got := c.Resolve("Kahf")
	if len(got) != 2 {
		t.Fatalf("Resolve returned %d records, want 2", len(got))
	}
	if got[0].MessageID != 10 || got[1].MessageID != 30 {
		t.Fatalf("Resolve order = [%d %d], want [10 30]", got[0].MessageID, got[1].MessageID)
	}

	// Containment, not equality: a short name matches every title holding it.
	if n := len(c.Resolve("Mulk part")); n != 0 {
		t.Fatalf("Resolve(%q) returned %d records, want 0", "Mulk part", n)
	}
	if n := len(c.Resolve("")); n != 3 {
		t.Fatalf("Resolve(empty) returned %d records, want all 3", n)
	}
}

func TestLoad(t *testing.T) {
	records := []Record{
		{Title: "001 Fatiha", ChatID: -100123, MessageID: 7},
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 || !c.HasName("Fatiha") {
		t.Fatalf("unexpected catalog: len=%d names=%v", c.Len(), c.Names())
	}
	ref := c.Resolve("Fatiha")[0].Ref()
	if ref.ChatID != -100123 || ref.MessageID != 7 {
		t.Fatalf("Ref() = %+v", ref)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load of missing file must fail")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed file must fail")
	}
}
