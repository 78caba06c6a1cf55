// Package catalog holds the static recitation archive: raw records pointing
// at archived channel uploads, plus a derived index of canonical surah names.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	kit "github.com/SychoAN/Tafsir-Al-Quran-bot/internal/transport"
)

// Record is one archived recitation upload. ChatID/MessageID locate the
// original message so it can be re-forwarded without re-uploading media.
type Record struct {
	Title     string `json:"title"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
}

// Ref returns the forwardable message reference for the record.
func (r Record) Ref() kit.MessageRef {
	return kit.MessageRef{ChatID: r.ChatID, MessageID: r.MessageID}
}

// Load reads the archive index from a JSON file. The catalog is loaded once
// at startup; there is no live reload.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return New(records), nil
}

// Catalog is an immutable value: records in upload order plus the sorted,
// deduplicated canonical name index.
type Catalog struct {
	records []Record
	names   []string
	nameSet map[string]struct{}
}

func New(records []Record) *Catalog {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[CanonicalName(r.Title)] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return &Catalog{records: records, names: names, nameSet: set}
}

// Names returns the distinct canonical names in lexicographic order.
// The returned slice must not be mutated.
func (c *Catalog) Names() []string { return c.names }

func (c *Catalog) Len() int { return len(c.records) }

// HasName reports whether name is one of the canonical names.
func (c *Catalog) HasName(name string) bool {
	_, ok := c.nameSet[name]
	return ok
}

// Resolve returns every record whose title contains name as a substring, in
// catalog order. Substring containment (not exact match) is deliberate: it
// picks up all parts of multi-part recitations sharing one canonical name.
func (c *Catalog) Resolve(name string) []Record {
	var out []Record
	for _, r := range c.records {
		if strings.Contains(r.Title, name) {
			out = append(out, r)
		}
	}
	return out
}

// CanonicalName strips a title's leading ordinal: a run of digit characters,
// then any run of separator characters (space, '-', '_', '.'). A title with
// no leading digits keeps everything past the separator strip; an all-digit
// title yields the empty name.
func CanonicalName(title string) string {
	i := 0
	for _, r := range title {
		if !unicode.IsDigit(r) {
			break
		}
		i += len(string(r))
	}
	return strings.TrimLeft(title[i:], " -_.")
}
