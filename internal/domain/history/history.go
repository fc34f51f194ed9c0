// Package history models a visitor's recent search queries.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/similarity"
)

// DefaultMaxEntries caps a visitor's history when nothing else is configured.
const DefaultMaxEntries = 10

// MaxQueryLength bounds a stored query, in runes.
const MaxQueryLength = 256

// Entry is one remembered search.
type Entry struct {
	id         string
	query      string
	searchedAt time.Time
}

// NewEntry validates query and stamps a new entry.
func NewEntry(query string, at time.Time) (Entry, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Entry{}, domain.NewFieldError("query", "is required")
	}
	if r := []rune(q); len(r) > MaxQueryLength {
		q = string(r[:MaxQueryLength])
	}
	return Entry{id: uuid.NewString(), query: q, searchedAt: at.UTC()}, nil
}

// Reconstruct hydrates an entry from storage without validation.
func Reconstruct(id, query string, searchedAt time.Time) Entry {
	return Entry{id: id, query: query, searchedAt: searchedAt}
}

// ID returns the entry identifier.
func (e *Entry) ID() string { return e.id }

// Query returns the search text as typed (trimmed).
func (e *Entry) Query() string { return e.query }

// SearchedAt returns when the search happened.
func (e *Entry) SearchedAt() time.Time { return e.searchedAt }

// Push puts e in front of entries, removes older entries with the same
// normalized query and keeps at most maxEntries. entries is not modified.
func Push(entries []Entry, e Entry, maxEntries int) []Entry {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	key := similarity.Normalize(e.query)

	out := make([]Entry, 0, min(len(entries)+1, maxEntries))
	out = append(out, e)
	for i := range entries {
		if len(out) == maxEntries {
			break
		}
		if similarity.Normalize(entries[i].query) == key {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}

// ParseVisitor checks a visitor identifier and returns it without
// surrounding whitespace. Storage keys are built from the returned id.
func ParseVisitor(visitorID string) (string, error) {
	v := strings.TrimSpace(visitorID)
	if v == "" {
		return "", domain.NewFieldError("visitor", "is required")
	}
	if len(v) > 128 || strings.ContainsAny(v, " \t\n*?[]") {
		return "", domain.NewFieldError("visitor", "is malformed")
	}
	return v, nil
}
