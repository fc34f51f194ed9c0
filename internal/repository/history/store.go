package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/servo-app/refinery/internal/db"
	domhist "github.com/servo-app/refinery/internal/domain/history"
)

// DefaultKeyPrefix namespaces history keys.
const DefaultKeyPrefix = "refinery:"

// store is the consumer interface for history operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/history.Repository on top of a key-value store.
// Each visitor's entries live under one JSON-encoded key.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a history repository. ttl applies to every write; zero keeps keys forever.
func New(s store, prefix string, ttl time.Duration) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

// Load returns the stored entries, newest first. A missing key yields no entries.
func (r *Repo) Load(ctx context.Context, visitorID string) ([]domhist.Entry, error) {
	key := r.historyKey(visitorID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []domhist.Entry{}, nil
		}
		return nil, fmt.Errorf("history GET %s: %w", key, err)
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("history GET %s: %w", key, err)
	}
	return entries, nil
}

// Save replaces the visitor's entries and refreshes the TTL.
func (r *Repo) Save(ctx context.Context, visitorID string, entries []domhist.Entry) error {
	key := r.historyKey(visitorID)
	data, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("history SET %s: %w", key, err)
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("history SET %s: %w", key, err)
	}
	return nil
}

// Delete removes the visitor's entries and remembered path.
func (r *Repo) Delete(ctx context.Context, visitorID string) error {
	for _, key := range []string{r.historyKey(visitorID), r.pathKey(visitorID)} {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("history DEL %s: %w", key, err)
		}
	}
	return nil
}

// SavePath stores the last visited path.
func (r *Repo) SavePath(ctx context.Context, visitorID, path string) error {
	key := r.pathKey(visitorID)
	if err := r.store.SetWithTTL(ctx, key, []byte(path), r.ttl); err != nil {
		return fmt.Errorf("history SET %s: %w", key, err)
	}
	return nil
}

// LoadPath returns the last visited path, or "" when none is stored.
func (r *Repo) LoadPath(ctx context.Context, visitorID string) (string, error) {
	key := r.pathKey(visitorID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("history GET %s: %w", key, err)
	}
	return string(data), nil
}

func (r *Repo) historyKey(visitorID string) string {
	return r.prefix + "history:" + visitorID
}

func (r *Repo) pathKey(visitorID string) string {
	return r.prefix + "path:" + visitorID
}
