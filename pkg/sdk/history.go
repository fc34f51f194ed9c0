package refinery

import (
	"context"
	"fmt"
	"time"
)

// HistoryService keeps per-visitor search history and the last visited path.
type HistoryService struct {
	svc historyUseCase
	obs *observer
}

// Record remembers a search query and returns the updated history, newest first.
// Repeating a query moves it to the front instead of adding a second entry.
func (s *HistoryService) Record(ctx context.Context, visitorID, query string) (_ []HistoryEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("history_record", start, err) }()

	entries, err := s.svc.Record(ctx, visitorID, query)
	if err != nil {
		return nil, fmt.Errorf("record history: %w", err)
	}
	return historyFromDomain(entries), nil
}

// List returns the visitor's history, newest first. Unknown visitors have an empty history.
func (s *HistoryService) List(ctx context.Context, visitorID string) (_ []HistoryEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("history_list", start, err) }()

	entries, err := s.svc.List(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return historyFromDomain(entries), nil
}

// Clear forgets the visitor's history and remembered path.
func (s *HistoryService) Clear(ctx context.Context, visitorID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("history_clear", start, err) }()

	if err = s.svc.Clear(ctx, visitorID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// RecordPath remembers the page the visitor is leaving.
func (s *HistoryService) RecordPath(ctx context.Context, visitorID, path string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("path_record", start, err) }()

	if err = s.svc.RecordPath(ctx, visitorID, path); err != nil {
		return fmt.Errorf("record path: %w", err)
	}
	return nil
}

// PreviousPath returns the last remembered path, or "" when none is stored.
func (s *HistoryService) PreviousPath(ctx context.Context, visitorID string) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("path_previous", start, err) }()

	path, err := s.svc.PreviousPath(ctx, visitorID)
	if err != nil {
		return "", fmt.Errorf("previous path: %w", err)
	}
	return path, nil
}
