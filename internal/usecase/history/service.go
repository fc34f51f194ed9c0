package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/servo-app/refinery/internal/domain"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/logger"
)

// maxPathLength bounds a remembered navigation path.
const maxPathLength = 2048

// Service keeps per-visitor search history and the last visited path.
type Service struct {
	repo       Repository
	maxEntries int
	rec        Recorder
	now        func() time.Time
}

// New creates a history service. maxEntries <= 0 uses domhist.DefaultMaxEntries.
func New(repo Repository, maxEntries int, rec Recorder) *Service {
	if maxEntries <= 0 {
		maxEntries = domhist.DefaultMaxEntries
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{repo: repo, maxEntries: maxEntries, rec: rec, now: time.Now}
}

// Record remembers a search and returns the updated history, newest first.
// Concurrent writes for the same visitor are last-writer-wins.
func (s *Service) Record(ctx context.Context, visitorID, query string) ([]domhist.Entry, error) {
	visitorID, err := domhist.ParseVisitor(visitorID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithFields(ctx, zap.String("visitor", visitorID))
	e, err := domhist.NewEntry(query, s.now())
	if err != nil {
		return nil, err
	}

	current, err := s.repo.Load(ctx, visitorID)
	if err != nil {
		return nil, s.fail(ctx, "record", err)
	}
	updated := domhist.Push(current, e, s.maxEntries)
	if err := s.repo.Save(ctx, visitorID, updated); err != nil {
		return nil, s.fail(ctx, "record", err)
	}

	s.rec.History("record", nil)
	logger.FromContext(ctx).Debug("search recorded", zap.Int("entries", len(updated)))
	return updated, nil
}

// List returns the visitor's history, newest first.
func (s *Service) List(ctx context.Context, visitorID string) ([]domhist.Entry, error) {
	visitorID, err := domhist.ParseVisitor(visitorID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithFields(ctx, zap.String("visitor", visitorID))
	entries, err := s.repo.Load(ctx, visitorID)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	if len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}
	s.rec.History("list", nil)
	return entries, nil
}

// Clear forgets the visitor's history and path.
func (s *Service) Clear(ctx context.Context, visitorID string) error {
	visitorID, err := domhist.ParseVisitor(visitorID)
	if err != nil {
		return err
	}
	ctx = logger.WithFields(ctx, zap.String("visitor", visitorID))
	if err := s.repo.Delete(ctx, visitorID); err != nil {
		return s.fail(ctx, "clear", err)
	}
	s.rec.History("clear", nil)
	return nil
}

// RecordPath remembers the last page the visitor navigated to.
func (s *Service) RecordPath(ctx context.Context, visitorID, path string) error {
	visitorID, err := domhist.ParseVisitor(visitorID)
	if err != nil {
		return err
	}
	ctx = logger.WithFields(ctx, zap.String("visitor", visitorID))
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") || len(path) > maxPathLength {
		return domain.NewFieldError("path", "must be an absolute path")
	}
	if err := s.repo.SavePath(ctx, visitorID, path); err != nil {
		return s.fail(ctx, "record_path", err)
	}
	s.rec.History("record_path", nil)
	return nil
}

// PreviousPath returns the last recorded path, or "" when there is none.
func (s *Service) PreviousPath(ctx context.Context, visitorID string) (string, error) {
	visitorID, err := domhist.ParseVisitor(visitorID)
	if err != nil {
		return "", err
	}
	ctx = logger.WithFields(ctx, zap.String("visitor", visitorID))
	p, err := s.repo.LoadPath(ctx, visitorID)
	if err != nil {
		return "", s.fail(ctx, "previous_path", err)
	}
	s.rec.History("previous_path", nil)
	return p, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	s.rec.History(op, err)
	logger.FromContext(ctx).Warn("history store failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %w", domain.ErrHistoryUnavailable, op, err)
}
