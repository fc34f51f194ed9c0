package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servo-app/refinery/internal/domain"
	domhist "github.com/servo-app/refinery/internal/domain/history"
)

// --- Mocks ---

type mockRepo struct {
	entries map[string][]domhist.Entry
	paths   map[string]string
	loadErr error
	saveErr error
	delErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: map[string][]domhist.Entry{}, paths: map[string]string{}}
}

func (m *mockRepo) Load(_ context.Context, v string) ([]domhist.Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.entries[v], nil
}

func (m *mockRepo) Save(_ context.Context, v string, e []domhist.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[v] = e
	return nil
}

func (m *mockRepo) Delete(_ context.Context, v string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.entries, v)
	delete(m.paths, v)
	return nil
}

func (m *mockRepo) SavePath(_ context.Context, v, p string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.paths[v] = p
	return nil
}

func (m *mockRepo) LoadPath(_ context.Context, v string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.paths[v], nil
}

type mockRecorder struct {
	calls map[string]int
	fails map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{calls: map[string]int{}, fails: map[string]int{}}
}

func (m *mockRecorder) History(op string, err error) {
	if err != nil {
		m.fails[op]++
		return
	}
	m.calls[op]++
}

func fixedClock(svc *Service) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// --- Tests ---

func TestRecord_NewestFirstAndDeduped(t *testing.T) {
	repo := newMockRepo()
	rec := newMockRecorder()
	svc := New(repo, 3, rec)
	fixedClock(svc)
	ctx := context.Background()

	for _, q := range []string{"villa", "plombier", "Villa", "terrain", "jardin"} {
		if _, err := svc.Record(ctx, "v1", q); err != nil {
			t.Fatalf("Record(%q): %v", q, err)
		}
	}

	got, err := svc.List(ctx, "v1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"jardin", "terrain", "Villa"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Query() != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i].Query(), want[i])
		}
	}
	if rec.calls["record"] != 5 {
		t.Errorf("record calls = %d, want 5", rec.calls["record"])
	}
}

func TestRecord_InvalidInput(t *testing.T) {
	svc := New(newMockRepo(), 0, nil)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "", "villa"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty visitor error = %v", err)
	}
	if _, err := svc.Record(ctx, "v1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("blank query error = %v", err)
	}
}

func TestVisitorIDTrimmed(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, 0, nil)
	fixedClock(svc)
	ctx := context.Background()

	if _, err := svc.Record(ctx, " abc", "villa"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(ctx, "abc\n", "plombier"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.RecordPath(ctx, "\tabc ", "/recherche"); err != nil {
		t.Fatalf("RecordPath: %v", err)
	}

	got, err := svc.List(ctx, "abc")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Query() != "plombier" {
		t.Errorf("padded ids must share one history, got %d entries", len(got))
	}
	if p, _ := svc.PreviousPath(ctx, "abc"); p != "/recherche" {
		t.Errorf("PreviousPath = %q", p)
	}
	if len(repo.entries) != 1 || len(repo.paths) != 1 {
		t.Errorf("stored keys: entries %d, paths %d, want 1 each", len(repo.entries), len(repo.paths))
	}
	if err := svc.Clear(ctx, " abc "); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(repo.entries) != 0 || len(repo.paths) != 0 {
		t.Error("Clear with a padded id left data behind")
	}
}

func TestRecord_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.loadErr = errors.New("connection refused")
	rec := newMockRecorder()
	svc := New(repo, 0, rec)

	_, err := svc.Record(context.Background(), "v1", "villa")
	if !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable, got %v", err)
	}
	if rec.fails["record"] != 1 {
		t.Errorf("record failures = %d, want 1", rec.fails["record"])
	}
}

func TestList_Empty(t *testing.T) {
	svc := New(newMockRepo(), 0, nil)
	got, err := svc.List(context.Background(), "v1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestClear(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, 0, nil)
	ctx := context.Background()

	_, _ = svc.Record(ctx, "v1", "villa")
	_ = svc.RecordPath(ctx, "v1", "/recherche")
	if err := svc.Clear(ctx, "v1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(repo.entries["v1"]) != 0 || repo.paths["v1"] != "" {
		t.Error("history not cleared")
	}
}

func TestClear_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.delErr = errors.New("READONLY")
	svc := New(repo, 0, nil)
	if err := svc.Clear(context.Background(), "v1"); !errors.Is(err, domain.ErrHistoryUnavailable) {
		t.Fatalf("expected ErrHistoryUnavailable, got %v", err)
	}
}

func TestPath(t *testing.T) {
	svc := New(newMockRepo(), 0, nil)
	ctx := context.Background()

	p, err := svc.PreviousPath(ctx, "v1")
	if err != nil || p != "" {
		t.Fatalf("PreviousPath before record = %q, %v", p, err)
	}
	if err := svc.RecordPath(ctx, "v1", "/annonces/42"); err != nil {
		t.Fatalf("RecordPath: %v", err)
	}
	p, err = svc.PreviousPath(ctx, "v1")
	if err != nil || p != "/annonces/42" {
		t.Fatalf("PreviousPath = %q, %v", p, err)
	}
}

func TestRecordPath_Invalid(t *testing.T) {
	svc := New(newMockRepo(), 0, nil)
	for _, p := range []string{"", "annonces", "https://example.com/x"} {
		if err := svc.RecordPath(context.Background(), "v1", p); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("RecordPath(%q) error = %v, want ErrInvalidArgument", p, err)
		}
	}
}
