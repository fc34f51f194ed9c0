package refinery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/geo"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/domain/search/result"
)

func TestHistory_RecordAndList(t *testing.T) {
	c := newTestClient(t, WithHistory(2, time.Hour, "test:"))
	h := c.History()
	ctx := context.Background()

	for _, q := range []string{"villa", "terrain", "  VILLA "} {
		if _, err := h.Record(ctx, "visitor-1", q); err != nil {
			t.Fatalf("Record(%q): %v", q, err)
		}
	}
	if _, err := h.Record(ctx, "visitor-1", "appartement"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := h.List(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2 (capped)", len(entries))
	}
	if entries[0].Query != "appartement" || entries[1].Query != "VILLA" {
		t.Errorf("queries = %q, %q; want appartement, VILLA", entries[0].Query, entries[1].Query)
	}
	if entries[0].ID == "" || entries[0].SearchedAt.IsZero() {
		t.Errorf("entry not stamped: %+v", entries[0])
	}

	other, err := h.List(ctx, "visitor-2")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unknown visitor has %d entries", len(other))
	}
}

func TestHistory_PathAndClear(t *testing.T) {
	c := newTestClient(t)
	h := c.History()
	ctx := context.Background()

	p, err := h.PreviousPath(ctx, "visitor-1")
	if err != nil || p != "" {
		t.Fatalf("PreviousPath = %q, %v; want empty", p, err)
	}
	if err := h.RecordPath(ctx, "visitor-1", "/annonces/villa-42"); err != nil {
		t.Fatalf("RecordPath: %v", err)
	}
	if _, err := h.Record(ctx, "visitor-1", "villa"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	p, err = h.PreviousPath(ctx, "visitor-1")
	if err != nil || p != "/annonces/villa-42" {
		t.Fatalf("PreviousPath = %q, %v", p, err)
	}

	if err := h.Clear(ctx, "visitor-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := h.List(ctx, "visitor-1")
	p, _ = h.PreviousPath(ctx, "visitor-1")
	if len(entries) != 0 || p != "" {
		t.Errorf("after Clear: %d entries, path %q", len(entries), p)
	}
}

func TestHistory_Validation(t *testing.T) {
	h := newTestClient(t).History()
	ctx := context.Background()

	if _, err := h.Record(ctx, "", "villa"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty visitor error = %v", err)
	}
	if _, err := h.Record(ctx, "v", "   "); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("blank query error = %v", err)
	}
	if err := h.RecordPath(ctx, "v", "annonces"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("relative path error = %v", err)
	}
}

func TestHistory_StoreFailure(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Close()

	_, err = c.History().List(context.Background(), "visitor-1")
	if !errors.Is(err, ErrHistoryUnavailable) {
		t.Fatalf("error = %v, want ErrHistoryUnavailable", err)
	}
}

func TestHistoryService_Mocked(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock := &mockHistoryUC{
		recordFn: func(_ context.Context, visitorID, query string) ([]domhist.Entry, error) {
			if visitorID != "v" || query != "case à vendre" {
				t.Errorf("Record(%q, %q)", visitorID, query)
			}
			return []domhist.Entry{domhist.Reconstruct("e1", query, at)}, nil
		},
		listFn: func(_ context.Context, _ string) ([]domhist.Entry, error) {
			return nil, domain.ErrHistoryUnavailable
		},
		clearFn: func(_ context.Context, _ string) error { return nil },
		pathFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	h := &HistoryService{svc: mock}
	ctx := context.Background()

	entries, err := h.Record(ctx, "v", "case à vendre")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" || !entries[0].SearchedAt.Equal(at) {
		t.Errorf("entries = %+v", entries)
	}

	if _, err := h.List(ctx, "v"); !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("List error = %v", err)
	}
	if err := h.Clear(ctx, "v"); err != nil {
		t.Errorf("Clear error = %v", err)
	}
	if _, err := h.PreviousPath(ctx, "v"); err == nil || !strings.HasPrefix(err.Error(), "previous path:") {
		t.Errorf("PreviousPath error = %v", err)
	}
}

func TestClient_MockedRefineErrors(t *testing.T) {
	boom := errors.New("boom")
	c := &Client{
		radius: radiusLimits{defaultKm: 10, maxKm: 500},
		refineSvc: &mockRefineUC{
			refineFn: func(_ context.Context, results []result.Result) ([]result.Result, error) {
				if len(results) != 1 || results[0].Source() != "Metier" {
					t.Errorf("results not converted: %+v", results)
				}
				return nil, boom
			},
			withinFn: func(_ context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Point, error) {
				if q.RadiusKm() != 10 || len(points) != 1 || points[0].HasCoordinates() {
					t.Errorf("query not converted: radius %v, points %d", q.RadiusKm(), len(points))
				}
				return nil, boom
			},
			correlateFn: func(_ context.Context, _ []result.Result, _ []geo.Point) ([]geo.Point, error) {
				return nil, boom
			},
		},
	}
	ctx := context.Background()

	if _, err := c.Dedupe(ctx, []Result{{ID: "m", Source: "metier"}}); !errors.Is(err, boom) ||
		!strings.HasPrefix(err.Error(), "dedupe:") {
		t.Errorf("Dedupe error = %v", err)
	}
	if _, err := c.WithinRadius(ctx, saintLeu, nil, []Point{{ID: "p", Kind: "USER"}}); !errors.Is(err, boom) {
		t.Errorf("WithinRadius error = %v", err)
	}
	if _, err := c.Correlate(ctx, []Result{}, []Point{}); !errors.Is(err, boom) {
		t.Errorf("Correlate error = %v", err)
	}
}
