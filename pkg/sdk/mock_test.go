package refinery

import (
	"context"

	"github.com/servo-app/refinery/internal/domain/geo"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/domain/search/raw"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/domain/search/result"
	healthuc "github.com/servo-app/refinery/internal/usecase/health"
	refineuc "github.com/servo-app/refinery/internal/usecase/refine"
)

// --- refineUseCase mock ---

type mockRefineUC struct {
	refineSearchFn func(ctx context.Context, recs []raw.Record) ([]result.Result, error)
	refineFn       func(ctx context.Context, results []result.Result) ([]result.Result, error)
	withinFn       func(ctx context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Point, error)
	correlateFn    func(ctx context.Context, results []result.Result, points []geo.Point) ([]geo.Point, error)
}

func (m *mockRefineUC) RefineSearch(ctx context.Context, recs []raw.Record) ([]result.Result, error) {
	return m.refineSearchFn(ctx, recs)
}

func (m *mockRefineUC) Refine(ctx context.Context, results []result.Result) ([]result.Result, error) {
	return m.refineFn(ctx, results)
}

func (m *mockRefineUC) Dedupe(ctx context.Context, results []result.Result) ([]result.Result, error) {
	return m.refineFn(ctx, results)
}

func (m *mockRefineUC) FilterBySimilarity(ctx context.Context, results []result.Result) ([]result.Result, error) {
	return m.refineFn(ctx, results)
}

func (m *mockRefineUC) WithinRadius(
	ctx context.Context, q *request.RadiusQuery, points []geo.Point,
) ([]geo.Point, error) {
	return m.withinFn(ctx, q, points)
}

func (m *mockRefineUC) Nearby(
	_ context.Context, _ *request.RadiusQuery, _ []geo.Point,
) ([]geo.Neighbor, error) {
	return nil, nil
}

func (m *mockRefineUC) Correlate(
	ctx context.Context, results []result.Result, points []geo.Point,
) ([]geo.Point, error) {
	return m.correlateFn(ctx, results, points)
}

func (m *mockRefineUC) Similar(_ context.Context, _, _ string, _ float64) refineuc.Comparison {
	return refineuc.Comparison{}
}

// --- historyUseCase mock ---

type mockHistoryUC struct {
	recordFn func(ctx context.Context, visitorID, query string) ([]domhist.Entry, error)
	listFn   func(ctx context.Context, visitorID string) ([]domhist.Entry, error)
	clearFn  func(ctx context.Context, visitorID string) error
	pathFn   func(ctx context.Context, visitorID string) (string, error)
}

func (m *mockHistoryUC) Record(ctx context.Context, visitorID, query string) ([]domhist.Entry, error) {
	return m.recordFn(ctx, visitorID, query)
}

func (m *mockHistoryUC) List(ctx context.Context, visitorID string) ([]domhist.Entry, error) {
	return m.listFn(ctx, visitorID)
}

func (m *mockHistoryUC) Clear(ctx context.Context, visitorID string) error {
	return m.clearFn(ctx, visitorID)
}

func (m *mockHistoryUC) RecordPath(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockHistoryUC) PreviousPath(ctx context.Context, visitorID string) (string, error) {
	return m.pathFn(ctx, visitorID)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
