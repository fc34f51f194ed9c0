package refine

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/geo"
	"github.com/servo-app/refinery/internal/domain/search/dedupe"
	"github.com/servo-app/refinery/internal/domain/search/raw"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/similarity"
	"github.com/servo-app/refinery/internal/logger"
)

// Refinement stages reported to the Recorder.
const (
	StageInput          = "input"
	StageSkippedInvalid = "skipped_invalid"
	StageDroppedFalsy   = "dropped_falsy"
	StageDroppedExact   = "dropped_exact"
	StageDroppedNear    = "dropped_near"
	StageOutput         = "output"
)

// Service applies result refinement and geo filtering to one request at a time.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	collapser  dedupe.Collapser
	maxResults int
	rec        Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithMaxResults rejects inputs longer than n. Zero disables the cap.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.rec = r
		}
	}
}

// New creates a refinement service.
func New(collapser dedupe.Collapser, opts ...Option) *Service {
	s := &Service{collapser: collapser, rec: nopRecorder{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RefineSearch normalizes raw backend records, drops falsy-similarity hits and
// collapses duplicates. Records without an id are skipped.
func (s *Service) RefineSearch(ctx context.Context, recs []raw.Record) ([]result.Result, error) {
	if recs == nil {
		return nil, domain.NewFieldError("results", "is required")
	}
	if err := s.checkLimit(len(recs)); err != nil {
		return nil, err
	}

	normalized, skipped := raw.NormalizeAll(recs)
	out, rep := s.collapser.Refine(normalized)
	rep.Input = len(recs)

	s.observe(ctx, "refine_search", rep, skipped)
	return out, nil
}

// Refine runs the similarity gate then deduplication on canonical results.
func (s *Service) Refine(ctx context.Context, results []result.Result) ([]result.Result, error) {
	if err := s.checkResults(results); err != nil {
		return nil, err
	}
	out, rep := s.collapser.Refine(results)
	s.observe(ctx, "refine", rep, 0)
	return out, nil
}

// Dedupe collapses exact and near-duplicate results.
func (s *Service) Dedupe(ctx context.Context, results []result.Result) ([]result.Result, error) {
	if err := s.checkResults(results); err != nil {
		return nil, err
	}
	out, rep := s.collapser.Dedupe(results)
	s.observe(ctx, "dedupe", rep, 0)
	return out, nil
}

// FilterBySimilarity drops results whose similarity flag is falsy.
func (s *Service) FilterBySimilarity(ctx context.Context, results []result.Result) ([]result.Result, error) {
	if err := s.checkResults(results); err != nil {
		return nil, err
	}
	out, dropped := s.collapser.FilterBySimilarityThreshold(results)
	s.observe(ctx, "filter_similarity", dedupe.Report{
		Input: len(results), DroppedFalsy: dropped, Output: len(out),
	}, 0)
	return out, nil
}

// WithinRadius returns the points inside the query radius, in input order.
func (s *Service) WithinRadius(ctx context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Point, error) {
	if points == nil {
		return nil, domain.NewFieldError("points", "is required")
	}
	if err := s.checkLimit(len(points)); err != nil {
		return nil, err
	}
	out := geo.PointsWithinRadius(q.Center(), points, q.RadiusKm())
	s.rec.Operation("within_radius")
	logger.FromContext(ctx).Debug("radius filter",
		zap.Float64("radius_km", q.RadiusKm()),
		zap.Int("input", len(points)),
		zap.Int("output", len(out)),
	)
	return out, nil
}

// Nearby returns the points inside the query radius, nearest first.
func (s *Service) Nearby(ctx context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Neighbor, error) {
	if points == nil {
		return nil, domain.NewFieldError("points", "is required")
	}
	if err := s.checkLimit(len(points)); err != nil {
		return nil, err
	}
	out := geo.Nearby(q.Center(), points, q.RadiusKm())
	s.rec.Operation("nearby")
	logger.FromContext(ctx).Debug("nearby points",
		zap.Float64("radius_km", q.RadiusKm()),
		zap.Int("input", len(points)),
		zap.Int("output", len(out)),
	)
	return out, nil
}

// Correlate keeps the map points that back a Property result.
func (s *Service) Correlate(ctx context.Context, results []result.Result, points []geo.Point) ([]geo.Point, error) {
	if err := s.checkResults(results); err != nil {
		return nil, err
	}
	if points == nil {
		return nil, domain.NewFieldError("points", "is required")
	}
	if err := s.checkLimit(len(points)); err != nil {
		return nil, err
	}
	out := geo.CorrelateByTypeAndFilter(results, points)
	s.rec.Operation("correlate")
	logger.FromContext(ctx).Debug("correlated points",
		zap.Int("results", len(results)),
		zap.Int("points", len(points)),
		zap.Int("output", len(out)),
	)
	return out, nil
}

// Comparison is the outcome of comparing two titles.
type Comparison struct {
	Distance int
	Ratio    float64
	Similar  bool
	// MaxRatio is the threshold the comparison was made against.
	MaxRatio float64
}

// Similar compares two titles. A non-positive or NaN maxRatio uses the service threshold.
func (s *Service) Similar(_ context.Context, a, b string, maxRatio float64) Comparison {
	if maxRatio <= 0 || math.IsNaN(maxRatio) {
		maxRatio = s.collapser.MaxRatio()
	}
	s.rec.Operation("similar")
	return Comparison{
		Distance: similarity.Distance(a, b),
		Ratio:    similarity.Ratio(a, b),
		Similar:  similarity.AreSimilar(a, b, maxRatio),
		MaxRatio: maxRatio,
	}
}

func (s *Service) checkResults(results []result.Result) error {
	if results == nil {
		return domain.NewFieldError("results", "is required")
	}
	return s.checkLimit(len(results))
}

func (s *Service) checkLimit(n int) error {
	if s.maxResults > 0 && n > s.maxResults {
		return fmt.Errorf("%w: %d items, limit %d", domain.ErrTooManyResults, n, s.maxResults)
	}
	return nil
}

func (s *Service) observe(ctx context.Context, op string, rep dedupe.Report, skipped int) {
	s.rec.Operation(op)
	s.rec.Stage(StageInput, rep.Input)
	s.rec.Stage(StageSkippedInvalid, skipped)
	s.rec.Stage(StageDroppedFalsy, rep.DroppedFalsy)
	s.rec.Stage(StageDroppedExact, rep.DroppedExact)
	s.rec.Stage(StageDroppedNear, rep.DroppedNear)
	s.rec.Stage(StageOutput, rep.Output)

	logger.FromContext(ctx).Debug("results refined",
		zap.String("operation", op),
		zap.Int("input", rep.Input),
		zap.Int("skipped_invalid", skipped),
		zap.Int("dropped_falsy", rep.DroppedFalsy),
		zap.Int("dropped_exact", rep.DroppedExact),
		zap.Int("dropped_near", rep.DroppedNear),
		zap.Int("output", rep.Output),
	)
}
