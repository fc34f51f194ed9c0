package refinery

import (
	"context"
	"fmt"
	"time"

	"github.com/servo-app/refinery/internal/domain/geo"
	"github.com/servo-app/refinery/internal/domain/search/raw"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/domain/search/result"
)

// RefineSearch normalizes raw backend hits and refines them: records without
// an id are skipped, results flagged irrelevant are dropped, and exact or
// near-duplicate titles within a source collapse onto their first occurrence.
// Input order is preserved. A nil slice is rejected; an empty one returns empty.
func (c *Client) RefineSearch(ctx context.Context, records []map[string]any) (_ []Result, err error) {
	start := time.Now()
	var out []Result
	defer func() { c.obs.observeItems("refine_search", start, len(records), len(out), err) }()

	var recs []raw.Record
	if records != nil {
		recs = make([]raw.Record, len(records))
		for i, r := range records {
			recs[i] = raw.Record(r)
		}
	}
	refined, err := c.refineSvc.RefineSearch(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("refine search: %w", err)
	}
	out = resultsFromDomain(refined)
	return out, nil
}

// Refine applies the similarity gate and then the dedupe collapse to canonical results.
func (c *Client) Refine(ctx context.Context, results []Result) ([]Result, error) {
	return c.applyResults(ctx, "refine", results, c.refineSvc.Refine)
}

// Dedupe collapses exact and near-duplicate results without the similarity gate.
func (c *Client) Dedupe(ctx context.Context, results []Result) ([]Result, error) {
	return c.applyResults(ctx, "dedupe", results, c.refineSvc.Dedupe)
}

// FilterBySimilarity drops results whose similarity is present and zero or NaN.
func (c *Client) FilterBySimilarity(ctx context.Context, results []Result) ([]Result, error) {
	return c.applyResults(ctx, "filter_similarity", results, c.refineSvc.FilterBySimilarity)
}

// Similar compares two titles. A non-positive or NaN maxRatio uses the client threshold.
func (c *Client) Similar(ctx context.Context, a, b string, maxRatio float64) Comparison {
	start := time.Now()
	cmp := c.refineSvc.Similar(ctx, a, b, maxRatio)
	c.obs.observe("similar", start, nil)
	return Comparison{Distance: cmp.Distance, Ratio: cmp.Ratio, Similar: cmp.Similar, MaxRatio: cmp.MaxRatio}
}

// WithinRadius returns the points within radiusKm of center, in input order.
// A nil radius uses the configured default; a radius above the configured
// maximum is rejected with ErrInvalidArgument.
func (c *Client) WithinRadius(
	ctx context.Context, center Center, radiusKm *float64, points []Point,
) (_ []Point, err error) {
	start := time.Now()
	var out []Point
	defer func() { c.obs.observeItems("within_radius", start, len(points), len(out), err) }()

	q, domPoints, err := c.geoQuery(center, radiusKm, points)
	if err != nil {
		return nil, fmt.Errorf("within radius: %w", err)
	}
	found, err := c.refineSvc.WithinRadius(ctx, &q, domPoints)
	if err != nil {
		return nil, fmt.Errorf("within radius: %w", err)
	}
	out = pointsFromDomain(found)
	return out, nil
}

// Nearby is WithinRadius ordered nearest first, with distances.
func (c *Client) Nearby(
	ctx context.Context, center Center, radiusKm *float64, points []Point,
) (_ []Neighbor, err error) {
	start := time.Now()
	var out []Neighbor
	defer func() { c.obs.observeItems("nearby", start, len(points), len(out), err) }()

	q, domPoints, err := c.geoQuery(center, radiusKm, points)
	if err != nil {
		return nil, fmt.Errorf("nearby: %w", err)
	}
	found, err := c.refineSvc.Nearby(ctx, &q, domPoints)
	if err != nil {
		return nil, fmt.Errorf("nearby: %w", err)
	}
	out = neighborsFromDomain(found)
	return out, nil
}

// Correlate keeps the points whose id matches a Property result.
// Points without coordinates are kept.
func (c *Client) Correlate(ctx context.Context, results []Result, points []Point) (_ []Point, err error) {
	start := time.Now()
	var out []Point
	defer func() { c.obs.observeItems("correlate", start, len(points), len(out), err) }()

	domResults, err := resultsToDomain(results)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	domPoints, err := pointsToDomain(points)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	found, err := c.refineSvc.Correlate(ctx, domResults, domPoints)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	out = pointsFromDomain(found)
	return out, nil
}

func (c *Client) applyResults(
	ctx context.Context, op string, results []Result,
	apply func(context.Context, []result.Result) ([]result.Result, error),
) (_ []Result, err error) {
	start := time.Now()
	var out []Result
	defer func() { c.obs.observeItems(op, start, len(results), len(out), err) }()

	domResults, err := resultsToDomain(results)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refined, err := apply(ctx, domResults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out = resultsFromDomain(refined)
	return out, nil
}

func (c *Client) geoQuery(
	center Center, radiusKm *float64, points []Point,
) (request.RadiusQuery, []geo.Point, error) {
	q, err := request.NewRadiusQuery(center.Lat, center.Lon, radiusKm, c.radius.defaultKm, c.radius.maxKm)
	if err != nil {
		return request.RadiusQuery{}, nil, err
	}
	domPoints, err := pointsToDomain(points)
	if err != nil {
		return request.RadiusQuery{}, nil, err
	}
	return q, domPoints, nil
}
