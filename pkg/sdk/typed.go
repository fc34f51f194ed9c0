package refinery

import (
	"context"
	"fmt"
)

// Typed refines caller-defined structs instead of Result and Point values.
// The schema is inferred from T's struct tags at construction time:
//
//	type Listing struct {
//	    ID     int64   `refinery:"id"`
//	    Title  string  `refinery:"title"`
//	    Table  string  `refinery:"source"`
//	    Lat    float64 `refinery:"lat"`
//	    Lon    float64 `refinery:"lon"`
//	}
//
// Refined items are the caller's own values, in input order.
type Typed[T any] struct {
	client *Client
	meta   *schemaMeta
}

// NewTyped creates a typed refiner. T must be a struct with an id tag.
// Schema is parsed once and cached.
func NewTyped[T any](client *Client) (*Typed[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new typed refiner: %w", err)
	}
	return &Typed[T]{client: client, meta: meta}, nil
}

// Refine drops items flagged irrelevant and collapses duplicates.
func (t *Typed[T]) Refine(ctx context.Context, items []T) ([]T, error) {
	refined, err := t.client.Refine(ctx, t.results(items))
	if err != nil {
		return nil, err
	}
	return pick(items, refined, func(r *Result) map[string]any { return r.Fields })
}

// Dedupe collapses duplicate items without the similarity gate.
func (t *Typed[T]) Dedupe(ctx context.Context, items []T) ([]T, error) {
	refined, err := t.client.Dedupe(ctx, t.results(items))
	if err != nil {
		return nil, err
	}
	return pick(items, refined, func(r *Result) map[string]any { return r.Fields })
}

// WithinRadius keeps the items within radiusKm of center. T needs lat and lon tags.
func (t *Typed[T]) WithinRadius(ctx context.Context, center Center, radiusKm *float64, items []T) ([]T, error) {
	if !t.meta.hasGeo() {
		return nil, fmt.Errorf("refinery: %s has no lat/lon tags", t.meta.typ)
	}
	var points []Point
	if items != nil {
		points = make([]Point, len(items))
		for i := range items {
			points[i] = t.meta.toPoint(items[i], i)
		}
	}
	found, err := t.client.WithinRadius(ctx, center, radiusKm, points)
	if err != nil {
		return nil, err
	}
	return pick(items, found, func(p *Point) map[string]any { return p.Fields })
}

func (t *Typed[T]) results(items []T) []Result {
	if items == nil {
		return nil
	}
	out := make([]Result, len(items))
	for i := range items {
		out[i] = t.meta.toResult(items[i], i)
	}
	return out
}

// pick maps refined values back onto the caller's items via their stored position.
func pick[T, V any](items []T, refined []V, fields func(*V) map[string]any) ([]T, error) {
	out := make([]T, 0, len(refined))
	for i := range refined {
		pos, ok := positionOf(fields(&refined[i]))
		if !ok || pos < 0 || pos >= len(items) {
			return nil, fmt.Errorf("refinery: lost position of refined item %d", i)
		}
		out = append(out, items[pos])
	}
	return out, nil
}
