package refinery

import (
	"fmt"
	"strings"
	"time"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/geo"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/search/source"
)

// Source table names used by the marketplace search backend.
const (
	SourceProperty    = "Property"
	SourceProduct     = "Product"
	SourceService     = "Service"
	SourceMetier      = "Metier"
	SourceBlogArticle = "BlogArticle"
)

// PointKind distinguishes map markers.
type PointKind string

// Point kind constants.
const (
	KindUser     PointKind = "user"
	KindProperty PointKind = "property"
)

// Result is a canonical search hit.
// Similarity is nil when the backend sent no relevance flag; such results are kept.
type Result struct {
	ID         string
	Title      string
	Source     string
	Similarity *float64
	Fields     map[string]any
}

// Center is the origin of a radius query.
type Center struct {
	Lat float64
	Lon float64
}

// Point is a map marker. A nil Lat or Lon marks a point without coordinates:
// it is kept by Correlate but never matches a radius filter.
type Point struct {
	ID     string
	Kind   PointKind
	Lat    *float64
	Lon    *float64
	Fields map[string]any
}

// Neighbor is a point with its great-circle distance from the query center.
type Neighbor struct {
	Point      Point
	DistanceKm float64
}

// Comparison is the outcome of comparing two titles.
type Comparison struct {
	Distance int
	Ratio    float64
	Similar  bool
	MaxRatio float64
}

// HistoryEntry is one remembered search.
type HistoryEntry struct {
	ID         string
	Query      string
	SearchedAt time.Time
}

// Km returns a pointer to a radius, for the radius argument of geo queries.
func Km(v float64) *float64 { return &v }

// Coord returns a point with coordinates.
func Coord(id string, kind PointKind, lat, lon float64) Point {
	return Point{ID: id, Kind: kind, Lat: &lat, Lon: &lon}
}

// --- conversions ---

func resultsToDomain(rs []Result) ([]result.Result, error) {
	if rs == nil {
		return nil, nil
	}
	out := make([]result.Result, len(rs))
	for i := range rs {
		id := strings.TrimSpace(rs[i].ID)
		if id == "" {
			return nil, domain.NewFieldError(fmt.Sprintf("results[%d].id", i), "is required")
		}
		out[i] = result.New(id, rs[i].Title, source.Parse(rs[i].Source), rs[i].Similarity, rs[i].Fields)
	}
	return out, nil
}

func resultFromDomain(r *result.Result) Result {
	out := Result{
		ID:     r.ID(),
		Title:  r.Title(),
		Source: r.Source().String(),
		Fields: r.Fields(),
	}
	if s, ok := r.Similarity(); ok {
		out.Similarity = &s
	}
	return out
}

func resultsFromDomain(rs []result.Result) []Result {
	out := make([]Result, len(rs))
	for i := range rs {
		out[i] = resultFromDomain(&rs[i])
	}
	return out
}

func pointsToDomain(ps []Point) ([]geo.Point, error) {
	if ps == nil {
		return nil, nil
	}
	out := make([]geo.Point, len(ps))
	for i := range ps {
		p := &ps[i]
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, domain.NewFieldError(fmt.Sprintf("points[%d].id", i), "is required")
		}
		kind := geo.Kind(strings.ToLower(string(p.Kind)))
		if !kind.IsValid() {
			return nil, domain.NewFieldError(fmt.Sprintf("points[%d].kind", i), "must be user or property")
		}
		if p.Lat != nil && p.Lon != nil {
			out[i] = geo.NewPoint(id, kind, *p.Lat, *p.Lon, p.Fields)
		} else {
			out[i] = geo.NewPointWithoutCoordinates(id, kind, p.Fields)
		}
	}
	return out, nil
}

func pointFromDomain(p *geo.Point) Point {
	out := Point{ID: p.ID(), Kind: PointKind(p.Kind()), Fields: p.Fields()}
	if c, ok := p.Coordinate(); ok {
		lat, lon := c.Lat, c.Lon
		out.Lat, out.Lon = &lat, &lon
	}
	return out
}

func pointsFromDomain(ps []geo.Point) []Point {
	out := make([]Point, len(ps))
	for i := range ps {
		out[i] = pointFromDomain(&ps[i])
	}
	return out
}

func neighborsFromDomain(ns []geo.Neighbor) []Neighbor {
	out := make([]Neighbor, len(ns))
	for i := range ns {
		out[i] = Neighbor{Point: pointFromDomain(&ns[i].Point), DistanceKm: ns[i].DistanceKm}
	}
	return out
}

func historyFromDomain(entries []domhist.Entry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i := range entries {
		out[i] = HistoryEntry{
			ID:         entries[i].ID(),
			Query:      entries[i].Query(),
			SearchedAt: entries[i].SearchedAt(),
		}
	}
	return out
}
