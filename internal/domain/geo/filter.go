package geo

import (
	"math"
	"sort"

	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/search/source"
)

// Neighbor is a point annotated with its distance to a query center.
type Neighbor struct {
	Point      Point
	DistanceKm float64
}

// within reports the distance from center to p and whether it is inside radiusKm.
// A non-positive radius only admits points exactly at center.
func within(center Coordinate, p *Point, radiusKm float64) (float64, bool) {
	if !p.valid {
		return 0, false
	}
	d := Distance(center, p.coord)
	if radiusKm <= 0 {
		return d, d == 0
	}
	return d, d <= radiusKm
}

// PointsWithinRadius returns every point whose distance to center is at most radiusKm,
// in input order. Points without coordinates never match.
func PointsWithinRadius(center Coordinate, points []Point, radiusKm float64) []Point {
	out := make([]Point, 0, len(points))
	for i := range points {
		if _, ok := within(center, &points[i], radiusKm); ok {
			out = append(out, points[i])
		}
	}
	return out
}

// Nearby returns the points within radiusKm of center, nearest first.
// Ties keep input order.
func Nearby(center Coordinate, points []Point, radiusKm float64) []Neighbor {
	out := make([]Neighbor, 0, len(points))
	for i := range points {
		if d, ok := within(center, &points[i], radiusKm); ok {
			out = append(out, Neighbor{Point: points[i], DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// SortByDistance returns a copy of points ordered nearest to center first.
// Points without coordinates go last, in input order.
func SortByDistance(center Coordinate, points []Point) []Neighbor {
	out := make([]Neighbor, 0, len(points))
	var missing []Neighbor
	for i := range points {
		if !points[i].valid {
			missing = append(missing, Neighbor{Point: points[i], DistanceKm: math.Inf(1)})
			continue
		}
		out = append(out, Neighbor{Point: points[i], DistanceKm: Distance(center, points[i].coord)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return append(out, missing...)
}

// CorrelateByTypeAndFilter returns the points whose id matches the id of a
// Property result. It keeps a map view in sync with a result list; matching is
// by id only, not by distance. Point order is preserved.
func CorrelateByTypeAndFilter(results []result.Result, points []Point) []Point {
	propertyIDs := make(map[string]struct{})
	for i := range results {
		if results[i].Source() == source.Property {
			propertyIDs[results[i].ID()] = struct{}{}
		}
	}

	out := make([]Point, 0, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return out
	}
	for i := range points {
		if _, ok := propertyIDs[points[i].id]; ok {
			out = append(out, points[i])
		}
	}
	return out
}
