package chi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/geo"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/domain/search/raw"
	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/search/source"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeInvalidCoordinates = "invalid_coordinates"
	codeTooManyResults     = "too_many_results"
	codeNotFound           = "not_found"
	codeHistoryUnavailable = "history_unavailable"
	codeUnauthorized       = "unauthorized"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

// --- results ---

type refineRequest struct {
	Results []raw.Record `json:"results"`
}

type resultsRequest struct {
	Results []resultIn `json:"results"`
}

// resultIn accepts string or numeric ids.
type resultIn struct {
	ID          any            `json:"id"`
	Title       string         `json:"title"`
	SourceTable string         `json:"source_table"`
	Similarity  *float64       `json:"similarity,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

type resultItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	SourceTable string         `json:"source_table"`
	Similarity  *float64       `json:"similarity,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

func resultToDTO(r *result.Result) resultItem {
	item := resultItem{
		ID:          r.ID(),
		Title:       r.Title(),
		SourceTable: r.Source().String(),
		Fields:      r.Fields(),
	}
	if s, ok := r.Similarity(); ok {
		item.Similarity = &s
	}
	return item
}

func resultsToDTO(rs []result.Result) []resultItem {
	out := make([]resultItem, len(rs))
	for i := range rs {
		out[i] = resultToDTO(&rs[i])
	}
	return out
}

func resultsFromDTO(items []resultIn) ([]result.Result, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]result.Result, len(items))
	for i, it := range items {
		id := raw.IDString(it.ID)
		if id == "" {
			return nil, domain.NewFieldError(fmt.Sprintf("results[%d].id", i), "is required")
		}
		out[i] = result.New(id, it.Title, source.Parse(it.SourceTable), it.Similarity, it.Fields)
	}
	return out, nil
}

// --- geo ---

type centerDTO struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type geoRequest struct {
	Center   *centerDTO `json:"center"`
	RadiusKm *float64   `json:"radius_km"`
	Points   []pointDTO `json:"points"`
}

type correlateRequest struct {
	Results []resultIn `json:"results"`
	Points  []pointDTO `json:"points"`
}

// pointDTO carries raw coordinate values: non-numeric coordinates make the
// point unusable for distance filters instead of failing the request.
// The marker type is read from "type", with "kind" as an alias.
type pointDTO struct {
	ID        any            `json:"id"`
	Type      string         `json:"type"`
	Kind      string         `json:"kind"`
	Latitude  any            `json:"latitude"`
	Longitude any            `json:"longitude"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func (p *pointDTO) markerType() string {
	if p.Type != "" {
		return p.Type
	}
	return p.Kind
}

type pointOut struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Latitude   *float64       `json:"latitude"`
	Longitude  *float64       `json:"longitude"`
	Fields     map[string]any `json:"fields,omitempty"`
	DistanceKm *float64       `json:"distance_km,omitempty"`
}

func pointsFromDTO(items []pointDTO) ([]geo.Point, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]geo.Point, len(items))
	for i := range items {
		it := &items[i]
		id := raw.IDString(it.ID)
		if id == "" {
			return nil, domain.NewFieldError(fmt.Sprintf("points[%d].id", i), "is required")
		}
		kind := geo.Kind(strings.ToLower(strings.TrimSpace(it.markerType())))
		if !kind.IsValid() {
			return nil, domain.NewFieldError(fmt.Sprintf("points[%d].type", i), "must be user or property")
		}
		lat, latOK := coordValue(it.Latitude)
		lon, lonOK := coordValue(it.Longitude)
		if latOK && lonOK {
			out[i] = geo.NewPoint(id, kind, lat, lon, it.Fields)
		} else {
			out[i] = geo.NewPointWithoutCoordinates(id, kind, it.Fields)
		}
	}
	return out, nil
}

func coordValue(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func pointToDTO(p *geo.Point) pointOut {
	out := pointOut{ID: p.ID(), Type: string(p.Kind()), Fields: p.Fields()}
	if c, ok := p.Coordinate(); ok {
		lat, lon := c.Lat, c.Lon
		out.Latitude, out.Longitude = &lat, &lon
	}
	return out
}

func pointsToDTO(ps []geo.Point) []pointOut {
	out := make([]pointOut, len(ps))
	for i := range ps {
		out[i] = pointToDTO(&ps[i])
	}
	return out
}

func neighborsToDTO(ns []geo.Neighbor) []pointOut {
	out := make([]pointOut, len(ns))
	for i := range ns {
		out[i] = pointToDTO(&ns[i].Point)
		d := ns[i].DistanceKm
		out[i].DistanceKm = &d
	}
	return out
}

// --- similarity ---

type similarityRequest struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	MaxRatio float64 `json:"max_ratio"`
}

type similarityResponse struct {
	Distance int     `json:"distance"`
	Ratio    float64 `json:"ratio"`
	Similar  bool    `json:"similar"`
	MaxRatio float64 `json:"max_ratio"`
}

// --- history ---

type historyRequest struct {
	Query string `json:"query"`
}

type historyEntry struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

func historyToDTO(entries []domhist.Entry) []historyEntry {
	out := make([]historyEntry, len(entries))
	for i := range entries {
		out[i] = historyEntry{
			ID:         entries[i].ID(),
			Query:      entries[i].Query(),
			SearchedAt: entries[i].SearchedAt(),
		}
	}
	return out
}

type pathDTO struct {
	Path string `json:"path"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
