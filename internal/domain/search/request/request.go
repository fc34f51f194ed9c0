package request

import (
	"fmt"
	"math"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/geo"
)

// Radius query limits.
const (
	// DefaultRadiusKm is used when the caller sends no radius.
	DefaultRadiusKm = 10.0
	// MaxRadiusKm bounds radius queries when no tighter limit is configured.
	MaxRadiusKm = 500.0
)

// RadiusQuery is a validated "points around a center" query.
type RadiusQuery struct {
	center   geo.Coordinate
	radiusKm float64
}

// NewRadiusQuery validates and normalizes a radius query.
// A nil radius becomes defaultKm; radii above maxKm are rejected.
// Zero and negative radii are kept: they select only points at the center.
func NewRadiusQuery(lat, lon float64, radiusKm *float64, defaultKm, maxKm float64) (RadiusQuery, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return RadiusQuery{}, fmt.Errorf("%w: center (%v, %v)", domain.ErrInvalidCoordinates, lat, lon)
	}
	if defaultKm <= 0 {
		defaultKm = DefaultRadiusKm
	}
	if maxKm <= 0 {
		maxKm = MaxRadiusKm
	}
	if defaultKm > maxKm {
		defaultKm = maxKm
	}

	r := defaultKm
	if radiusKm != nil {
		r = *radiusKm
	}
	if math.IsNaN(r) {
		return RadiusQuery{}, domain.NewFieldError("radius_km", "must be a number")
	}
	if r > maxKm {
		return RadiusQuery{}, domain.NewFieldError("radius_km", "exceeds maximum")
	}

	return RadiusQuery{
		center:   geo.Coordinate{Lat: lat, Lon: lon},
		radiusKm: r,
	}, nil
}

// Center returns the query center.
func (q *RadiusQuery) Center() geo.Coordinate { return q.center }

// RadiusKm returns the search radius in kilometers.
func (q *RadiusQuery) RadiusKm() float64 { return q.radiusKm }
