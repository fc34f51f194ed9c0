package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversineKm_SamePoint(t *testing.T) {
	coords := []Coordinate{
		{0, 0},
		{-21.1351, 55.2471},
		{90, 180},
		{-90, -180},
		{40.7128, -74.0060},
	}
	for _, c := range coords {
		if d := HaversineKm(c.Lat, c.Lon, c.Lat, c.Lon); d != 0 {
			t.Errorf("HaversineKm(%v, %v) = %f, want 0", c, c, d)
		}
	}
}

func TestHaversineKm_Reunion(t *testing.T) {
	// Saint-Pierre to Saint-Denis area, La Réunion.
	d := HaversineKm(-21.1351, 55.2471, -20.8789, 55.4481)
	if !almost(d, 35.31, 1) {
		t.Fatalf("want ~35.31km, got %.2fkm", d)
	}
	if d < 35 || d > 45 {
		t.Fatalf("distance %.2fkm outside sanity range", d)
	}
}

func TestHaversineKm_NewYork_London(t *testing.T) {
	// NYC to London: ~5,570 km
	d := HaversineKm(40.7128, -74.0060, 51.5074, -0.1278)
	if !almost(d, 5570, 30) {
		t.Fatalf("want ~5570km, got %.0fkm", d)
	}
}

func TestHaversineKm_Antipodal(t *testing.T) {
	// Opposite sides of Earth: half circumference
	d := HaversineKm(0, 0, 0, 180)
	expected := math.Pi * EarthRadiusKm
	if !almost(d, expected, 0.001) {
		t.Fatalf("want ~%.3fkm, got %.3fkm", expected, d)
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{-21.1351, 55.2471, -20.8789, 55.4481},
		{40.7128, -74.0060, 51.5074, -0.1278},
		{-33.8688, 151.2093, 55.7558, 37.6173},
		{0, 179.9, 0, -179.9},
	}
	for _, p := range pairs {
		ab := HaversineKm(p[0], p[1], p[2], p[3])
		ba := HaversineKm(p[2], p[3], p[0], p[1])
		if !almost(ab, ba, 1e-9) {
			t.Errorf("asymmetric distance for %v: %f vs %f", p, ab, ba)
		}
		if ab < 0 {
			t.Errorf("negative distance for %v: %f", p, ab)
		}
	}
}

func TestHaversine_Meters(t *testing.T) {
	km := HaversineKm(-21.1351, 55.2471, -20.8789, 55.4481)
	m := Haversine(-21.1351, 55.2471, -20.8789, 55.4481)
	if !almost(m, km*1000, 1e-6) {
		t.Fatalf("meters %f != km*1000 %f", m, km*1000)
	}
}

func TestHaversineKm_NaNDoesNotPanic(t *testing.T) {
	d := HaversineKm(math.NaN(), 0, 0, 0)
	if !math.IsNaN(d) {
		t.Fatalf("want NaN, got %f", d)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		valid    bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{-91, 0, false},
		{0, -181, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := ValidateCoordinates(tt.lat, tt.lon); got != tt.valid {
			t.Errorf("ValidateCoordinates(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.valid)
		}
		if got := (Coordinate{tt.lat, tt.lon}).Valid(); got != tt.valid {
			t.Errorf("Coordinate{%f, %f}.Valid() = %v, want %v", tt.lat, tt.lon, got, tt.valid)
		}
	}
}
