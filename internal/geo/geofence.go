package geo

import (
	"errors"
	"math"
)

// Mean Earth radius in kilometers (spherical approximation).
const earthRadiusKm = 6371

// ErrInvalidCoordinates signals a latitude/longitude outside the valid range.
var ErrInvalidCoordinates = errors.New("geo: invalid coordinates")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is a usable coordinate.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKm returns the great-circle distance between two points using the
// haversine formula.
func DistanceKm(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Fence is a circular region around a configured reference point.
type Fence struct {
	Reference Point
	RadiusKm  float64
}

// Result reports the outcome of a fence check.
type Result struct {
	Within     bool
	DistanceKm float64
}

// Validate checks a point against the fence. A point exactly on the radius
// counts as within. Malformed coordinates return ErrInvalidCoordinates.
func (f Fence) Validate(p Point) (Result, error) {
	if !p.Valid() || !f.Reference.Valid() {
		return Result{}, ErrInvalidCoordinates
	}
	d := DistanceKm(p, f.Reference)
	return Result{Within: d <= f.RadiusKm, DistanceKm: d}, nil
}
