package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campus = Point{Lat: 34.0522, Lon: -118.2437}

func TestDistanceKm(t *testing.T) {
	// Zero distance at the same point.
	assert.InDelta(t, 0, DistanceKm(campus, campus), 1e-9)

	// Roughly 50 km due north (1 degree of latitude is ~111.19 km).
	north := Point{Lat: campus.Lat + 50/111.19492664, Lon: campus.Lon}
	assert.InDelta(t, 50, DistanceKm(campus, north), 0.1)

	// Symmetric.
	assert.InDelta(t, DistanceKm(campus, north), DistanceKm(north, campus), 1e-9)
}

func TestValidateWithinFence(t *testing.T) {
	fence := Fence{Reference: campus, RadiusKm: 5}

	res, err := fence.Validate(campus)
	require.NoError(t, err)
	assert.True(t, res.Within)

	far := Point{Lat: campus.Lat + 50/111.19492664, Lon: campus.Lon}
	res, err = fence.Validate(far)
	require.NoError(t, err)
	assert.False(t, res.Within)
	assert.InDelta(t, 50, res.DistanceKm, 0.1)
}

func TestValidateBoundaryInclusive(t *testing.T) {
	p := Point{Lat: campus.Lat + 0.03, Lon: campus.Lon}
	exact := DistanceKm(campus, p)

	// A point exactly on the radius passes.
	res, err := Fence{Reference: campus, RadiusKm: exact}.Validate(p)
	require.NoError(t, err)
	assert.True(t, res.Within)

	// Any smaller radius rejects it.
	res, err = Fence{Reference: campus, RadiusKm: exact - 1e-9}.Validate(p)
	require.NoError(t, err)
	assert.False(t, res.Within)
}

func TestValidateInvalidCoordinates(t *testing.T) {
	fence := Fence{Reference: campus, RadiusKm: 5}

	for _, p := range []Point{
		{Lat: 91, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -181},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.NaN()},
	} {
		_, err := fence.Validate(p)
		assert.ErrorIs(t, err, ErrInvalidCoordinates, "point %+v", p)
	}

	// A broken reference is also rejected.
	_, err := Fence{Reference: Point{Lat: 200}, RadiusKm: 5}.Validate(campus)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}
