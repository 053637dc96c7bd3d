package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) Feature {
	return Feature{Geometry: Geometry{Polygons: []Polygon{{Rings: [][]Point{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}}}}}
}

func TestBoundsUnion(t *testing.T) {
	b, ok := Bounds([]Feature{square(-10, -5, 0, 0), square(0, 0, 10, 5)})
	require.True(t, ok)
	assert.Equal(t, BBox{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5}, b)
	assert.Equal(t, Point{Lon: 0, Lat: 0}, b.Center())
}

func TestBoundsEmptyOrMalformed(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	bad := Feature{Geometry: Geometry{Polygons: []Polygon{{Rings: [][]Point{{{math.NaN(), 1}, {math.Inf(1), 2}}}}}}}
	_, ok = Bounds([]Feature{bad, {}})
	assert.False(t, ok)
}

func TestBoundsAcrossAntimeridian(t *testing.T) {
	b, ok := Bounds([]Feature{square(177, -19, 180, -16), square(-180, -17, -178, -16)})
	require.True(t, ok)
	assert.InDelta(t, 177, b.MinLon, 1e-9)
	assert.InDelta(t, 182, b.MaxLon, 1e-9)
	assert.InDelta(t, 179.5, b.Center().Lon, 1e-9)
}

func TestNormalizeLon(t *testing.T) {
	assert.Equal(t, 180.0, NormalizeLon(180))
	assert.Equal(t, 180.0, NormalizeLon(-180))
	assert.Equal(t, -170.0, NormalizeLon(190))
}
