package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRadii = []float64{5_000, 50_000, 250_000, 500_000}

func testCenter() orb.Point { return orb.Point{500_000, 9_800_000} }

func TestBuildBuffers(t *testing.T) {
	buffers, err := BuildBuffers(testCenter(), testRadii)
	require.NoError(t, err)
	require.Len(t, buffers, len(testRadii))

	for i, b := range buffers {
		assert.Equal(t, testRadii[i], b.Radius())
		assert.Equal(t, testCenter(), b.Center())
		assert.True(t, b.Contains(testCenter()), "center must be inside its own buffer")
	}

	assert.Equal(t, "5km", buffers[0].Label())
	assert.Equal(t, "500km", buffers[3].Label())
}

func TestBuildBuffers_InvalidRadius(t *testing.T) {
	_, err := BuildBuffers(testCenter(), []float64{5000, 0})
	assert.Error(t, err)

	_, err = BuildBuffers(testCenter(), []float64{-1})
	assert.Error(t, err)
}

func TestBuffer_ContainsBoundaryInclusive(t *testing.T) {
	buffers, err := BuildBuffers(testCenter(), testRadii)
	require.NoError(t, err)

	for _, b := range buffers {
		c := b.Center()
		onEdge := orb.Point{c[0] + b.Radius(), c[1]}
		justOutside := orb.Point{c[0] + b.Radius() + 0.001, c[1]}

		assert.True(t, b.Contains(onEdge), "%s: point exactly on the edge is included", b.Label())
		assert.False(t, b.Contains(justOutside), "%s: point past the edge is excluded", b.Label())
	}
}

func TestBuffer_Nesting(t *testing.T) {
	buffers, err := BuildBuffers(testCenter(), testRadii)
	require.NoError(t, err)

	// Points between consecutive radii are inside every larger buffer and
	// outside every smaller one.
	for i := 0; i+1 < len(buffers); i++ {
		mid := (testRadii[i] + testRadii[i+1]) / 2
		for _, theta := range []float64{0, 0.7, 2.1, 4.4, 5.9} {
			pt := orb.Point{
				testCenter()[0] + mid*math.Cos(theta),
				testCenter()[1] + mid*math.Sin(theta),
			}
			for j, b := range buffers {
				if j <= i {
					assert.False(t, b.Contains(pt), "point at %gm must be outside %s", mid, b.Label())
				} else {
					assert.True(t, b.Contains(pt), "point at %gm must be inside %s", mid, b.Label())
				}
			}
		}
	}
}

func TestBuffer_RingApproximation(t *testing.T) {
	buffers, err := BuildBuffers(testCenter(), []float64{50_000})
	require.NoError(t, err)
	b := buffers[0]

	ring := b.Ring()
	require.Len(t, ring, ringSegments+1)
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")

	for _, v := range ring {
		d := planar.Distance(v, b.Center())
		assert.InDelta(t, b.Radius(), d, 1e-6, "ring vertices lie on the circle")
	}

	// The distance predicate and the polygon approximation must agree away
	// from the sliver between the chord and the arc.
	inside := orb.Point{testCenter()[0] + 49_900, testCenter()[1]}
	assert.True(t, b.Contains(inside))
	assert.True(t, planar.RingContains(ring, inside))

	outside := orb.Point{testCenter()[0] + 50_100, testCenter()[1]}
	assert.False(t, b.Contains(outside))
	assert.False(t, planar.RingContains(ring, outside))
}

func TestBuffersGeoJSON(t *testing.T) {
	buffers, err := BuildBuffers(testCenter(), testRadii)
	require.NoError(t, err)

	data, err := BuffersGeoJSON(buffers)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, len(testRadii))
	for i, f := range fc.Features {
		assert.Equal(t, "Polygon", f.Geometry.Type)
		assert.Equal(t, testRadii[i], f.Properties["radius_m"])
	}
}
