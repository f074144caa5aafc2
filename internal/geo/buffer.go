package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ringSegments is the vertex count of a buffer's disc approximation. At 128
// segments the maximum radial shortfall (sagitta) of a chord is about 0.03%
// of the radius, inside the 0.1% error budget.
const ringSegments = 128

// Buffer is an immutable disc of fixed radius around the reprojected
// reference point, in planar meters. Containment is the exact distance test
// dist(point, center) <= radius, inclusive of the boundary; the polygon ring
// is the exported approximation of the same disc, kept for inspection
// artifacts and cross-checks rather than the hot path.
type Buffer struct {
	radius float64
	center orb.Point
	ring   orb.Ring
}

// BuildBuffers constructs one buffer per radius around a planar center.
// Sharing a single center with increasing radii makes the buffers nested by
// construction: every point inside radius r1 < r2 is inside r2's buffer.
// Radii must be positive; ordering is the caller's (validated in config).
func BuildBuffers(center orb.Point, radiiMeters []float64) ([]Buffer, error) {
	buffers := make([]Buffer, 0, len(radiiMeters))
	for _, r := range radiiMeters {
		if r <= 0 {
			return nil, fmt.Errorf("buffer radius must be positive, got %g", r)
		}
		buffers = append(buffers, Buffer{
			radius: r,
			center: center,
			ring:   discRing(center, r),
		})
	}
	return buffers, nil
}

// Radius returns the buffer radius in meters.
func (b Buffer) Radius() float64 { return b.radius }

// Center returns the planar center point.
func (b Buffer) Center() orb.Point { return b.center }

// Label returns the radius as a kilometer label, e.g. "500km".
func (b Buffer) Label() string {
	return fmt.Sprintf("%gkm", b.radius/1000)
}

// Contains reports whether a planar point lies inside the buffer. Points
// exactly on the boundary are included; this intentionally differs from the
// coarse bounding box's strict-exclusive edges.
func (b Buffer) Contains(pt orb.Point) bool {
	dx := pt[0] - b.center[0]
	dy := pt[1] - b.center[1]
	return dx*dx+dy*dy <= b.radius*b.radius
}

// Ring returns the closed polygon approximation of the disc.
func (b Buffer) Ring() orb.Ring { return b.ring }

// discRing builds a closed counter-clockwise ring approximating a disc.
func discRing(center orb.Point, radius float64) orb.Ring {
	ring := make(orb.Ring, 0, ringSegments+1)
	for i := 0; i < ringSegments; i++ {
		theta := 2 * math.Pi * float64(i) / ringSegments
		ring = append(ring, orb.Point{
			center[0] + radius*math.Cos(theta),
			center[1] + radius*math.Sin(theta),
		})
	}
	ring = append(ring, ring[0])
	return ring
}

// BuffersGeoJSON serializes the buffer discs as a GeoJSON FeatureCollection
// in planar coordinates, one polygon feature per radius.
func BuffersGeoJSON(buffers []Buffer) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, b := range buffers {
		f := geojson.NewFeature(orb.Polygon{b.ring})
		f.Properties["radius_m"] = b.radius
		f.Properties["label"] = b.Label()
		fc.Append(f)
	}
	return fc.MarshalJSON()
}
