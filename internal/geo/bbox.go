package geo

import "fmt"

// BoundingBox is the coarse geographic prefilter region in decimal degrees.
// Its edges are strict-exclusive: a point exactly on a bound is rejected.
// The box must be generous enough that strictness can never cost a true
// positive; Covers verifies that against the largest buffer radius.
type BoundingBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Contains reports whether the point lies strictly inside the box.
// Boundary-exact points are excluded; this is the documented coarse-filter
// contract, not an accident, and differs from the buffer's inclusive edge.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat > b.LatMin && lat < b.LatMax && lon > b.LonMin && lon < b.LonMax
}

// Validate checks that the bounds are ordered and within geographic range.
func (b BoundingBox) Validate() error {
	if b.LatMin >= b.LatMax {
		return fmt.Errorf("bounding box latMin %g >= latMax %g", b.LatMin, b.LatMax)
	}
	if b.LonMin >= b.LonMax {
		return fmt.Errorf("bounding box lonMin %g >= lonMax %g", b.LonMin, b.LonMax)
	}
	if b.LatMin < -90 || b.LatMax > 90 || b.LonMin < -180 || b.LonMax > 180 {
		return fmt.Errorf("bounding box outside geographic range: %+v", b)
	}
	return nil
}

// Covers reports whether every point within the given great-circle radius of
// the center lies strictly inside the box. It walks destination points at
// 15-degree bearing steps; with the box padded well beyond the radius (to
// absorb projection distortion) this is a sufficient containment-safety
// check for convex boxes.
func (b BoundingBox) Covers(centerLat, centerLon, radiusMeters float64) bool {
	for bearing := 0.0; bearing < 360; bearing += 15 {
		lat, lon := DestinationPoint(centerLat, centerLon, bearing, radiusMeters)
		if !b.Contains(lat, lon) {
			return false
		}
	}
	return true
}
