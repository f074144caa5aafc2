package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a geographic coordinate outside valid
// bounds reaches the reprojector. Upstream parsing rejects such rows before
// they get here, but the projection still refuses them loudly rather than
// producing garbage planar coordinates.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

const (
	falseEasting       = 500_000.0
	falseNorthingSouth = 10_000_000.0
	scaleFactor        = 0.9996
)

// Projection converts WGS84 geographic coordinates (decimal degrees) into a
// transverse Mercator plane where Euclidean distance is meters. The spheroid
// axes, zone, and hemisphere are fixed at construction; the transform itself
// is a pure function with no internal state.
type Projection struct {
	a    float64 // semi-major axis, meters
	b    float64 // semi-minor axis, meters
	e2   float64 // first eccentricity squared
	ep2  float64 // second eccentricity squared
	lon0 float64 // central meridian, radians
	fn   float64 // false northing

	// Meridian arc series coefficients, precomputed from e2.
	m0, m1, m2, m3 float64
	// Footpoint latitude series coefficients, from the rectifying
	// eccentricity e1.
	f1, f2, f3, f4 float64
	mu0            float64 // meridian arc normalization a*(1 - e2/4 - ...)
}

// NewProjection builds a transverse Mercator projection for the given
// spheroid axes (meters) and zone. Zones follow the 6-degree convention, so
// zone 49 has central meridian 111°E. Southern-hemisphere output carries the
// 10,000,000 m false northing.
func NewProjection(a, b float64, zone int, south bool) (*Projection, error) {
	if a <= 0 || b <= 0 || b > a {
		return nil, fmt.Errorf("invalid spheroid axes a=%g b=%g", a, b)
	}
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("invalid zone %d", zone)
	}

	e2 := (a*a - b*b) / (a * a)
	e4 := e2 * e2
	e6 := e4 * e2

	p := &Projection{
		a:    a,
		b:    b,
		e2:   e2,
		ep2:  e2 / (1 - e2),
		lon0: float64(6*zone-183) * math.Pi / 180,

		m0: 1 - e2/4 - 3*e4/64 - 5*e6/256,
		m1: 3*e2/8 + 3*e4/32 + 45*e6/1024,
		m2: 15*e4/256 + 45*e6/1024,
		m3: 35 * e6 / 3072,
	}
	if south {
		p.fn = falseNorthingSouth
	}

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	p.f1 = 3*e1/2 - 27*e1*e1*e1/32
	p.f2 = 21*e1*e1/16 - 55*e1*e1*e1*e1/32
	p.f3 = 151 * e1 * e1 * e1 / 96
	p.f4 = 1097 * e1 * e1 * e1 * e1 / 512
	p.mu0 = a * p.m0

	return p, nil
}

// Forward projects a geographic coordinate to planar (easting, northing) in
// meters. It fails with ErrInvalidCoordinate for latitudes outside [-90, 90]
// or longitudes outside [-180, 180].
func (p *Projection) Forward(lat, lon float64) (x, y float64, err error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinate, lat, lon)
	}

	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	sin := math.Sin(phi)
	cos := math.Cos(phi)
	tan := sin / cos

	n := p.a / math.Sqrt(1-p.e2*sin*sin)
	t := tan * tan
	c := p.ep2 * cos * cos
	aa := (lam - p.lon0) * cos

	m := p.meridianArc(phi)

	aa2 := aa * aa
	aa3 := aa2 * aa

	x = falseEasting + scaleFactor*n*(aa+
		(1-t+c)*aa3/6+
		(5-18*t+t*t+72*c-58*p.ep2)*aa3*aa2/120)

	y = p.fn + scaleFactor*(m+n*tan*(aa2/2+
		(5-t+9*c+4*c*c)*aa2*aa2/24+
		(61-58*t+t*t+600*c-330*p.ep2)*aa3*aa3/720))

	return x, y, nil
}

// Inverse converts planar (easting, northing) meters back to geographic
// degrees. Used when constructing synthetic points at exact planar offsets;
// the pipeline itself only projects forward.
func (p *Projection) Inverse(x, y float64) (lat, lon float64) {
	m := (y - p.fn) / scaleFactor
	mu := m / p.mu0

	// Footpoint latitude.
	phi1 := mu +
		p.f1*math.Sin(2*mu) +
		p.f2*math.Sin(4*mu) +
		p.f3*math.Sin(6*mu) +
		p.f4*math.Sin(8*mu)

	sin1 := math.Sin(phi1)
	cos1 := math.Cos(phi1)
	tan1 := sin1 / cos1

	c1 := p.ep2 * cos1 * cos1
	t1 := tan1 * tan1
	w := 1 - p.e2*sin1*sin1
	n1 := p.a / math.Sqrt(w)
	r1 := p.a * (1 - p.e2) / (w * math.Sqrt(w))
	d := (x - falseEasting) / (n1 * scaleFactor)

	d2 := d * d
	d3 := d2 * d

	phi := phi1 - (n1 * tan1 / r1) * (d2/2 -
		(5+3*t1+10*c1-4*c1*c1-9*p.ep2)*d2*d2/24 +
		(61+90*t1+298*c1+45*t1*t1-252*p.ep2-3*c1*c1)*d3*d3/720)

	lam := p.lon0 + (d-
		(1+2*t1+c1)*d3/6+
		(5-2*c1+28*t1-3*c1*c1+8*p.ep2+24*t1*t1)*d3*d2/120)/cos1

	return phi * 180 / math.Pi, lam * 180 / math.Pi
}

// meridianArc returns the distance along the meridian from the equator to
// latitude phi (radians).
func (p *Projection) meridianArc(phi float64) float64 {
	return p.a * (p.m0*phi -
		p.m1*math.Sin(2*phi) +
		p.m2*math.Sin(4*phi) -
		p.m3*math.Sin(6*phi))
}
