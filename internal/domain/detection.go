package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Columns is the canonical column order of a FIRMS granule table. Input files
// may use any column order (the reader maps by header name), but persisted
// output always uses this order.
var Columns = []string{
	"date",
	"time",
	"satelliteFlag",
	"lat",
	"lon",
	"brightness1",
	"brightness2",
	"sampleNumber",
	"fireRadiativePower",
	"confidence",
	"detectionType",
}

// Detection is one satellite-observed thermal anomaly.
//
// Filtering never mutates a Detection: pipeline stages select or exclude
// whole records, and the only transformation is the parse/format pair at the
// file boundary.
type Detection struct {
	Date          time.Time // calendar date of the observation (UTC midnight)
	Time          int       // HHMM observation time, 0000-2359
	Satellite     string    // source satellite flag, e.g. "A" (Aqua), "T" (Terra)
	Lat           float64   // WGS84 decimal degrees, [-90, 90]
	Lon           float64   // WGS84 decimal degrees, [-180, 180]
	Brightness1   float64   // channel 21/22 brightness temperature (K)
	Brightness2   float64   // channel 31 brightness temperature (K)
	Sample        int       // scan sample number
	FRP           float64   // fire radiative power (MW)
	Confidence    int       // detection confidence, 0-100
	DetectionType string    // categorical detection type code
}

// ParseDetection builds a Detection from raw field values given in canonical
// column order. It returns ErrMalformedRecord (wrapped with the offending
// field) on any unparsable or out-of-range value; a bad row is rejected, never
// zero-filled.
func ParseDetection(fields []string) (Detection, error) {
	if len(fields) != len(Columns) {
		return Detection{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedRecord, len(fields), len(Columns))
	}

	date, err := parseDateCode(fields[0])
	if err != nil {
		return Detection{}, err
	}
	hhmm, err := parseTimeCode(fields[1])
	if err != nil {
		return Detection{}, err
	}

	lat, err := parseFloatField("lat", fields[3])
	if err != nil {
		return Detection{}, err
	}
	lon, err := parseFloatField("lon", fields[4])
	if err != nil {
		return Detection{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Detection{}, fmt.Errorf("%w: coordinate (%g, %g) outside geographic bounds", ErrMalformedRecord, lat, lon)
	}

	b1, err := parseFloatField("brightness1", fields[5])
	if err != nil {
		return Detection{}, err
	}
	b2, err := parseFloatField("brightness2", fields[6])
	if err != nil {
		return Detection{}, err
	}
	sample, err := parseIntField("sampleNumber", fields[7])
	if err != nil {
		return Detection{}, err
	}
	frp, err := parseFloatField("fireRadiativePower", fields[8])
	if err != nil {
		return Detection{}, err
	}
	conf, err := parseIntField("confidence", fields[9])
	if err != nil {
		return Detection{}, err
	}
	if conf < 0 || conf > 100 {
		return Detection{}, fmt.Errorf("%w: confidence %d outside 0-100", ErrMalformedRecord, conf)
	}

	return Detection{
		Date:          date,
		Time:          hhmm,
		Satellite:     fields[2],
		Lat:           lat,
		Lon:           lon,
		Brightness1:   b1,
		Brightness2:   b2,
		Sample:        sample,
		FRP:           frp,
		Confidence:    conf,
		DetectionType: fields[10],
	}, nil
}

// Fields re-encodes the record into its original field formats in canonical
// column order: the date back to its 8-digit numeric code, the time
// zero-padded to four digits, floats with minimal round-trippable precision.
func (d Detection) Fields() []string {
	return []string{
		d.Date.Format(dateLayout),
		fmt.Sprintf("%04d", d.Time),
		d.Satellite,
		formatFloat(d.Lat),
		formatFloat(d.Lon),
		formatFloat(d.Brightness1),
		formatFloat(d.Brightness2),
		strconv.Itoa(d.Sample),
		formatFloat(d.FRP),
		strconv.Itoa(d.Confidence),
		d.DetectionType,
	}
}

// dateLayout is the 8-digit numeric date code used by the granule files,
// e.g. "20150901" for 1 September 2015.
const dateLayout = "20060102"

// parseDateCode parses an 8-digit YYYYMMDD code. time.Parse rejects
// impossible calendar dates such as 20150230.
func parseDateCode(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, fmt.Errorf("%w: date code %q is not 8 digits", ErrMalformedRecord, s)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date code %q: not a real calendar date", ErrMalformedRecord, s)
	}
	return t, nil
}

// parseTimeCode parses an HHMM observation time in the range 0000-2359.
func parseTimeCode(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q is not numeric", ErrMalformedRecord, s)
	}
	hour, minute := v/100, v%100
	if v < 0 || hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: time %04d outside 0000-2359", ErrMalformedRecord, v)
	}
	return v, nil
}

func parseFloatField(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrMalformedRecord, name, s)
	}
	return v, nil
}

func parseIntField(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedRecord, name, s)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
