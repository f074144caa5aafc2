// Package domain models satellite fire-detection (active fire / thermal
// anomaly) records as distributed in FIRMS-style delimited granule tables.
//
// # Data Source
//
// Each granule is a delimited text table (whitespace- or comma-separated)
// with a header row naming the columns in [Columns]. One directory holds many
// same-schema granules covering the full global corpus; this tool clips that
// corpus down to the region around a single reference airport.
//
// # Field Conventions
//
// Date:
//
//	8-digit numeric code YYYYMMDD, e.g. "20150901" = 1 September 2015.
//	Must be a real calendar date; impossible codes reject the row.
//	Re-encoded to the same 8-digit form on output, never as a parsed
//	date object.
//
// Time:
//
//	HHMM in 24-hour notation, 0000-2359, e.g. "0321" = 03:21 UTC.
//	Zero-padding is restored on output.
//
// Satellite flag:
//
//	Single-letter source code, e.g. "A" (Aqua) or "T" (Terra).
//
// Coordinates:
//
//	Decimal degrees, WGS84. Latitude must lie in [-90, 90] and longitude
//	in [-180, 180]; anything outside rejects the row so garbage
//	coordinates can never reach the reprojector.
//
// Brightness temperatures:
//
//	Two channel values in kelvin (mid-infrared and thermal-infrared
//	channels).
//
// Confidence:
//
//	Integer percentage 0-100 assigned by the upstream detection
//	algorithm.
//
// Detection type:
//
//	Categorical code for the anomaly class (vegetation fire, volcano,
//	other static source, offshore). Carried through opaquely.
//
// Records are immutable once parsed: every pipeline stage selects or excludes
// whole records and never rewrites field values.
package domain
