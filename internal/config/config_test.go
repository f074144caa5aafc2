package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredPaths(t *testing.T) {
	t.Helper()
	t.Setenv("INPUT_DIR", "/data/granules")
	t.Setenv("OUTPUT_DIR", "/data/out")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredPaths(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/granules", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, DefaultRefLat, cfg.RefLat)
	assert.Equal(t, DefaultRefLon, cfg.RefLon)
	assert.Equal(t, "Ketapang (KTG)", cfg.RefName)
	assert.Equal(t, []float64{5000, 50000, 250000, 500000}, cfg.RadiiMeters)
	assert.Equal(t, -6.5, cfg.Box.LatMin)
	assert.Equal(t, 2.7, cfg.Box.LatMax)
	assert.Equal(t, 105.0, cfg.Box.LonMin)
	assert.Equal(t, 115.0, cfg.Box.LonMax)
	assert.Equal(t, 49, cfg.UTMZone)
	assert.True(t, cfg.SouthernHemisphere)
	assert.Equal(t, 6378160.0, cfg.EllipsoidA)
	assert.Equal(t, 6356774.50408554, cfg.EllipsoidB)
	assert.False(t, cfg.ReuseIntermediate)
	assert.Empty(t, cfg.StatusAddr)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequiredPaths(t)
	t.Setenv("REF_LAT", "-2.0")
	t.Setenv("REF_LON", "110.0")
	t.Setenv("REF_NAME", "Test Field")
	t.Setenv("RADII_METERS", "1000,10000")
	t.Setenv("BOX_LAT_MIN", "-3")
	t.Setenv("BOX_LAT_MAX", "-1")
	t.Setenv("BOX_LON_MIN", "109")
	t.Setenv("BOX_LON_MAX", "111")
	t.Setenv("REUSE_INTERMEDIATE", "true")
	t.Setenv("STATUS_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "matches")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, -2.0, cfg.RefLat)
	assert.Equal(t, "Test Field", cfg.RefName)
	assert.Equal(t, []float64{1000, 10000}, cfg.RadiiMeters)
	assert.True(t, cfg.ReuseIntermediate)
	assert.Equal(t, ":9090", cfg.StatusAddr)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "matches", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingRequiredPaths(t *testing.T) {
	t.Setenv("INPUT_DIR", "")
	t.Setenv("OUTPUT_DIR", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INPUT_DIR")

	t.Setenv("INPUT_DIR", "/data/granules")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTPUT_DIR")
}

func TestLoad_InvalidRadii(t *testing.T) {
	cases := map[string]string{
		"non-numeric":   "5000,abc",
		"zero radius":   "0,5000",
		"negative":      "-5,5000",
		"not ascending": "50000,5000",
		"duplicate":     "5000,5000",
		"empty":         " , ",
	}
	for name, radii := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredPaths(t)
			t.Setenv("RADII_METERS", radii)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidBox(t *testing.T) {
	setRequiredPaths(t)
	t.Setenv("BOX_LAT_MIN", "3")
	t.Setenv("BOX_LAT_MAX", "-6")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BoxMustCoverLargestRadius(t *testing.T) {
	setRequiredPaths(t)
	// A box that fits the reference point but not the 500 km buffer.
	t.Setenv("BOX_LAT_MIN", "-2.5")
	t.Setenv("BOX_LAT_MAX", "-1")
	t.Setenv("BOX_LON_MIN", "109")
	t.Setenv("BOX_LON_MAX", "111")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not cover")
}

func TestLoad_ReferenceOutsideGeographicBounds(t *testing.T) {
	setRequiredPaths(t)
	t.Setenv("REF_LAT", "95")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_OutputPaths(t *testing.T) {
	setRequiredPaths(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/out/coarse_candidates.csv", cfg.IntermediatePath())
	assert.Equal(t, "/data/out/within_5km.csv", cfg.RadiusOutputPath(5000))
	assert.Equal(t, "/data/out/within_500km.csv", cfg.RadiusOutputPath(500000))
	assert.Equal(t, "/data/out/within_2.5km.csv", cfg.RadiusOutputPath(2500))
}
