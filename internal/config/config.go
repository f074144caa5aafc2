package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lbhendricks/KTGclimate-fire/internal/geo"
)

// Defaults target the MODIS FIRMS corpus clipped around Ketapang (KTG),
// West Kalimantan: UTM zone 49 south on the Australian National Spheroid,
// and a coarse box padded well beyond the largest 500 km buffer.
const (
	DefaultRefLat  = -1.8166
	DefaultRefLon  = 109.9619
	DefaultRefName = "Ketapang (KTG)"

	DefaultUTMZone    = 49
	DefaultEllipsoidA = 6378160.0
	DefaultEllipsoidB = 6356774.50408554

	DefaultKafkaTopic = "fire-detections"

	intermediateFileName = "coarse_candidates.csv"
)

// Config holds all pipeline settings, populated from environment variables.
// It is constructed once in main and threaded through the pipeline by
// argument; no component reads ambient state.
type Config struct {
	InputDir  string
	OutputDir string

	RefLat  float64
	RefLon  float64
	RefName string

	RadiiMeters []float64
	Box         geo.BoundingBox

	UTMZone            int
	SouthernHemisphere bool
	EllipsoidA         float64
	EllipsoidB         float64

	ReuseIntermediate bool
	BufferGeoJSONPath string

	StatusAddr string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates it. Any error here is fatal and aborts the run
// before file I/O.
func Load() (*Config, error) {
	cfg := &Config{
		InputDir:  os.Getenv("INPUT_DIR"),
		OutputDir: os.Getenv("OUTPUT_DIR"),

		RefName: envOrDefault("REF_NAME", DefaultRefName),

		UTMZone:            DefaultUTMZone,
		SouthernHemisphere: true,

		ReuseIntermediate: envBool("REUSE_INTERMEDIATE"),
		BufferGeoJSONPath: os.Getenv("BUFFER_GEOJSON_PATH"),
		StatusAddr:        os.Getenv("STATUS_ADDR"),

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", DefaultKafkaTopic),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.RefLat, err = envFloat("REF_LAT", DefaultRefLat); err != nil {
		return nil, err
	}
	if cfg.RefLon, err = envFloat("REF_LON", DefaultRefLon); err != nil {
		return nil, err
	}
	if cfg.RadiiMeters, err = parseRadii(envOrDefault("RADII_METERS", "5000,50000,250000,500000")); err != nil {
		return nil, err
	}
	if cfg.Box, err = loadBox(); err != nil {
		return nil, err
	}
	if cfg.UTMZone, err = envInt("UTM_ZONE", DefaultUTMZone); err != nil {
		return nil, err
	}
	if v := os.Getenv("SOUTHERN_HEMISPHERE"); v != "" {
		cfg.SouthernHemisphere = v == "true"
	}
	if cfg.EllipsoidA, err = envFloat("ELLIPSOID_A", DefaultEllipsoidA); err != nil {
		return nil, err
	}
	if cfg.EllipsoidB, err = envFloat("ELLIPSOID_B", DefaultEllipsoidB); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the fatal configuration invariants: required paths,
// positive strictly-ascending radii, an ordered bounding box, and coarse
// containment safety (the box must cover the largest buffer radius around the
// reference point, so the prefilter can never drop a true positive).
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.RefLat < -90 || c.RefLat > 90 || c.RefLon < -180 || c.RefLon > 180 {
		return fmt.Errorf("reference point (%g, %g) outside geographic bounds", c.RefLat, c.RefLon)
	}
	if len(c.RadiiMeters) == 0 {
		return fmt.Errorf("at least one buffer radius is required")
	}
	if !sort.Float64sAreSorted(c.RadiiMeters) {
		return fmt.Errorf("radii must be in ascending order: %v", c.RadiiMeters)
	}
	for i, r := range c.RadiiMeters {
		if r <= 0 {
			return fmt.Errorf("radius must be positive, got %g", r)
		}
		if i > 0 && r == c.RadiiMeters[i-1] {
			return fmt.Errorf("duplicate radius %g", r)
		}
	}
	if err := c.Box.Validate(); err != nil {
		return err
	}
	maxRadius := c.RadiiMeters[len(c.RadiiMeters)-1]
	if !c.Box.Covers(c.RefLat, c.RefLon, maxRadius) {
		return fmt.Errorf("bounding box %+v does not cover the %gm radius around (%g, %g)",
			c.Box, maxRadius, c.RefLat, c.RefLon)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// KafkaEnabled reports whether the optional matched-detection sink is
// configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// IntermediatePath is the persisted coarse candidate set ("rough square"),
// written once per full-corpus scan and reusable by later runs.
func (c *Config) IntermediatePath() string {
	return filepath.Join(c.OutputDir, intermediateFileName)
}

// RadiusOutputPath is the final per-radius table, e.g. "within_500km.csv".
func (c *Config) RadiusOutputPath(radiusMeters float64) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("within_%gkm.csv", radiusMeters/1000))
}

func loadBox() (geo.BoundingBox, error) {
	var box geo.BoundingBox
	var err error
	if box.LatMin, err = envFloat("BOX_LAT_MIN", -6.5); err != nil {
		return box, err
	}
	if box.LatMax, err = envFloat("BOX_LAT_MAX", 2.7); err != nil {
		return box, err
	}
	if box.LonMin, err = envFloat("BOX_LON_MIN", 105); err != nil {
		return box, err
	}
	if box.LonMax, err = envFloat("BOX_LON_MAX", 115); err != nil {
		return box, err
	}
	return box, nil
}

func parseRadii(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	radii := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid radius %q in RADII_METERS", p)
		}
		radii = append(radii, v)
	}
	return radii, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}
