// Command genmock generates synthetic FIRMS-style granule files around the
// reference airport for fixtures and manual pipeline runs. It scatters
// detections across the radius bands, adds far-field points outside the
// coarse box, and injects a few malformed rows per file so skip counting can
// be exercised.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir testdata/granules -files 3 -rows 200
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lbhendricks/KTGclimate-fire/internal/config"
	"github.com/lbhendricks/KTGclimate-fire/internal/geo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write granule files into")
	files := flag.Int("files", 3, "number of granule files")
	rows := flag.Int("rows", 200, "well-formed rows per file")
	malformed := flag.Int("malformed", 2, "malformed rows per file")
	seed := flag.Int64("seed", 1, "PRNG seed for reproducible fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	for i := 0; i < *files; i++ {
		name := fmt.Sprintf("granule_%03d.csv", i)
		path := filepath.Join(*outDir, name)
		if err := writeGranule(path, rng, *rows, *malformed); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("%s: %d rows (%d malformed)", name, *rows+*malformed, *malformed)
	}
	return nil
}

var columns = []string{
	"date", "time", "satelliteFlag", "lat", "lon",
	"brightness1", "brightness2", "sampleNumber",
	"fireRadiativePower", "confidence", "detectionType",
}

func writeGranule(path string, rng *rand.Rand, rows, malformed int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		if err := w.Write(syntheticRow(rng)); err != nil {
			return err
		}
	}
	for i := 0; i < malformed; i++ {
		if err := w.Write(malformedRow(rng, i)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// syntheticRow places roughly 70% of detections within 550 km of the
// reference point (spanning every radius band) and scatters the rest across
// the archipelago, some outside the coarse box.
func syntheticRow(rng *rand.Rand) []string {
	var lat, lon float64
	if rng.Float64() < 0.7 {
		bearing := rng.Float64() * 360
		distance := rng.Float64() * 550_000
		lat, lon = geo.DestinationPoint(config.DefaultRefLat, config.DefaultRefLon, bearing, distance)
	} else {
		lat = -11 + rng.Float64()*17 // -11..6
		lon = 95 + rng.Float64()*45  // 95..140
	}

	day := 1 + rng.Intn(30)
	hhmm := rng.Intn(24)*100 + rng.Intn(60)
	sat := "T"
	if rng.Intn(2) == 0 {
		sat = "A"
	}

	return []string{
		fmt.Sprintf("201509%02d", day),
		fmt.Sprintf("%04d", hhmm),
		sat,
		strconv.FormatFloat(lat, 'f', 4, 64),
		strconv.FormatFloat(lon, 'f', 4, 64),
		strconv.FormatFloat(300+rng.Float64()*80, 'f', 1, 64),
		strconv.FormatFloat(285+rng.Float64()*25, 'f', 1, 64),
		strconv.Itoa(rng.Intn(1354)),
		strconv.FormatFloat(rng.Float64()*120, 'f', 1, 64),
		strconv.Itoa(rng.Intn(101)),
		strconv.Itoa(rng.Intn(4)),
	}
}

// malformedRow produces rows the reader must skip: a non-numeric latitude or
// an impossible calendar date.
func malformedRow(rng *rand.Rand, i int) []string {
	row := syntheticRow(rng)
	if i%2 == 0 {
		row[3] = "not-a-latitude"
	} else {
		row[0] = "20150230"
	}
	return row
}
