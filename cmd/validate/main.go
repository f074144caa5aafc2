// Command validate performs integrity checks over a finished filtering run's
// outputs: the persisted coarse candidate set and the per-radius result
// tables. It verifies radius nesting, coarse containment safety, and that
// every persisted row survives a parse/format round trip.
//
// Usage:
//
//	go run ./cmd/validate -output-dir ./out -radii-km 5,50,250,500
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lbhendricks/KTGclimate-fire/internal/adapter/delim"
	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	outputDir := flag.String("output-dir", "", "directory holding the run's output tables")
	radiiKM := flag.String("radii-km", "5,50,250,500", "comma-separated radii in kilometers, ascending")
	flag.Parse()

	if *outputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	radii, err := parseRadiiKM(*radiiKM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(*outputDir, radii); code != 0 {
		os.Exit(code)
	}
}

func run(outputDir string, radiiKM []float64) int {
	fmt.Println("=== Fire Detection Output Validation ===")
	fmt.Println()

	intermediate, _, err := delim.ReadTable(filepath.Join(outputDir, "coarse_candidates.csv"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load intermediate dataset: %v\n", err)
		return 1
	}

	results := make([][]domain.Detection, len(radiiKM))
	for i, km := range radiiKM {
		path := filepath.Join(outputDir, fmt.Sprintf("within_%gkm.csv", km))
		recs, _, err := delim.ReadTable(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
			return 1
		}
		results[i] = recs
		fmt.Printf("  within_%gkm.csv: %d rows\n", km, len(recs))
	}
	fmt.Printf("  coarse_candidates.csv: %d rows\n", len(intermediate))

	phases := []*phase{
		validateNesting(results, radiiKM),
		validateCoarseSuperset(intermediate, results, radiiKM),
		validateRoundTrip(intermediate),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// recordKey identifies a detection across tables. Coordinates plus
// observation instant plus satellite are unique in practice.
func recordKey(d domain.Detection) string {
	return strings.Join(d.Fields()[:5], "|")
}

func keySet(recs []domain.Detection) map[string]bool {
	set := make(map[string]bool, len(recs))
	for _, r := range recs {
		set[recordKey(r)] = true
	}
	return set
}

// ── Phase 1: Radius Nesting ──
// Every row within a smaller radius must appear in every larger radius's
// table, since the buffers share one center.

func validateNesting(results [][]domain.Detection, radiiKM []float64) *phase {
	p := &phase{name: "Phase 1: Radius Nesting"}

	for i := 0; i+1 < len(results); i++ {
		larger := keySet(results[i+1])
		for _, r := range results[i] {
			if !larger[recordKey(r)] {
				p.errorf("row %s in %gkm result missing from %gkm result",
					recordKey(r), radiiKM[i], radiiKM[i+1])
			}
		}
		if len(results[i]) > len(results[i+1]) {
			p.errorf("%gkm result (%d rows) larger than %gkm result (%d rows)",
				radiiKM[i], len(results[i]), radiiKM[i+1], len(results[i+1]))
		}
	}
	return p
}

// ── Phase 2: Coarse Superset ──
// The coarse candidate set must contain every final row; anything else means
// the bounding box excluded a true positive.

func validateCoarseSuperset(intermediate []domain.Detection, results [][]domain.Detection, radiiKM []float64) *phase {
	p := &phase{name: "Phase 2: Coarse Superset"}

	coarse := keySet(intermediate)
	for i, recs := range results {
		for _, r := range recs {
			if !coarse[recordKey(r)] {
				p.errorf("row %s in %gkm result missing from coarse candidates", recordKey(r), radiiKM[i])
			}
		}
	}
	return p
}

// ── Phase 3: Field Round Trip ──
// Every persisted row must re-parse to an identical record, proving the
// writer preserved the original field formats.

func validateRoundTrip(recs []domain.Detection) *phase {
	p := &phase{name: "Phase 3: Field Round Trip"}

	for i, r := range recs {
		reparsed, err := domain.ParseDetection(r.Fields())
		if err != nil {
			p.errorf("row %d: re-parse failed: %v", i, err)
			continue
		}
		if reparsed != r {
			p.errorf("row %d: round trip changed record: %+v -> %+v", i, r, reparsed)
		}
	}
	return p
}

func parseRadiiKM(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	radii := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid radius %q in -radii-km", part)
		}
		radii = append(radii, v)
	}
	if len(radii) == 0 {
		return nil, fmt.Errorf("-radii-km is empty")
	}
	return radii, nil
}
