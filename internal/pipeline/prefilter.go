package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

// prefilter streams every granule in the input directory through the coarse
// bounding-box test, one file at a time, so peak memory is one row plus the
// accumulated candidate set — never the whole corpus. The box test uses raw
// geographic degrees with strict-exclusive edges; no reprojection cost is
// paid until the candidate set is reduced.
//
// A malformed row skips that row; an unreadable file skips that file with a
// warning; neither halts the batch.
func (p *Pipeline) prefilter(ctx context.Context) ([]domain.Detection, error) {
	entries, err := os.ReadDir(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var candidates []domain.Detection
	box := p.cfg.Box

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		path := filepath.Join(p.cfg.InputDir, entry.Name())
		before := len(candidates)
		start := time.Now()

		stats, err := p.scanner.ScanFile(path, func(d domain.Detection) error {
			if box.Contains(d.Lat, d.Lon) {
				candidates = append(candidates, d)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrUnreadableFile) {
				p.logger.Warn("skipping unreadable granule", "file", path, "error", err)
				p.update(func(s *Stats) { s.FilesSkipped++ })
				p.metrics.FilesSkipped.Inc()
				continue
			}
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}

		passed := len(candidates) - before
		p.update(func(s *Stats) {
			s.FilesProcessed++
			s.RecordsScanned += stats.Scanned
			s.RecordsSkipped += stats.Skipped
			s.Candidates += passed
		})
		p.metrics.FilesProcessed.Inc()
		p.metrics.RecordsScanned.Add(float64(stats.Scanned))
		p.metrics.RecordsSkipped.Add(float64(stats.Skipped))
		p.metrics.Candidates.Add(float64(passed))
		p.metrics.FileScanDuration.Observe(time.Since(start).Seconds())

		p.logger.Debug("granule scanned", "file", entry.Name(),
			"records", stats.Scanned, "skipped", stats.Skipped, "passed", passed)
	}

	return candidates, nil
}
