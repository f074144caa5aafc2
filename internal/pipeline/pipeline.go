// Package pipeline orchestrates the two-stage spatial filter: a streaming
// coarse bounding-box prefilter over the raw granule corpus, then exact
// within-radius containment of the reduced candidate set in projected planar
// coordinates.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/lbhendricks/KTGclimate-fire/internal/adapter/delim"
	"github.com/lbhendricks/KTGclimate-fire/internal/config"
	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
	"github.com/lbhendricks/KTGclimate-fire/internal/geo"
	"github.com/lbhendricks/KTGclimate-fire/internal/observability"
)

// SourceScanner streams the detections of one granule file.
type SourceScanner interface {
	ScanFile(path string, fn func(domain.Detection) error) (delim.ScanStats, error)
}

// TableWriter persists a result table atomically.
type TableWriter interface {
	WriteTable(path string, records []domain.Detection) error
}

// MatchSink publishes one radius's result set downstream. Optional; a nil
// sink disables publishing.
type MatchSink interface {
	PublishMatches(ctx context.Context, radiusLabel string, records []domain.Detection) error
}

// Stats is a snapshot of run progress, also served by /statusz.
type Stats struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	FilesProcessed int `json:"files_processed"`
	FilesSkipped   int `json:"files_skipped"`
	RecordsScanned int `json:"records_scanned"`
	RecordsSkipped int `json:"records_skipped"`
	Candidates     int `json:"candidates"`

	// Matches maps a radius label ("50km") to its final row count.
	Matches map[string]int `json:"matches,omitempty"`

	ReusedIntermediate bool `json:"reused_intermediate"`
}

// Pipeline runs the full filtering batch. It is single-threaded by design;
// the mutex only guards Stats against concurrent /statusz reads.
type Pipeline struct {
	cfg     *config.Config
	proj    *geo.Projection
	center  orb.Point
	buffers []geo.Buffer

	scanner SourceScanner
	writer  TableWriter
	sink    MatchSink

	logger  *slog.Logger
	metrics *observability.Metrics

	mu    sync.Mutex
	stats Stats
}

// New builds a Pipeline from validated configuration: it constructs the
// projection, reprojects the reference point, and builds the nested buffers
// once. The buffers are immutable for the life of the run.
func New(cfg *config.Config, scanner SourceScanner, writer TableWriter, sink MatchSink, logger *slog.Logger, metrics *observability.Metrics) (*Pipeline, error) {
	proj, err := geo.NewProjection(cfg.EllipsoidA, cfg.EllipsoidB, cfg.UTMZone, cfg.SouthernHemisphere)
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	x, y, err := proj.Forward(cfg.RefLat, cfg.RefLon)
	if err != nil {
		return nil, fmt.Errorf("reproject reference point: %w", err)
	}
	center := orb.Point{x, y}

	buffers, err := geo.BuildBuffers(center, cfg.RadiiMeters)
	if err != nil {
		return nil, fmt.Errorf("build buffers: %w", err)
	}

	return &Pipeline{
		cfg:     cfg,
		proj:    proj,
		center:  center,
		buffers: buffers,
		scanner: scanner,
		writer:  writer,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		stats:   Stats{Matches: make(map[string]int)},
	}, nil
}

// Center returns the reference point in planar coordinates.
func (p *Pipeline) Center() orb.Point { return p.center }

// Snapshot returns a copy of the current run stats.
func (p *Pipeline) Snapshot() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Matches = make(map[string]int, len(p.stats.Matches))
	for k, v := range p.stats.Matches {
		s.Matches[k] = v
	}
	return s
}

// Run executes the batch: prefilter (or intermediate reuse), persistence of
// the candidate set, per-radius containment, and output writing. Re-running
// with the same inputs is idempotent.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.update(func(s *Stats) { s.StartedAt = domain.Now() })
	p.logger.Info("pipeline started",
		"input_dir", p.cfg.InputDir,
		"reference", p.cfg.RefName,
		"radii", p.cfg.RadiiMeters,
	)

	if err := p.exportBufferGeoJSON(); err != nil {
		return err
	}

	candidates, err := p.loadCandidates(ctx)
	if err != nil {
		return err
	}

	results := p.filterByRadius(candidates)

	for i, buf := range p.buffers {
		if err := p.emitResult(ctx, buf, results[i]); err != nil {
			return err
		}
	}

	p.update(func(s *Stats) { s.FinishedAt = domain.Now() })
	p.logFinalSummary()
	return nil
}

// emitResult persists one radius's result set, logs the required summary
// line, and publishes to the optional sink.
func (p *Pipeline) emitResult(ctx context.Context, buf geo.Buffer, result []domain.Detection) error {
	label := buf.Label()
	path := p.cfg.RadiusOutputPath(buf.Radius())

	if err := p.writer.WriteTable(path, result); err != nil {
		return fmt.Errorf("write %s result: %w", label, err)
	}

	p.update(func(s *Stats) { s.Matches[label] = len(result) })
	p.metrics.Matches.WithLabelValues(label).Add(float64(len(result)))

	p.logger.Info(fmt.Sprintf("%d fire detections within a %gkm radius of %s",
		len(result), buf.Radius()/1000, p.cfg.RefName), "output", path)

	if p.sink != nil {
		if err := p.sink.PublishMatches(ctx, label, result); err != nil {
			return fmt.Errorf("publish %s matches: %w", label, err)
		}
	}
	return nil
}

// loadCandidates produces the coarse candidate set, either by re-reading the
// persisted intermediate from an earlier run or by scanning the raw corpus
// and persisting the result.
func (p *Pipeline) loadCandidates(ctx context.Context) ([]domain.Detection, error) {
	intermediate := p.cfg.IntermediatePath()

	if p.cfg.ReuseIntermediate {
		if _, err := os.Stat(intermediate); err == nil {
			return p.readIntermediate(intermediate)
		}
		p.logger.Info("no intermediate dataset found, scanning raw corpus", "path", intermediate)
	}

	candidates, err := p.prefilter(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.writer.WriteTable(intermediate, candidates); err != nil {
		return nil, fmt.Errorf("persist intermediate dataset: %w", err)
	}
	p.logger.Info("intermediate dataset persisted", "path", intermediate, "candidates", len(candidates))

	return candidates, nil
}

func (p *Pipeline) readIntermediate(path string) ([]domain.Detection, error) {
	var candidates []domain.Detection
	stats, err := p.scanner.ScanFile(path, func(d domain.Detection) error {
		candidates = append(candidates, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reuse intermediate dataset: %w", err)
	}

	p.update(func(s *Stats) {
		s.ReusedIntermediate = true
		s.Candidates = len(candidates)
	})
	p.metrics.Candidates.Add(float64(len(candidates)))
	p.logger.Info("reusing intermediate dataset", "path", path,
		"candidates", len(candidates), "skipped", stats.Skipped)
	return candidates, nil
}

func (p *Pipeline) exportBufferGeoJSON() error {
	if p.cfg.BufferGeoJSONPath == "" {
		return nil
	}
	data, err := geo.BuffersGeoJSON(p.buffers)
	if err != nil {
		return fmt.Errorf("encode buffer geojson: %w", err)
	}
	if err := os.WriteFile(p.cfg.BufferGeoJSONPath, data, 0o644); err != nil {
		return fmt.Errorf("write buffer geojson: %w", err)
	}
	p.logger.Info("buffer geometry exported", "path", p.cfg.BufferGeoJSONPath)
	return nil
}

func (p *Pipeline) logFinalSummary() {
	p.mu.Lock()
	s := p.stats
	p.mu.Unlock()

	p.logger.Info("pipeline finished",
		"files_processed", s.FilesProcessed,
		"files_skipped", s.FilesSkipped,
		"records_scanned", s.RecordsScanned,
		"records_skipped", s.RecordsSkipped,
		"candidates", s.Candidates,
		"duration", s.FinishedAt.Sub(s.StartedAt).String(),
	)
}

func (p *Pipeline) update(fn func(*Stats)) {
	p.mu.Lock()
	fn(&p.stats)
	p.mu.Unlock()
}
