package pipeline

import (
	"github.com/paulmach/orb"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

// filterByRadius reprojects each candidate once and tests it against every
// buffer, returning one result set per radius in the buffers' order. Because
// the buffers share a center and the radii ascend, result sets are nested:
// results[i] is a subset of results[i+1].
//
// Cost is O(candidates x buffers); the candidate set has already been
// reduced to a small fraction of the corpus by the coarse prefilter.
func (p *Pipeline) filterByRadius(candidates []domain.Detection) [][]domain.Detection {
	results := make([][]domain.Detection, len(p.buffers))

	for i := range candidates {
		d := &candidates[i]
		x, y, err := p.proj.Forward(d.Lat, d.Lon)
		if err != nil {
			// Upstream parsing guarantees valid coordinates; if one slips
			// through anyway, drop it loudly rather than test garbage.
			p.logger.Warn("invalid coordinate reached containment filter",
				"lat", d.Lat, "lon", d.Lon, "error", err)
			p.update(func(s *Stats) { s.RecordsSkipped++ })
			p.metrics.RecordsSkipped.Inc()
			continue
		}
		pt := orb.Point{x, y}

		for j := range p.buffers {
			if p.buffers[j].Contains(pt) {
				results[j] = append(results[j], candidates[i])
			}
		}
	}

	return results
}
