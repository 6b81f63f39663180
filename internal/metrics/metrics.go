// Package metrics provides per-tick observers that reduce simulation state
// to scalar summaries for run reports and telemetry.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/particles"
)

// FieldEnergy tracks the mean kinetic energy of the field channels.
type FieldEnergy struct {
	samples []float64
}

func NewFieldEnergy() *FieldEnergy { return &FieldEnergy{} }

func (m *FieldEnergy) Name() string { return "field_energy" }

func (m *FieldEnergy) Observe(g *field.Grid, _ *particles.Pool, _ float64) {
	m.samples = append(m.samples, g.MeanKineticEnergy())
}

func (m *FieldEnergy) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

// Latest returns the most recent sample, for live display.
func (m *FieldEnergy) Latest() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return m.samples[len(m.samples)-1]
}

func (m *FieldEnergy) History() []float64 { return m.samples }

func (m *FieldEnergy) Reset() { m.samples = m.samples[:0] }

// CoherenceStats tracks the spatial mean of the coherence channel; StdDev
// additionally exposes its spread over the observed ticks.
type CoherenceStats struct {
	samples []float64
}

func NewCoherenceStats() *CoherenceStats { return &CoherenceStats{} }

func (m *CoherenceStats) Name() string { return "mean_coherence" }

func (m *CoherenceStats) Observe(g *field.Grid, _ *particles.Pool, _ float64) {
	m.samples = append(m.samples, g.Coherence.Mean())
}

func (m *CoherenceStats) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

func (m *CoherenceStats) StdDev() float64 {
	if len(m.samples) < 2 {
		return 0
	}
	return stat.StdDev(m.samples, nil)
}

func (m *CoherenceStats) Reset() { m.samples = m.samples[:0] }

// FlashRate tracks the fraction of cells firing per observed tick.
type FlashRate struct {
	samples []float64
}

func NewFlashRate() *FlashRate { return &FlashRate{} }

func (m *FlashRate) Name() string { return "flash_rate" }

func (m *FlashRate) Observe(g *field.Grid, _ *particles.Pool, _ float64) {
	m.samples = append(m.samples, g.Flash.Mean())
}

func (m *FlashRate) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

func (m *FlashRate) Reset() { m.samples = m.samples[:0] }

// ParticleLoad tracks pool occupancy as a fraction of capacity.
type ParticleLoad struct {
	samples []float64
}

func NewParticleLoad() *ParticleLoad { return &ParticleLoad{} }

func (m *ParticleLoad) Name() string { return "particle_load" }

func (m *ParticleLoad) Observe(_ *field.Grid, p *particles.Pool, _ float64) {
	m.samples = append(m.samples, float64(p.ActiveCount())/float64(p.Capacity()))
}

func (m *ParticleLoad) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return stat.Mean(m.samples, nil)
}

func (m *ParticleLoad) Reset() { m.samples = m.samples[:0] }
