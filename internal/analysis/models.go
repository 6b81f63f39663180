// Package analysis maintains the two derived per-cell channels: a
// threshold-collapse accumulator and a smoothed integration measure. Both
// read the field grid and write back into its analysis storage.
package analysis

import (
	"math"

	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/lattice"
)

// guards the cosine-similarity magnitudes against zero vectors
const simEps = 1e-6

type Config struct {
	Enabled      bool
	Threshold    float64 // collapse threshold in [0, 1]
	GrowthRate   float64
	PhiSmoothing float64 // exponential smoothing factor in [0, 1]
	VEV          float64
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Threshold:    0.85,
		GrowthRate:   0.9,
		PhiSmoothing: 0.15,
		VEV:          0.8,
	}
}

// Models runs the two computations. It holds no per-cell state of its own;
// everything lives in the grid's channels.
type Models struct {
	lat *lattice.Lattice
}

func New(lat *lattice.Lattice) *Models {
	return &Models{lat: lat}
}

// Step runs both models. The caller invokes this on a reduced cadence and
// passes an already-compensated dt (the base tick times the cadence), so the
// integral contribution matches running every tick.
func (m *Models) Step(g *field.Grid, dt float64, cfg Config) {
	if !cfg.Enabled {
		return
	}
	m.stepCollapse(g, dt, cfg)
	m.stepPhi(g, cfg.PhiSmoothing)
}

// stepCollapse accumulates per-cell coherence from electron and photon
// activity, discounted by how far the higgs sits from the vacuum. Flash is
// cleared first so it is 1 only in the tick its cell crosses the threshold.
func (m *Models) stepCollapse(g *field.Grid, dt float64, cfg Config) {
	for i := range g.Coherence {
		g.Flash[i] = 0

		ea := g.Electron[i]*g.Electron[i] + g.VElectron[i]*g.VElectron[i]
		pa := g.Photon[i]*g.Photon[i] + g.VPhoton[i]*g.VPhoton[i]
		dev := math.Abs(g.Higgs[i] - cfg.VEV)

		c := g.Coherence[i] + cfg.GrowthRate*dt*(0.6*ea+0.4*pa-0.5*dev)
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		if c >= cfg.Threshold {
			g.Flash[i] = 1
			c = 0
		}
		g.Coherence[i] = c
	}
}

// stepPhi smooths the per-cell integration proxy: mean absolute cosine
// similarity to the six neighbors minus the weakest single coupling.
func (m *Models) stepPhi(g *field.Grid, alpha float64) {
	var nb [6]int
	for i := range g.Phi {
		hi, ei, pi := g.Higgs[i], g.Electron[i], g.Photon[i]
		magI := math.Sqrt(hi*hi+ei*ei+pi*pi) + simEps

		m.lat.Neighbors(i, &nb)
		sum := 0.0
		min := math.MaxFloat64
		for _, j := range nb {
			hj, ej, pj := g.Higgs[j], g.Electron[j], g.Photon[j]
			magJ := math.Sqrt(hj*hj+ej*ej+pj*pj) + simEps
			sim := math.Abs(hi*hj+ei*ej+pi*pj) / (magI * magJ)
			sum += sim
			if sim < min {
				min = sim
			}
		}
		raw := (sum - min) / 6
		g.Phi[i] = g.Phi[i]*(1-alpha) + raw*alpha
	}
}
