package field

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownPreset is returned by Reset for a name outside the preset table.
var ErrUnknownPreset = errors.New("field: unknown preset")

// Preset names accepted by Reset.
const (
	PresetLoop          = "loop"
	PresetBigBang       = "bigbang"
	PresetHiggs         = "higgs"
	PresetConsciousness = "consciousness"
	PresetAntimatter    = "antimatter"
)

// PresetNames lists the presets in a stable order.
func PresetNames() []string {
	return []string{PresetLoop, PresetBigBang, PresetHiggs, PresetConsciousness, PresetAntimatter}
}

// Reset fully reinitializes amplitudes, velocities, and the analysis
// channels for the named preset, centered on the given vacuum value.
func (g *Grid) Reset(preset string, vev float64) error {
	g.VHiggs.Zero()
	g.VElectron.Zero()
	g.VPhoton.Zero()
	g.Coherence.Zero()
	g.Flash.Zero()
	g.Phi.Zero()

	switch preset {
	case PresetLoop:
		g.resetLoop(vev)
	case PresetBigBang:
		g.resetBigBang(vev)
	case PresetHiggs:
		g.resetHiggs(vev)
	case PresetConsciousness:
		g.resetConsciousness(vev)
	case PresetAntimatter:
		g.resetAntimatter(vev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return nil
}

// uniform low-amplitude noise around the vacuum
func (g *Grid) resetLoop(vev float64) {
	for i := range g.Higgs {
		g.Higgs[i] = vev + (g.rng.Float64()*2-1)*0.15
		g.Electron[i] = (g.rng.Float64()*2 - 1) * 0.1
		g.Photon[i] = (g.rng.Float64()*2 - 1) * 0.05
	}
}

// localized high-energy packet with a Gaussian envelope at the lattice center
func (g *Grid) resetBigBang(vev float64) {
	n := g.lat.N
	c := float64(n) / 2
	sigma2 := 2 * math.Pow(float64(n)*0.08, 2)
	for i := range g.Higgs {
		x, y, z := g.lat.Coords(i)
		dx, dy, dz := float64(x)-c, float64(y)-c, float64(z)-c
		env := math.Exp(-(dx*dx + dy*dy + dz*dz) / sigma2)
		g.Higgs[i] = vev + 2.5*env
		g.Electron[i] = 1.8 * env
		g.Photon[i] = 1.2 * env
		g.VElectron[i] = (g.rng.Float64()*2 - 1) * env * 0.5
	}
}

// sinusoidal standing wave on the higgs channel
func (g *Grid) resetHiggs(vev float64) {
	k := 2 * math.Pi / float64(g.lat.N)
	for i := range g.Higgs {
		x, y, z := g.lat.Coords(i)
		g.Higgs[i] = vev + 0.6*math.Sin(k*float64(x))*math.Sin(k*float64(y))*math.Sin(k*float64(z))
		g.Electron[i] = 0
		g.Photon[i] = 0
	}
}

// spatially resonant pattern: each channel rides its own axis mode so the
// local state vectors stay strongly coupled across neighbors
func (g *Grid) resetConsciousness(vev float64) {
	k := 4 * math.Pi / float64(g.lat.N)
	for i := range g.Higgs {
		x, y, z := g.lat.Coords(i)
		g.Higgs[i] = vev + 0.4*math.Sin(k*float64(x))
		g.Electron[i] = 0.5 * math.Sin(k*float64(y))
		g.Photon[i] = 0.3 * math.Sin(k*float64(z))
		g.Coherence[i] = 0.3
	}
}

// alternating-sign electron domains in blocks of N/4 cells
func (g *Grid) resetAntimatter(vev float64) {
	block := g.lat.N / 4
	if block < 1 {
		block = 1
	}
	for i := range g.Higgs {
		x, y, z := g.lat.Coords(i)
		sign := 1.0
		if (x/block+y/block+z/block)%2 == 1 {
			sign = -1.0
		}
		g.Higgs[i] = vev
		g.Electron[i] = sign * 0.9
		g.Photon[i] = 0
	}
}
