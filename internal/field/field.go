// Package field owns the three coupled scalar fields on the periodic lattice
// and advances them with a velocity-Verlet integrator.
package field

import (
	"math/rand"

	"github.com/san-kum/fieldlab/internal/lattice"
)

// Amplitude bounds applied after every step. Runaway values are clamped
// rather than reported; see the quartic restoring force in higgsAccel.
const (
	AmpMin = -5.0
	AmpMax = 5.0
)

const quiescenceEps = 1e-6

// Config is the per-tick parameter snapshot consumed by Step. The driver
// builds a fresh one each tick so components never share mutable settings.
type Config struct {
	SpeedMultiplier float64

	HiggsDiffusion     float64 // c1
	HiggsRestore       float64 // c2
	HiggsBackReaction  float64 // c3
	ElectronDiffusion  float64 // c4
	ElectronMass       float64 // c5
	YukawaCoupling     float64 // c6
	PhotonDiffusion    float64 // c7
	PhotonDamping      float64
	PhotonDrive        float64 // c8
	VEV                float64

	HeartStrength float64 // 0 disables the attractor

	ShapeEnabled bool
	MaskDamping  float64
}

func DefaultConfig() Config {
	return Config{
		SpeedMultiplier:   1.0,
		HiggsDiffusion:    0.35,
		HiggsRestore:      1.2,
		HiggsBackReaction: 0.15,
		ElectronDiffusion: 0.45,
		ElectronMass:      0.12,
		YukawaCoupling:    0.3,
		PhotonDiffusion:   0.6,
		PhotonDamping:     0.02,
		PhotonDrive:       0.25,
		VEV:               0.8,
		HeartStrength:     0,
		ShapeEnabled:      false,
		MaskDamping:       0.15,
	}
}

// Grid holds the field channels plus the two analysis channels. The analysis
// channels live here so the renderer reads everything from one place, but
// they are mutated only by the analysis models, except Coherence which the
// particle pool may boost through BoostCoherence.
type Grid struct {
	Higgs, Electron, Photon    lattice.Channel
	VHiggs, VElectron, VPhoton lattice.Channel

	Coherence, Flash, Phi lattice.Channel

	lat   *lattice.Lattice
	rng   *rand.Rand
	heart *Heart
	mask  lattice.Channel

	// scratch buffers reused across steps
	accH, accE, accP    lattice.Channel
	acc2H, acc2E, acc2P lattice.Channel
	newH, newE, newP    lattice.Channel
}

func New(lat *lattice.Lattice, rng *rand.Rand) *Grid {
	g := &Grid{
		lat:       lat,
		rng:       rng,
		Higgs:     lattice.NewChannel(lat),
		Electron:  lattice.NewChannel(lat),
		Photon:    lattice.NewChannel(lat),
		VHiggs:    lattice.NewChannel(lat),
		VElectron: lattice.NewChannel(lat),
		VPhoton:   lattice.NewChannel(lat),
		Coherence: lattice.NewChannel(lat),
		Flash:     lattice.NewChannel(lat),
		Phi:       lattice.NewChannel(lat),
		accH:      lattice.NewChannel(lat),
		accE:      lattice.NewChannel(lat),
		accP:      lattice.NewChannel(lat),
		acc2H:     lattice.NewChannel(lat),
		acc2E:     lattice.NewChannel(lat),
		acc2P:     lattice.NewChannel(lat),
		newH:      lattice.NewChannel(lat),
		newE:      lattice.NewChannel(lat),
		newP:      lattice.NewChannel(lat),
	}
	g.heart = newHeart(lat)
	g.Higgs.Fill(DefaultConfig().VEV)
	return g
}

func (g *Grid) Lattice() *lattice.Lattice { return g.lat }
func (g *Grid) Heart() *Heart             { return g.heart }

// SetMask attaches a shape mask (1 = unconstrained, 0 = excluded). Pass nil
// to detach. The grid only ever reads it.
func (g *Grid) SetMask(m []float64) {
	if m == nil {
		g.mask = nil
		return
	}
	g.mask = lattice.Channel(m)
}

// Step advances the fields by dt using velocity-Verlet: accelerations at the
// current state move the amplitudes, accelerations at the moved state close
// the trapezoidal velocity update. The two-evaluation ordering is what keeps
// the scheme symplectic; collapsing it to a single Euler pass destabilizes
// the energy behavior.
func (g *Grid) Step(dt float64, cfg Config) {
	dt *= cfg.SpeedMultiplier
	if dt <= 0 {
		return
	}
	half := 0.5 * dt * dt

	g.accelerations(g.Higgs, g.Electron, g.Photon, g.accH, g.accE, g.accP, cfg)

	for i := range g.newH {
		g.newH[i] = g.Higgs[i] + g.VHiggs[i]*dt + g.accH[i]*half
		g.newE[i] = g.Electron[i] + g.VElectron[i]*dt + g.accE[i]*half
		g.newP[i] = g.Photon[i] + g.VPhoton[i]*dt + g.accP[i]*half
	}

	g.accelerations(g.newH, g.newE, g.newP, g.acc2H, g.acc2E, g.acc2P, cfg)

	halfDt := 0.5 * dt
	for i := range g.Higgs {
		g.VHiggs[i] += (g.accH[i] + g.acc2H[i]) * halfDt
		g.VElectron[i] += (g.accE[i] + g.acc2E[i]) * halfDt
		g.VPhoton[i] += (g.accP[i] + g.acc2P[i]) * halfDt
		g.Higgs[i] = g.newH[i]
		g.Electron[i] = g.newE[i]
		g.Photon[i] = g.newP[i]
	}

	if cfg.HeartStrength > 0 {
		g.heart.apply(g, cfg.HeartStrength)
	}

	if cfg.ShapeEnabled && g.mask != nil && cfg.MaskDamping > 0 {
		g.applyMask(cfg.MaskDamping)
	}

	g.Higgs.Clamp(AmpMin, AmpMax)
	g.Electron.Clamp(AmpMin, AmpMax)
	g.Photon.Clamp(AmpMin, AmpMax)
}

// accelerations evaluates the three coupling laws at the given amplitudes.
// The photon law reads the *current* velocity channels in both evaluations;
// the drive term is a time-derivative coupling, not a positional one.
func (g *Grid) accelerations(h, e, p, outH, outE, outP lattice.Channel, cfg Config) {
	var nb [6]int
	vev := cfg.VEV
	for i := range h {
		g.lat.Neighbors(i, &nb)

		lapH := h[nb[0]] + h[nb[1]] + h[nb[2]] + h[nb[3]] + h[nb[4]] + h[nb[5]] - 6*h[i]
		lapE := e[nb[0]] + e[nb[1]] + e[nb[2]] + e[nb[3]] + e[nb[4]] + e[nb[5]] - 6*e[i]
		lapP := p[nb[0]] + p[nb[1]] + p[nb[2]] + p[nb[3]] + p[nb[4]] + p[nb[5]] - 6*p[i]

		// double-well restoring force about the vacuum value, plus
		// back-reaction from local electron density
		outH[i] = cfg.HiggsDiffusion*lapH -
			(h[i]-vev)*(h[i]*h[i]-vev*vev)*cfg.HiggsRestore -
			cfg.HiggsBackReaction*e[i]*e[i]

		// Yukawa coupling: mass term scaled by the instantaneous higgs
		outE[i] = cfg.ElectronDiffusion*lapE -
			cfg.ElectronMass*e[i] -
			cfg.YukawaCoupling*h[i]*e[i]

		// massless wave driven by the electron's time derivative
		outP[i] = cfg.PhotonDiffusion*lapP -
			cfg.PhotonDamping*g.VPhoton[i] +
			cfg.PhotonDrive*g.VElectron[i]
	}
}

// applyMask damps the velocity channels where the shape mask excludes the
// cell, so the fields relax outside the shape instead of snapping to zero.
func (g *Grid) applyMask(damping float64) {
	for i, m := range g.mask {
		f := 1.0 - damping*(1.0-m)
		g.VHiggs[i] *= f
		g.VElectron[i] *= f
		g.VPhoton[i] *= f
	}
}

// BoostCoherence is the one sanctioned cross-write into the analysis
// channels: the particle pool adds a bounded amount on annihilation.
func (g *Grid) BoostCoherence(cell int, amount float64) {
	if cell < 0 || cell >= len(g.Coherence) {
		return
	}
	c := g.Coherence[cell] + amount
	if c > 1 {
		c = 1
	}
	g.Coherence[cell] = c
}

// EnergyAt is the local amplitude energy used for hotspot sampling.
func (g *Grid) EnergyAt(i int) float64 {
	return g.Higgs[i]*g.Higgs[i] + g.Electron[i]*g.Electron[i] + g.Photon[i]*g.Photon[i]
}

// MeanKineticEnergy averages the squared velocities of all three channels.
func (g *Grid) MeanKineticEnergy() float64 {
	return g.VHiggs.MeanSquare() + g.VElectron.MeanSquare() + g.VPhoton.MeanSquare()
}

// Quiescent reports whether the fields have settled, used by the driver to
// detect a finished one-shot preset.
func (g *Grid) Quiescent() bool {
	return g.MeanKineticEnergy() < quiescenceEps
}
