package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/lattice"
)

func newTestGrid(n int) (*field.Grid, *Models) {
	lat := lattice.New(n, 1.0)
	return field.New(lat, rand.New(rand.NewSource(7))), New(lat)
}

func TestCoherenceStaysInRange(t *testing.T) {
	g, m := newTestGrid(6)
	cfg := DefaultConfig()
	cfg.Threshold = 1.1 // never fires, so clamping is what bounds it
	g.Electron.Fill(3)
	g.VElectron.Fill(3)

	for i := 0; i < 100; i++ {
		m.Step(g, 0.016, cfg)
		for c, v := range g.Coherence {
			if v < 0 || v > 1 {
				t.Fatalf("iteration %d cell %d: coherence %v out of [0,1]", i, c, v)
			}
		}
	}
}

func TestCoherenceNeverNegative(t *testing.T) {
	g, m := newTestGrid(4)
	cfg := DefaultConfig()
	// no activity and higgs far from the vacuum: growth term is negative
	g.Higgs.Fill(3)

	m.Step(g, 0.016, cfg)
	for i, v := range g.Coherence {
		if v != 0 {
			t.Fatalf("cell %d: coherence %v, want 0", i, v)
		}
	}
}

func TestFlashFiresOnlyInCrossingTick(t *testing.T) {
	g, m := newTestGrid(4)
	cfg := DefaultConfig()
	cfg.GrowthRate = 1
	cfg.Threshold = 0.8
	g.Electron.Fill(2) // activity 0.6*4 = 2.4 per unit time

	if g.Flash.Mean() != 0 {
		t.Fatal("flash nonzero before any step")
	}

	// one large-dt step accumulates past the threshold
	m.Step(g, 1.0, cfg)
	for i := range g.Flash {
		if g.Flash[i] != 1 {
			t.Fatalf("cell %d: flash %v, want 1 in crossing tick", i, g.Flash[i])
		}
		if g.Coherence[i] != 0 {
			t.Fatalf("cell %d: coherence %v, want reset to 0", i, g.Coherence[i])
		}
	}

	// with activity removed the next call must clear every flash
	g.Electron.Zero()
	m.Step(g, 1.0, cfg)
	for i := range g.Flash {
		if g.Flash[i] != 0 {
			t.Fatalf("cell %d: flash %v persisted past its tick", i, g.Flash[i])
		}
	}
}

// Identical state vectors give similarity 1 against every neighbor, so the
// raw integration measure is (6-1)/6.
func TestPhiUniformField(t *testing.T) {
	g, m := newTestGrid(6)
	cfg := DefaultConfig()
	cfg.PhiSmoothing = 1 // no smoothing: phi equals the raw value
	cfg.Threshold = 1.1
	g.Higgs.Fill(0.8)
	g.Electron.Fill(0.4)
	g.Photon.Fill(0.2)

	m.Step(g, 0.016, cfg)

	want := 5.0 / 6.0
	for i, v := range g.Phi {
		if math.Abs(v-want) > 1e-3 {
			t.Fatalf("cell %d: phi %v, want ~%v", i, v, want)
		}
	}
}

func TestPhiSmoothing(t *testing.T) {
	g, m := newTestGrid(4)
	cfg := DefaultConfig()
	cfg.PhiSmoothing = 0.5
	cfg.Threshold = 1.1
	g.Higgs.Fill(1)

	m.Step(g, 0.016, cfg)
	first := g.Phi[0]
	m.Step(g, 0.016, cfg)
	second := g.Phi[0]

	if !(second > first) {
		t.Errorf("phi did not converge upward: %v then %v", first, second)
	}
	if second >= 5.0/6.0 {
		t.Errorf("phi %v overshot the raw value with smoothing 0.5", second)
	}
}

func TestDisabledModelsAreNoOps(t *testing.T) {
	g, m := newTestGrid(4)
	cfg := DefaultConfig()
	cfg.Enabled = false
	g.Electron.Fill(3)

	m.Step(g, 1.0, cfg)
	if g.Coherence.Mean() != 0 || g.Phi.Mean() != 0 || g.Flash.Mean() != 0 {
		t.Error("disabled models mutated analysis channels")
	}
}
