// Package sim sequences the simulation components under a fixed-timestep
// clock: field step, particle step, and the analysis models on a reduced
// cadence with a compensated timestep.
package sim

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/san-kum/fieldlab/internal/analysis"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/lattice"
	"github.com/san-kum/fieldlab/internal/particles"
	"github.com/san-kum/fieldlab/internal/voxel"
)

// Engine owns the component graph and the parameter surface. Everything runs
// synchronously on the caller's goroutine; parameter setters stage changes
// that take effect at the next tick boundary.
type Engine struct {
	cfg     *config.Config
	pending *config.Config

	lat    *lattice.Lattice
	grid   *field.Grid
	models *analysis.Models
	pool   *particles.Pool
	vox    *voxel.Voxelizer
	clock  *Clock
	rng    *rand.Rand

	tick     int
	now      float64
	spawnAcc float64

	metrics   []Metric
	observers []Observer
	log       io.Writer
}

func NewEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	lat := lattice.New(cfg.Lattice.N, cfg.Lattice.CellSize)
	e := &Engine{
		cfg:    cfg.Clone(),
		lat:    lat,
		grid:   field.New(lat, rng),
		models: analysis.New(lat),
		pool:   particles.NewPool(cfg.Particles.Capacity, cfg.Particles.EventCapacity, rng),
		vox:    voxel.New(lat),
		clock:  NewClock(cfg.Clock.StepSeconds, cfg.Clock.MaxSubSteps),
		rng:    rng,
	}
	e.grid.SetMask(e.vox.Mask())
	e.vox.SetScale(cfg.Shape.Scale)
	e.vox.SetFuzziness(cfg.Shape.Fuzziness)
	if cfg.Preset != "" {
		if err := e.grid.Reset(cfg.Preset, e.cfg.Field.HiggsVEV); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// SetLogWriter directs engine progress output; nil disables it.
func (e *Engine) SetLogWriter(w io.Writer) { e.log = w }

func (e *Engine) logf(format string, args ...interface{}) {
	if e.log != nil {
		fmt.Fprintf(e.log, format+"\n", args...)
	}
}

// Read surface for the renderer collaborator.
func (e *Engine) Grid() *field.Grid           { return e.grid }
func (e *Engine) Pool() *particles.Pool       { return e.pool }
func (e *Engine) Voxelizer() *voxel.Voxelizer { return e.vox }
func (e *Engine) Lattice() *lattice.Lattice   { return e.lat }
func (e *Engine) Mask() []float64             { return e.vox.Mask() }
func (e *Engine) Tick() int                   { return e.tick }
func (e *Engine) Now() float64                { return e.now }
func (e *Engine) Config() config.Config       { return *e.cfg }

// Done reports a settled one-shot preset: no live particles and quiescent
// fields.
func (e *Engine) Done() bool {
	return e.pool.AllDead() && e.grid.Quiescent()
}

// stage copies the applied config on first use and records a mutation that
// becomes visible at the next tick boundary.
func (e *Engine) stage(mutate func(*config.Config)) {
	if e.pending == nil {
		e.pending = e.cfg.Clone()
	}
	mutate(e.pending)
}

func (e *Engine) SetFieldSpeed(v float64)     { e.stage(func(c *config.Config) { c.Field.SpeedMultiplier = v }) }
func (e *Engine) SetInjectionRate(v float64)  { e.stage(func(c *config.Config) { c.Particles.InjectionRate = v }) }
func (e *Engine) SetHiggsVEV(v float64)       { e.stage(func(c *config.Config) { c.Field.HiggsVEV = v }) }
func (e *Engine) SetYukawaCoupling(v float64) { e.stage(func(c *config.Config) { c.Field.YukawaCoupling = v }) }
func (e *Engine) SetPhotonDamping(v float64)  { e.stage(func(c *config.Config) { c.Field.PhotonDamping = v }) }
func (e *Engine) SetAnalysisEnabled(v bool)   { e.stage(func(c *config.Config) { c.Analysis.Enabled = v }) }
func (e *Engine) SetOrchThreshold(v float64)  { e.stage(func(c *config.Config) { c.Analysis.Threshold = clamp01(v) }) }
func (e *Engine) SetOrchGrowthRate(v float64) { e.stage(func(c *config.Config) { c.Analysis.GrowthRate = v }) }
func (e *Engine) SetPhiSmoothing(v float64)   { e.stage(func(c *config.Config) { c.Analysis.PhiSmoothing = clamp01(v) }) }
func (e *Engine) SetHeartStrength(v float64)  { e.stage(func(c *config.Config) { c.Field.HeartStrength = clamp01(v) }) }
func (e *Engine) SetShapeEnabled(v bool)      { e.stage(func(c *config.Config) { c.Shape.Enabled = v }) }

// SetShapeFuzziness stages the config change and re-blurs the cached binary
// mask; no mesh rescan happens.
func (e *Engine) SetShapeFuzziness(v float64) {
	e.stage(func(c *config.Config) { c.Shape.Fuzziness = v })
	e.vox.SetFuzziness(v)
}

// SetShapeScale triggers a full voxelizer rebuild.
func (e *Engine) SetShapeScale(v float64) {
	e.stage(func(c *config.Config) { c.Shape.Scale = v })
	e.vox.SetScale(v)
}

// LoadMesh voxelizes mesh bytes out-of-band. On a parse error the previous
// mask stays in effect and the error is returned to the caller.
func (e *Engine) LoadMesh(data []byte) error {
	if err := e.vox.LoadMesh(data); err != nil {
		return err
	}
	e.grid.SetMask(e.vox.Mask())
	e.logf("mesh loaded: %d triangles", e.vox.Triangles())
	return nil
}

// ApplyPreset resets the field grid and reinitializes the particle pool in
// one synchronous call, so no reader can observe partial state between them.
func (e *Engine) ApplyPreset(name string) error {
	// a staged vacuum value takes effect here too, not just at the tick
	// boundary, so the new initial condition is centered where the next
	// tick will integrate it
	vev := e.cfg.Field.HiggsVEV
	if e.pending != nil {
		vev = e.pending.Field.HiggsVEV
	}
	if err := e.grid.Reset(name, vev); err != nil {
		return err
	}
	e.pool.Reset()
	e.spawnAcc = 0
	e.stage(func(c *config.Config) { c.Preset = name })
	e.logf("preset applied: %s", name)
	return nil
}

// Frame consumes elapsed wall-clock seconds and runs the due fixed steps.
func (e *Engine) Frame(elapsed float64) int {
	steps := e.clock.Advance(elapsed)
	for i := 0; i < steps; i++ {
		e.Step()
	}
	return steps
}

// Step runs exactly one fixed simulation tick.
func (e *Engine) Step() {
	if e.pending != nil {
		e.cfg = e.pending
		e.pending = nil
	}
	dt := e.cfg.Clock.StepSeconds

	e.grid.Step(dt, e.fieldConfig())

	e.inject(dt)
	e.pool.Update(dt, e.grid, e.particlesConfig())

	interval := e.cfg.Clock.AnalysisInterval
	if interval < 1 {
		interval = 1
	}
	if (e.tick+1)%interval == 0 {
		// compensated timestep preserves the integral contribution of the
		// reduced cadence
		e.models.Step(e.grid, dt*float64(interval), e.analysisConfig())
	}

	e.tick++
	e.now += dt

	for _, m := range e.metrics {
		m.Observe(e.grid, e.pool, e.now)
	}
	for _, o := range e.observers {
		o.OnTick(e.grid, e.pool, e.tick, e.now)
	}
}

// inject spawns particle pairs at the configured expected rate regardless of
// tick cadence, using a fractional accumulator. Species weighting: half
// electron/positron,0.3 boson pair, the rest electron/positron again.
func (e *Engine) inject(dt float64) {
	e.spawnAcc += e.cfg.Particles.InjectionRate * dt
	for e.spawnAcc >= 1 {
		e.spawnAcc--
		at := e.pool.Hotspot(e.grid)
		r := e.rng.Float64()
		if r >= 0.5 && r < 0.8 {
			e.pool.SpawnPair(particles.BosonA, particles.BosonB, at, e.particlesConfig())
		} else {
			e.pool.SpawnPair(particles.Electron, particles.Positron, at, e.particlesConfig())
		}
	}
}

func (e *Engine) fieldConfig() field.Config {
	fc := field.DefaultConfig()
	f := e.cfg.Field
	fc.SpeedMultiplier = f.SpeedMultiplier
	fc.VEV = f.HiggsVEV
	fc.HiggsDiffusion = f.HiggsDiffusion
	fc.HiggsRestore = f.HiggsRestore
	fc.HiggsBackReaction = f.HiggsBackReaction
	fc.ElectronDiffusion = f.ElectronDiffusion
	fc.ElectronMass = f.ElectronMass
	fc.YukawaCoupling = f.YukawaCoupling
	fc.PhotonDiffusion = f.PhotonDiffusion
	fc.PhotonDamping = f.PhotonDamping
	fc.PhotonDrive = f.PhotonDrive
	fc.HeartStrength = f.HeartStrength
	fc.ShapeEnabled = e.cfg.Shape.Enabled
	fc.MaskDamping = e.cfg.Shape.MaskDamping
	return fc
}

func (e *Engine) analysisConfig() analysis.Config {
	a := e.cfg.Analysis
	return analysis.Config{
		Enabled:      a.Enabled,
		Threshold:    a.Threshold,
		GrowthRate:   a.GrowthRate,
		PhiSmoothing: a.PhiSmoothing,
		VEV:          e.cfg.Field.HiggsVEV,
	}
}

func (e *Engine) particlesConfig() particles.Config {
	pc := particles.DefaultConfig()
	p := e.cfg.Particles
	pc.GradientPull = p.GradientPull
	pc.Drag = p.Drag
	pc.AnnihilationRadius = p.AnnihilationRadius
	pc.CoherenceBoost = p.CoherenceBoost
	return pc
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
