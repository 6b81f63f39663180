package particles

import (
	"math"
	"math/rand"

	"github.com/san-kum/fieldlab/internal/field"
)

const hotspotCandidates = 8

type Config struct {
	GradientPull       float64
	Drag               float64 // multiplicative, per tick
	AnnihilationRadius float64 // world units
	CoherenceBoost     float64
	FadeTime           float64 // seconds of lifetime over which alpha fades
	SpawnJitter        float64
	MinSpeed, MaxSpeed float64
	MinLife, MaxLife   float64
	DecaySpeed         float64
}

func DefaultConfig() Config {
	return Config{
		GradientPull:       0.8,
		Drag:               0.99,
		AnnihilationRadius: 1.5,
		CoherenceBoost:     0.4,
		FadeTime:           0.5,
		SpawnJitter:        0.3,
		MinSpeed:           0.5,
		MaxSpeed:           2.0,
		MinLife:            4.0,
		MaxLife:            10.0,
		DecaySpeed:         3.0,
	}
}

type Pool struct {
	slots   []Particle
	free    []int // stack of available slot indices
	active  []int // compact list of live slot indices
	slotPos []int // position of each slot in active, -1 when free

	rng    *rand.Rand
	events *EventRing

	// scratch reused every Update
	dead  []int
	annih [][2]int
}

func NewPool(capacity, eventCapacity int, rng *rand.Rand) *Pool {
	if capacity < 2 {
		capacity = 2
	}
	p := &Pool{
		slots:   make([]Particle, capacity),
		free:    make([]int, 0, capacity),
		active:  make([]int, 0, capacity),
		slotPos: make([]int, capacity),
		rng:     rng,
		events:  NewEventRing(eventCapacity),
	}
	p.Reset()
	return p
}

func (p *Pool) Capacity() int      { return len(p.slots) }
func (p *Pool) ActiveCount() int   { return len(p.active) }
func (p *Pool) Active() []int      { return p.active }
func (p *Pool) AllDead() bool      { return len(p.active) == 0 }
func (p *Pool) Events() *EventRing { return p.events }

// Slot returns the backing slot; valid for any index in Active.
func (p *Pool) Slot(i int) *Particle { return &p.slots[i] }

// Reset frees every slot and clears the event ring.
func (p *Pool) Reset() {
	p.free = p.free[:0]
	p.active = p.active[:0]
	// push in reverse so slot 0 is allocated first
	for i := len(p.slots) - 1; i >= 0; i-- {
		p.free = append(p.free, i)
		p.slotPos[i] = None
		p.slots[i] = Particle{PairedWith: None, LinkedWith: None}
	}
	p.events.Reset()
}

// alloc pops a slot off the free list, or returns None when exhausted.
// Callers treat None as a silently skipped spawn, not an error.
func (p *Pool) alloc() int {
	if len(p.free) == 0 {
		return None
	}
	i := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slotPos[i] = len(p.active)
	p.active = append(p.active, i)
	return i
}

// release returns a slot to the free list, severing the pair relation from
// both sides so the symmetry invariant holds for whichever partner survives.
func (p *Pool) release(i int) {
	if p.slotPos[i] == None {
		return
	}
	if pw := p.slots[i].PairedWith; pw != None && p.slotPos[pw] != None {
		p.slots[pw].PairedWith = None
		p.slots[pw].LinkedWith = None
	}
	p.slots[i] = Particle{PairedWith: None, LinkedWith: None}

	pos := p.slotPos[i]
	last := p.active[len(p.active)-1]
	p.active[pos] = last
	p.slotPos[last] = pos
	p.active = p.active[:len(p.active)-1]
	p.slotPos[i] = None
	p.free = append(p.free, i)
}

// Hotspot samples a handful of random cells and returns the world center of
// the most energetic one.
func (p *Pool) Hotspot(g *field.Grid) [3]float64 {
	lat := g.Lattice()
	best := p.rng.Intn(lat.Cells())
	bestE := g.EnergyAt(best)
	for k := 1; k < hotspotCandidates; k++ {
		i := p.rng.Intn(lat.Cells())
		if e := g.EnergyAt(i); e > bestE {
			best, bestE = i, e
		}
	}
	x, y, z := lat.Coords(best)
	wx, wy, wz := lat.CellCenter(x, y, z)
	return [3]float64{wx, wy, wz}
}

// SpawnPair allocates two slots at the given position with opposite-sign
// velocities along one shared random direction. Returns (None, None) without
// side effects when fewer than two slots are free.
func (p *Pool) SpawnPair(a, b Kind, at [3]float64, cfg Config) (int, int) {
	if len(p.free) < 2 {
		return None, None
	}
	ia := p.alloc()
	ib := p.alloc()

	dir := p.randomDirection()
	speed := cfg.MinSpeed + p.rng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed)
	life := cfg.MinLife + p.rng.Float64()*(cfg.MaxLife-cfg.MinLife)

	p.initSlot(ia, a, at, dir, speed, life, cfg)
	p.initSlot(ib, b, at, dir, -speed, life, cfg)

	p.slots[ia].PairedWith, p.slots[ia].LinkedWith = ib, ib
	p.slots[ib].PairedWith, p.slots[ib].LinkedWith = ia, ia
	return ia, ib
}

func (p *Pool) initSlot(i int, kind Kind, at, dir [3]float64, speed, life float64, cfg Config) {
	s := &p.slots[i]
	*s = Particle{
		Kind:       kind,
		Color:      colorFor(kind),
		Size:       0.12,
		Alpha:      1,
		Lifetime:   life,
		PairedWith: None,
		LinkedWith: None,
	}
	for k := 0; k < 3; k++ {
		s.Pos[k] = at[k] + (p.rng.Float64()*2-1)*cfg.SpawnJitter
		s.Vel[k] = dir[k] * speed
	}
}

// spawnDecay emits unpaired decay products radiating from a point.
func (p *Pool) spawnDecay(at [3]float64, n int, cfg Config) {
	for k := 0; k < n; k++ {
		i := p.alloc()
		if i == None {
			return
		}
		dir := p.randomDirection()
		speed := cfg.DecaySpeed * (0.5 + p.rng.Float64())
		life := 0.5 + p.rng.Float64()*1.0
		p.initSlot(i, Photon, at, dir, speed, life, cfg)
	}
}

func (p *Pool) randomDirection() [3]float64 {
	for {
		x := p.rng.Float64()*2 - 1
		y := p.rng.Float64()*2 - 1
		z := p.rng.Float64()*2 - 1
		m := math.Sqrt(x*x + y*y + z*z)
		if m > 1e-6 && m <= 1 {
			return [3]float64{x / m, y / m, z / m}
		}
	}
}

// Update integrates every active slot, then resolves forced annihilations,
// then natural deaths. Natural deaths have no side effects; annihilation
// spawns decay products, records an event, and boosts coherence at the
// nearest cell to the midpoint.
func (p *Pool) Update(dt float64, g *field.Grid, cfg Config) {
	lat := g.Lattice()
	p.dead = p.dead[:0]

	for _, i := range p.active {
		s := &p.slots[i]
		s.Age += dt
		if s.Age >= s.Lifetime {
			p.dead = append(p.dead, i)
		}
		if s.Kind == Inert {
			continue
		}

		// centered-difference higgs gradient at the nearest cell, pulling
		// toward lower energy
		cx, cy, cz := lat.Coords(lat.NearestCell(s.Pos[0], s.Pos[1], s.Pos[2]))
		gx := (g.Higgs[lat.Index(cx+1, cy, cz)] - g.Higgs[lat.Index(cx-1, cy, cz)]) * 0.5
		gy := (g.Higgs[lat.Index(cx, cy+1, cz)] - g.Higgs[lat.Index(cx, cy-1, cz)]) * 0.5
		gz := (g.Higgs[lat.Index(cx, cy, cz+1)] - g.Higgs[lat.Index(cx, cy, cz-1)]) * 0.5

		s.Vel[0] -= cfg.GradientPull * gx * dt
		s.Vel[1] -= cfg.GradientPull * gy * dt
		s.Vel[2] -= cfg.GradientPull * gz * dt

		for k := 0; k < 3; k++ {
			s.Vel[k] *= cfg.Drag
			s.Pos[k] = lat.WrapWorld(s.Pos[k] + s.Vel[k]*dt)
		}

		if remain := s.Lifetime - s.Age; remain < cfg.FadeTime {
			if remain < 0 {
				remain = 0
			}
			s.Alpha = remain / cfg.FadeTime
		}
	}

	p.resolveAnnihilations(g, cfg)

	// annihilation may have released and recycled a queued slot for a decay
	// product, so re-check that it still holds the aged-out particle
	for _, i := range p.dead {
		if p.slotPos[i] != None && p.slots[i].Age >= p.slots[i].Lifetime {
			p.release(i)
		}
	}

	p.events.Advance(dt)
}

// resolveAnnihilations checks each live pair once, from the lower-indexed
// side, comparing squared distances.
func (p *Pool) resolveAnnihilations(g *field.Grid, cfg Config) {
	r2 := cfg.AnnihilationRadius * cfg.AnnihilationRadius
	if r2 <= 0 {
		return
	}
	p.annih = p.annih[:0]
	for _, i := range p.active {
		j := p.slots[i].PairedWith
		if j == None || i >= j {
			continue
		}
		a, b := &p.slots[i], &p.slots[j]
		dx := a.Pos[0] - b.Pos[0]
		dy := a.Pos[1] - b.Pos[1]
		dz := a.Pos[2] - b.Pos[2]
		if dx*dx+dy*dy+dz*dz < r2 {
			p.annih = append(p.annih, [2]int{i, j})
		}
	}

	for _, pair := range p.annih {
		i, j := pair[0], pair[1]
		if p.slotPos[i] == None || p.slotPos[j] == None {
			continue
		}
		a, b := &p.slots[i], &p.slots[j]
		mid := [3]float64{
			(a.Pos[0] + b.Pos[0]) * 0.5,
			(a.Pos[1] + b.Pos[1]) * 0.5,
			(a.Pos[2] + b.Pos[2]) * 0.5,
		}
		p.release(i)
		p.release(j)

		p.spawnDecay(mid, 3, cfg)
		p.events.Add(mid, 1.0)
		g.BoostCoherence(g.Lattice().NearestCell(mid[0], mid[1], mid[2]), cfg.CoherenceBoost)
	}
}
