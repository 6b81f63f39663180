package sim

import (
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/particles"
)

// Metric samples simulation state each tick and reduces it to one number,
// following the Name/Observe/Value/Reset contract.
type Metric interface {
	Name() string
	Observe(g *field.Grid, pool *particles.Pool, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed tick.
type Observer interface {
	OnTick(g *field.Grid, pool *particles.Pool, tick int, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(g *field.Grid, pool *particles.Pool, tick int, t float64)

func (f ObserverFunc) OnTick(g *field.Grid, pool *particles.Pool, tick int, t float64) {
	f(g, pool, tick, t)
}
