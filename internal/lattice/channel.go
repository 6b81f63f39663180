package lattice

import "math"

// Channel is one scalar value per lattice cell, stored flat.
type Channel []float64

func NewChannel(l *Lattice) Channel {
	return make(Channel, l.Cells())
}

func (c Channel) Clone() Channel {
	out := make(Channel, len(c))
	copy(out, c)
	return out
}

func (c Channel) Fill(v float64) {
	for i := range c {
		c[i] = v
	}
}

func (c Channel) Zero() { c.Fill(0) }

// Clamp bounds every cell to [lo, hi] in place.
func (c Channel) Clamp(lo, hi float64) {
	for i, v := range c {
		if v < lo {
			c[i] = lo
		} else if v > hi {
			c[i] = hi
		}
	}
}

func (c Channel) Mean() float64 {
	if len(c) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range c {
		sum += v
	}
	return sum / float64(len(c))
}

func (c Channel) MeanSquare() float64 {
	if len(c) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range c {
		sum += v * v
	}
	return sum / float64(len(c))
}

func (c Channel) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
