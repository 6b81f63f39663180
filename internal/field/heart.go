package field

import (
	"math"

	"github.com/san-kum/fieldlab/internal/lattice"
)

// surface cells are where the implicit-surface proximity passes this value
const heartSurfaceCut = 0.25

// Heart precomputes per-cell proximity to a fixed implicit heart surface.
// Surface is near 0 away from the curve and approaches 1 on it; Interior
// flags cells enclosed by the surface. Both tables are fixed for the life of
// the grid; only the per-step stochastic kicks depend on runtime state.
type Heart struct {
	Surface  lattice.Channel
	Interior []bool

	surfaceCells  []int
	interiorCells []int
}

func newHeart(lat *lattice.Lattice) *Heart {
	h := &Heart{
		Surface:  lattice.NewChannel(lat),
		Interior: make([]bool, lat.Cells()),
	}
	n := float64(lat.N)
	for i := range h.Surface {
		cx, cy, cz := lat.Coords(i)
		// map the cell onto [-1.3, 1.3]^3 with y up
		x := (float64(cx)+0.5)/n*2.6 - 1.3
		y := (float64(cy)+0.5)/n*2.6 - 1.3
		z := (float64(cz)+0.5)/n*2.6 - 1.3

		f := heartImplicit(x, y, z)
		h.Surface[i] = math.Exp(-2.5 * math.Abs(f))
		h.Interior[i] = f < 0

		if h.Surface[i] > heartSurfaceCut {
			h.surfaceCells = append(h.surfaceCells, i)
		} else if h.Interior[i] {
			h.interiorCells = append(h.interiorCells, i)
		}
	}
	return h
}

// heartImplicit is the Taubin heart surface, zero on the surface and
// negative inside.
func heartImplicit(x, y, z float64) float64 {
	a := x*x + 2.25*y*y + z*z - 1
	return a*a*a - x*x*z*z*z - 0.1125*y*y*z*z*z
}

// SurfaceCells returns the precomputed surface cell indices, for the
// published read surface.
func (h *Heart) SurfaceCells() []int { return h.surfaceCells }

// apply nudges electron velocities toward the surface. Each surface cell
// rolls its own uniform sample against strength every step; interior cells
// use a milder bias at a lower probability. This is independent per-cell
// selection, not a batch sample.
func (h *Heart) apply(g *Grid, strength float64) {
	for _, i := range h.surfaceCells {
		if g.rng.Float64() >= strength {
			continue
		}
		s := h.Surface[i]
		g.VElectron[i] += (s*0.7 - g.VElectron[i]) * 0.1
		g.VElectron[i] += (g.rng.Float64()*2 - 1) * s * strength
	}
	interiorP := 0.35 * strength
	for _, i := range h.interiorCells {
		if g.rng.Float64() >= interiorP {
			continue
		}
		g.VElectron[i] += (0.08 - g.VElectron[i]) * 0.05
	}
}
