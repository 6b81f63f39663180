package voxel

import (
	"math"
	"sort"

	"github.com/san-kum/fieldlab/internal/lattice"
)

// fitFraction is how much of the lattice world diameter the mesh's longest
// axis spans after auto-fit, before the user scale multiplies in.
const fitFraction = 0.7

// crossings closer than this are treated as the same surface hit (a ray
// grazing the shared edge of two coplanar triangles reports it twice)
const crossingEps = 1e-9

// Voxelizer holds the loaded mesh and the two mask stages: the binary
// inside/outside classification (rebuilt on mesh load or rescale) and the
// blurred mask published to the field (cheaply recomputed from the cached
// binary stage when only the fuzziness changes).
type Voxelizer struct {
	lat *lattice.Lattice

	tris      []Triangle
	hasMesh   bool
	scale     float64
	fuzziness float64 // physical blur half-width, world units

	binary lattice.Channel
	mask   lattice.Channel
}

func New(lat *lattice.Lattice) *Voxelizer {
	v := &Voxelizer{
		lat:    lat,
		scale:  1.0,
		binary: lattice.NewChannel(lat),
		mask:   lattice.NewChannel(lat),
	}
	// default all-pass mask until a mesh is loaded
	v.mask.Fill(1)
	return v
}

// Mask returns the published mask slice; 1 = unconstrained, 0 = excluded.
func (v *Voxelizer) Mask() []float64 { return v.mask }

func (v *Voxelizer) HasMesh() bool      { return v.hasMesh }
func (v *Voxelizer) Triangles() int     { return len(v.tris) }
func (v *Voxelizer) Scale() float64     { return v.scale }
func (v *Voxelizer) Fuzziness() float64 { return v.fuzziness }

// LoadMesh parses and voxelizes mesh bytes. On a parse error the previous
// mask is left untouched.
func (v *Voxelizer) LoadMesh(data []byte) error {
	tris, err := ParseMesh(data)
	if err != nil {
		return err
	}
	v.tris = tris
	v.hasMesh = true
	v.rebuild()
	return nil
}

// SetScale changes the user scale multiplier; requires a full rebuild.
func (v *Voxelizer) SetScale(s float64) {
	if s <= 0 || s == v.scale {
		return
	}
	v.scale = s
	if v.hasMesh {
		v.rebuild()
	}
}

// SetFuzziness changes only the blur width; the cached binary mask is
// re-blurred without rescanning the mesh.
func (v *Voxelizer) SetFuzziness(f float64) {
	if f < 0 {
		f = 0
	}
	v.fuzziness = f
	if v.hasMesh {
		v.reblur()
	}
}

// Clear drops the mesh and restores the all-pass mask.
func (v *Voxelizer) Clear() {
	v.tris = nil
	v.hasMesh = false
	v.binary.Zero()
	v.mask.Fill(1)
}

func (v *Voxelizer) rebuild() {
	fitted := v.fit()
	v.scan(fitted)
	v.reblur()
}

// fit translates the mesh to the world center and uniformly scales it so
// the longest bounding-box axis spans fitFraction of the world diameter,
// multiplied by the user scale.
func (v *Voxelizer) fit() []Triangle {
	min := [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	max := [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for _, t := range v.tris {
		for _, p := range t.V {
			for k := 0; k < 3; k++ {
				if p[k] < min[k] {
					min[k] = p[k]
				}
				if p[k] > max[k] {
					max[k] = p[k]
				}
			}
		}
	}

	longest := 0.0
	var center [3]float64
	for k := 0; k < 3; k++ {
		if ext := max[k] - min[k]; ext > longest {
			longest = ext
		}
		center[k] = (min[k] + max[k]) * 0.5
	}
	if longest <= 0 {
		longest = 1
	}

	s := fitFraction * v.lat.WorldDiameter() / longest * v.scale
	wc := v.lat.WorldSize() * 0.5

	fitted := make([]Triangle, len(v.tris))
	for i, t := range v.tris {
		for vi, p := range t.V {
			for k := 0; k < 3; k++ {
				fitted[i].V[vi][k] = (p[k]-center[k])*s + wc
			}
		}
	}
	return fitted
}

// scan rebuilds the binary mask with one vertical ray per lattice column
// along Z, filling cells between ordered crossing pairs (even-odd parity).
// Candidate triangles per column come from precomputed XY bounding boxes so
// each triangle is only tested against the columns it can cover.
func (v *Voxelizer) scan(tris []Triangle) {
	v.binary.Zero()
	n := v.lat.N
	cell := v.lat.CellSize

	candidates := make([][]int, n*n)
	for ti, t := range tris {
		minX, maxX := t.V[0][0], t.V[0][0]
		minY, maxY := t.V[0][1], t.V[0][1]
		for _, p := range t.V[1:] {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
		x0 := clampCell(int(math.Floor(minX/cell-0.5)), n)
		x1 := clampCell(int(math.Ceil(maxX/cell-0.5)), n)
		y0 := clampCell(int(math.Floor(minY/cell-0.5)), n)
		y1 := clampCell(int(math.Ceil(maxY/cell-0.5)), n)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				candidates[x+y*n] = append(candidates[x+y*n], ti)
			}
		}
	}

	var crossings []float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			cand := candidates[x+y*n]
			if len(cand) == 0 {
				continue
			}
			px := (float64(x) + 0.5) * cell
			py := (float64(y) + 0.5) * cell

			crossings = crossings[:0]
			for _, ti := range cand {
				if z, ok := columnHit(&tris[ti], px, py); ok {
					crossings = append(crossings, z)
				}
			}
			if len(crossings) < 2 {
				continue
			}
			sort.Float64s(crossings)
			crossings = dedupe(crossings)

			for k := 0; k+1 < len(crossings); k += 2 {
				z0, z1 := crossings[k], crossings[k+1]
				c0 := int(math.Ceil(z0/cell - 0.5))
				c1 := int(math.Floor(z1/cell - 0.5))
				for cz := c0; cz <= c1; cz++ {
					if cz >= 0 && cz < n {
						v.binary[v.lat.Index(x, y, cz)] = 1
					}
				}
			}
		}
	}
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:1]
	for _, z := range sorted[1:] {
		if z-out[len(out)-1] > crossingEps {
			out = append(out, z)
		}
	}
	return out
}

// columnHit intersects a vertical ray at (px, py) with a triangle using
// barycentric coordinates projected onto the XY plane. Triangles edge-on to
// the ray (degenerate projection) never produce a crossing.
func columnHit(t *Triangle, px, py float64) (float64, bool) {
	x1, y1, z1 := t.V[0][0], t.V[0][1], t.V[0][2]
	x2, y2, z2 := t.V[1][0], t.V[1][1], t.V[1][2]
	x3, y3, z3 := t.V[2][0], t.V[2][1], t.V[2][2]

	den := (y2-y3)*(x1-x3) + (x3-x2)*(y1-y3)
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	l1 := ((y2-y3)*(px-x3) + (x3-x2)*(py-y3)) / den
	l2 := ((y3-y1)*(px-x3) + (x1-x3)*(py-y3)) / den
	l3 := 1 - l1 - l2

	const tol = -1e-9
	if l1 < tol || l2 < tol || l3 < tol {
		return 0, false
	}
	return l1*z1 + l2*z2 + l3*z3, true
}

// reblur recomputes the published mask from the cached binary mask: a
// separable radius-1 box blur, one sweep per axis per round, clamp-to-edge
// so the soft boundary never wraps around the lattice. Starting from the
// binary stage every time keeps repeated fuzziness changes idempotent. The
// result is copied into the published buffer so readers holding the Mask
// slice always see the current mask.
func (v *Voxelizer) reblur() {
	rounds := int(math.Round(v.fuzziness / v.lat.CellSize))
	if rounds <= 0 {
		copy(v.mask, v.binary)
		return
	}
	work := v.binary.Clone()
	tmp := lattice.NewChannel(v.lat)
	for r := 0; r < rounds; r++ {
		for axis := 0; axis < 3; axis++ {
			v.blurAxis(work, tmp, axis)
			work, tmp = tmp, work
		}
	}
	copy(v.mask, work)
}

func (v *Voxelizer) blurAxis(src, dst lattice.Channel, axis int) {
	n := v.lat.N
	for i := range src {
		x, y, z := v.lat.Coords(i)
		var c int
		switch axis {
		case 0:
			c = x
		case 1:
			c = y
		default:
			c = z
		}

		sum := src[i]
		count := 1.0
		if c > 0 {
			sum += src[v.shifted(i, axis, -1)]
			count++
		}
		if c < n-1 {
			sum += src[v.shifted(i, axis, 1)]
			count++
		}
		dst[i] = sum / count
	}
}

func (v *Voxelizer) shifted(i, axis, d int) int {
	x, y, z := v.lat.Coords(i)
	switch axis {
	case 0:
		return v.lat.Index(x+d, y, z)
	case 1:
		return v.lat.Index(x, y+d, z)
	default:
		return v.lat.Index(x, y, z+d)
	}
}
