package lattice

// Lattice describes a periodic 3D grid of cells with a fixed edge length.
// Cells are addressed by a flat index i = x + y*N + z*N*N; every coordinate
// wraps modulo N, so no cell ever has an undefined neighbor.
type Lattice struct {
	N        int
	CellSize float64
}

func New(n int, cellSize float64) *Lattice {
	if n < 2 {
		n = 2
	}
	if cellSize <= 0 {
		cellSize = 1.0
	}
	return &Lattice{N: n, CellSize: cellSize}
}

// Cells returns the total number of lattice cells.
func (l *Lattice) Cells() int { return l.N * l.N * l.N }

// Wrap maps any integer coordinate onto [0, N).
func (l *Lattice) Wrap(c int) int {
	c %= l.N
	if c < 0 {
		c += l.N
	}
	return c
}

// Index returns the flat index for (x, y, z), wrapping each coordinate.
func (l *Lattice) Index(x, y, z int) int {
	x, y, z = l.Wrap(x), l.Wrap(y), l.Wrap(z)
	return x + y*l.N + z*l.N*l.N
}

// Coords inverts Index.
func (l *Lattice) Coords(i int) (x, y, z int) {
	x = i % l.N
	y = (i / l.N) % l.N
	z = i / (l.N * l.N)
	return
}

// Neighbors fills out with the flat indices of the six axis neighbors of i,
// in the order +x, -x, +y, -y, +z, -z.
func (l *Lattice) Neighbors(i int, out *[6]int) {
	x, y, z := l.Coords(i)
	out[0] = l.Index(x+1, y, z)
	out[1] = l.Index(x-1, y, z)
	out[2] = l.Index(x, y+1, z)
	out[3] = l.Index(x, y-1, z)
	out[4] = l.Index(x, y, z+1)
	out[5] = l.Index(x, y, z-1)
}

// WorldSize is the extent of the periodic volume along one axis.
func (l *Lattice) WorldSize() float64 { return float64(l.N) * l.CellSize }

// WorldDiameter is the edge length of the full world cube, used by the
// voxelizer when fitting meshes.
func (l *Lattice) WorldDiameter() float64 { return l.WorldSize() }

// CellCenter returns the world-space center of cell (x, y, z).
func (l *Lattice) CellCenter(x, y, z int) (wx, wy, wz float64) {
	wx = (float64(l.Wrap(x)) + 0.5) * l.CellSize
	wy = (float64(l.Wrap(y)) + 0.5) * l.CellSize
	wz = (float64(l.Wrap(z)) + 0.5) * l.CellSize
	return
}

// WrapWorld maps a world coordinate onto [0, WorldSize).
func (l *Lattice) WrapWorld(w float64) float64 {
	size := l.WorldSize()
	for w < 0 {
		w += size
	}
	for w >= size {
		w -= size
	}
	return w
}

// NearestCell returns the flat index of the cell containing the world point.
func (l *Lattice) NearestCell(wx, wy, wz float64) int {
	x := int(l.WrapWorld(wx) / l.CellSize)
	y := int(l.WrapWorld(wy) / l.CellSize)
	z := int(l.WrapWorld(wz) / l.CellSize)
	return l.Index(x, y, z)
}
