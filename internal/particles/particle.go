// Package particles manages a fixed-capacity slot pool seeded from field
// hotspots. Slots are allocated from an explicit free list and enumerated via
// a compact active index list, so iteration order is deterministic and both
// alloc and free are O(1).
package particles

// Kind tags a pool slot.
type Kind uint8

const (
	Inert Kind = iota
	Electron
	Positron
	Photon
	BosonA
	BosonB
)

func (k Kind) String() string {
	switch k {
	case Inert:
		return "inert"
	case Electron:
		return "electron"
	case Positron:
		return "positron"
	case Photon:
		return "photon"
	case BosonA:
		return "boson-a"
	case BosonB:
		return "boson-b"
	}
	return "unknown"
}

// None marks an empty relation field.
const None = -1

// Particle is one pool slot. PairedWith names the sibling spawned in the
// same creation event; LinkedWith is the cross-pool visual linkage, which in
// this design always equals PairedWith. The pairing relation is kept
// symmetric: a live slot's partner, if any, always points back.
type Particle struct {
	Pos, Vel [3]float64
	Color    [3]float64
	Size     float64
	Alpha    float64
	Kind     Kind
	Age      float64
	Lifetime float64

	PairedWith int
	LinkedWith int
}

func colorFor(k Kind) [3]float64 {
	switch k {
	case Electron:
		return [3]float64{0.3, 0.6, 1.0}
	case Positron:
		return [3]float64{1.0, 0.4, 0.3}
	case Photon:
		return [3]float64{1.0, 0.95, 0.6}
	case BosonA:
		return [3]float64{0.7, 0.3, 1.0}
	case BosonB:
		return [3]float64{0.3, 1.0, 0.7}
	}
	return [3]float64{0.5, 0.5, 0.5}
}
