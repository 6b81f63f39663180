package lattice

import (
	"math"
	"testing"
)

func TestIndexCoordsRoundTrip(t *testing.T) {
	l := New(7, 1.0)
	for i := 0; i < l.Cells(); i++ {
		x, y, z := l.Coords(i)
		if got := l.Index(x, y, z); got != i {
			t.Fatalf("round trip failed at %d: got %d", i, got)
		}
	}
}

func TestIndexWraps(t *testing.T) {
	l := New(5, 1.0)
	tests := []struct {
		x, y, z    int
		wx, wy, wz int
	}{
		{-1, 0, 0, 4, 0, 0},
		{5, 0, 0, 0, 0, 0},
		{0, -2, 0, 0, 3, 0},
		{0, 0, 7, 0, 0, 2},
		{-6, -6, -6, 4, 4, 4},
	}
	for _, tt := range tests {
		if got, want := l.Index(tt.x, tt.y, tt.z), l.Index(tt.wx, tt.wy, tt.wz); got != want {
			t.Errorf("Index(%d,%d,%d) = %d, want %d", tt.x, tt.y, tt.z, got, want)
		}
	}
}

func TestNeighborsPeriodic(t *testing.T) {
	l := New(4, 1.0)
	var nb [6]int
	l.Neighbors(l.Index(0, 0, 0), &nb)
	want := [6]int{
		l.Index(1, 0, 0), l.Index(3, 0, 0),
		l.Index(0, 1, 0), l.Index(0, 3, 0),
		l.Index(0, 0, 1), l.Index(0, 0, 3),
	}
	if nb != want {
		t.Errorf("corner neighbors = %v, want %v", nb, want)
	}
}

func TestWrapWorld(t *testing.T) {
	l := New(8, 1.0)
	tests := []struct{ in, want float64 }{
		{0, 0},
		{8, 0},
		{-0.5, 7.5},
		{8.5, 0.5},
		{16.25, 0.25},
	}
	for _, tt := range tests {
		if got := l.WrapWorld(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapWorld(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNearestCell(t *testing.T) {
	l := New(8, 1.0)
	if got, want := l.NearestCell(3.2, 0.1, 7.9), l.Index(3, 0, 7); got != want {
		t.Errorf("NearestCell = %d, want %d", got, want)
	}
	if got, want := l.NearestCell(-0.5, 0, 0), l.Index(7, 0, 0); got != want {
		t.Errorf("NearestCell wrapped = %d, want %d", got, want)
	}
}

func TestChannelClamp(t *testing.T) {
	c := Channel{-10, -5, 0, 5, 10}
	c.Clamp(-5, 5)
	want := Channel{-5, -5, 0, 5, 5}
	for i := range c {
		if c[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, c[i], want[i])
		}
	}
}

func TestChannelStats(t *testing.T) {
	c := Channel{1, 2, 3}
	if got := c.Mean(); math.Abs(got-2) > 1e-12 {
		t.Errorf("Mean = %v, want 2", got)
	}
	if got := c.MeanSquare(); math.Abs(got-14.0/3.0) > 1e-12 {
		t.Errorf("MeanSquare = %v, want %v", got, 14.0/3.0)
	}
}

func TestChannelIsValid(t *testing.T) {
	if !(Channel{0, 1, -1}).IsValid() {
		t.Error("finite channel reported invalid")
	}
	if (Channel{0, math.NaN()}).IsValid() {
		t.Error("NaN channel reported valid")
	}
	if (Channel{math.Inf(1)}).IsValid() {
		t.Error("Inf channel reported valid")
	}
}
