// Package voxel converts triangle meshes into a soft inside/outside mask
// over the simulation lattice.
package voxel

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ParseError reports malformed or truncated mesh input. Parsing never
// mutates the voxelizer's mask; the previous mask stays in effect.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("voxel: parse %s mesh: %s", e.Format, e.Reason)
}

type Triangle struct {
	// V holds the three vertices; the file's per-triangle normal is ignored.
	V [3][3]float64
}

const (
	binaryHeaderLen    = 80
	binaryTriangleLen  = 50 // 12B normal + 3*12B vertices + 2B attribute
	binaryCountLen     = 4
	binaryMinRecordLen = binaryHeaderLen + binaryCountLen
)

var vertexPattern = regexp.MustCompile(
	`(?i)vertex\s+([-+0-9.eE]+)\s+([-+0-9.eE]+)\s+([-+0-9.eE]+)`)

// ParseMesh accepts either the binary or ASCII triangle-mesh encoding.
// The format is decided by whether the binary triangle count exactly
// accounts for the remaining byte length; exporters are inconsistent about
// text markers, so no header string is consulted.
func ParseMesh(data []byte) ([]Triangle, error) {
	if len(data) >= binaryMinRecordLen {
		count := int(binary.LittleEndian.Uint32(data[binaryHeaderLen : binaryHeaderLen+binaryCountLen]))
		if count >= 0 && binaryMinRecordLen+count*binaryTriangleLen == len(data) {
			return parseBinary(data, count)
		}
	}
	return parseASCII(data)
}

func parseBinary(data []byte, count int) ([]Triangle, error) {
	if count == 0 {
		return nil, &ParseError{Format: "binary", Reason: "zero triangles"}
	}
	tris := make([]Triangle, count)
	off := binaryMinRecordLen
	for t := 0; t < count; t++ {
		off += 12 // skip normal
		for v := 0; v < 3; v++ {
			for k := 0; k < 3; k++ {
				bits := binary.LittleEndian.Uint32(data[off : off+4])
				f := float64(math.Float32frombits(bits))
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return nil, &ParseError{Format: "binary", Reason: "non-finite vertex coordinate"}
				}
				tris[t].V[v][k] = f
				off += 4
			}
		}
		off += 2 // skip attribute
	}
	return tris, nil
}

func parseASCII(data []byte) ([]Triangle, error) {
	matches := vertexPattern.FindAllStringSubmatch(string(data), -1)
	if len(matches) < 3 {
		return nil, &ParseError{Format: "ascii", Reason: "no vertex records"}
	}

	verts := make([][3]float64, 0, len(matches))
	for _, m := range matches {
		var v [3]float64
		for k := 0; k < 3; k++ {
			f, err := strconv.ParseFloat(m[k+1], 64)
			if err != nil {
				return nil, &ParseError{Format: "ascii", Reason: "unparseable vertex coordinate " + m[k+1]}
			}
			v[k] = f
		}
		verts = append(verts, v)
	}

	// group in threes; a trailing partial triangle is dropped
	n := len(verts) / 3
	tris := make([]Triangle, n)
	for t := 0; t < n; t++ {
		tris[t].V[0] = verts[t*3]
		tris[t].V[1] = verts[t*3+1]
		tris[t].V[2] = verts[t*3+2]
	}
	return tris, nil
}
