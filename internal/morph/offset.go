// Package morph implements the 3D (and per-slice 2D) morphology primitives
// the Splitter and Binarizer need: structuring elements, erosion/dilation/
// closing, connected-component labeling, distance transforms and watershed.
// None of the example repos in the retrieval pack ship 3D image morphology,
// so these are written from scratch; the labeled-volume scanning pattern
// (dense flat array, flood fill, compaction to consecutive IDs) is grounded
// on how `other_examples`'s dvid `labels64`/`voxels` packages walk a dense
// label grid.
package morph

import "github.com/grailbio/granulate/internal/grid"

// Offset is a voxel displacement (dz,dy,dx).
type Offset struct{ DZ, DY, DX int }

// Offsets6 are the face-connected neighbor offsets.
func Offsets6() []Offset {
	return []Offset{
		{-1, 0, 0}, {1, 0, 0},
		{0, -1, 0}, {0, 1, 0},
		{0, 0, -1}, {0, 0, 1},
	}
}

// Offsets26 are all 26 neighbors of a voxel (every nonzero vector in
// {-1,0,1}^3).
func Offsets26() []Offset {
	offs := make([]Offset, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz == 0 && dy == 0 && dx == 0 {
					continue
				}
				offs = append(offs, Offset{dz, dy, dx})
			}
		}
	}
	return offs
}

// Connectivity returns the neighbor offsets for connectivity 6 or 26.
func Connectivity(connectivity int) ([]Offset, error) {
	switch connectivity {
	case 6:
		return Offsets6(), nil
	case 26:
		return Offsets26(), nil
	default:
		return nil, ErrUnsupportedConnectivity
	}
}

// ballOffsets discretizes a solid ball of radius r: every voxel offset
// (dz,dy,dx) with dz^2+dy^2+dx^2 <= r^2, matching skimage.morphology.ball's
// discretization (the structuring element the teacher Python's
// `volume/core.py` builds via `ball(radius)`).
func ballOffsets(r int) []Offset {
	if r < 1 {
		return nil
	}
	var offs []Offset
	r2 := r * r
	for dz := -r; dz <= r; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dz*dz+dy*dy+dx*dx <= r2 {
					offs = append(offs, Offset{dz, dy, dx})
				}
			}
		}
	}
	return offs
}

// Ball returns the discretized solid ball structuring element of radius r.
func Ball(r int) []Offset { return ballOffsets(r) }

// shiftInBounds reports whether offset o applied to (z,y,x) stays within s.
func shiftInBounds(s grid.Shape, z, y, x int, o Offset) bool {
	return s.InBounds(z+o.DZ, y+o.DY, x+o.DX)
}
