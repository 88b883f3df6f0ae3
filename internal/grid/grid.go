// Package grid defines the dense row-major (Z,Y,X) indexing shared by every
// volume representation in this module (raw, binary, label, distance,
// seed). Keeping one indexing convention means morph, metrics and contact
// can all operate on plain slices without re-deriving strides.
package grid

import "fmt"

// Shape is a 3D extent in (Z,Y,X) order, matching spec.md's V[Z,Y,X]
// convention (Z = slice index, Y/X = in-slice row/col).
type Shape struct {
	Z, Y, X int
}

// Len returns the total voxel count.
func (s Shape) Len() int { return s.Z * s.Y * s.X }

// Index returns the flat offset of voxel (z,y,x).
func (s Shape) Index(z, y, x int) int {
	return (z*s.Y+y)*s.X + x
}

// Coords returns the (z,y,x) coordinates of flat offset idx.
func (s Shape) Coords(idx int) (z, y, x int) {
	x = idx % s.X
	rem := idx / s.X
	y = rem % s.Y
	z = rem / s.Y
	return
}

// InBounds reports whether (z,y,x) is within the shape.
func (s Shape) InBounds(z, y, x int) bool {
	return z >= 0 && z < s.Z && y >= 0 && y < s.Y && x >= 0 && x < s.X
}

// Equal reports whether two shapes describe the same extent.
func (s Shape) Equal(o Shape) bool { return s == o }

func (s Shape) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.Z, s.Y, s.X)
}
