package morph

import "github.com/grailbio/granulate/internal/grid"

// ErodeBall performs binary erosion of mask by a solid ball of radius r,
// using the identity erode_r(mask)[x] == (distance from x to the nearest
// background voxel) > r. This matches skimage's binary_erosion(mask,
// ball(r)) without needing to walk O(r^3) structuring element offsets per
// voxel (spec.md §4.3 step 2). Voxels outside the volume do not count as
// background, so a mask that fills the whole volume is left unchanged.
// Above VoxelCountGate the distance is taxicab, so the structuring element
// is then an L1 ball rather than a Euclidean one.
func ErodeBall(mask []bool, shape grid.Shape, r int) []bool {
	if r < 1 {
		out := make([]bool, len(mask))
		copy(out, mask)
		return out
	}
	dist, _ := ChooseDistanceTransform(mask, shape)
	out := make([]bool, len(mask))
	rf := float32(r)
	for i, v := range mask {
		out[i] = v && dist[i] > rf
	}
	return out
}

// DilateBall performs binary dilation of mask by a solid ball of radius r,
// using the dual identity: dilate_r(mask)[x] == distance from x to the
// nearest foreground voxel <= r.
func DilateBall(mask []bool, shape grid.Shape, r int) []bool {
	if r < 1 {
		out := make([]bool, len(mask))
		copy(out, mask)
		return out
	}
	complement := make([]bool, len(mask))
	for i, v := range mask {
		complement[i] = !v
	}
	dist, _ := ChooseDistanceTransform(complement, shape)
	out := make([]bool, len(mask))
	rf := float32(r)
	for i := range mask {
		out[i] = dist[i] <= rf
	}
	return out
}

// CloseBall applies binary closing (dilation then erosion) with a solid
// ball of radius r, as spec.md §4.2 step 6 requires.
func CloseBall(mask []bool, shape grid.Shape, r int) []bool {
	if r < 1 {
		out := make([]bool, len(mask))
		copy(out, mask)
		return out
	}
	return ErodeBall(DilateBall(mask, shape, r), shape, r)
}
