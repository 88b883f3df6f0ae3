package morph

import "github.com/grailbio/granulate/internal/grid"

// RemoveSmallObjects clears connected components (under the given
// connectivity) of mask that contain fewer than minVoxels voxels, matching
// spec.md §4.2 step 7 ("remove small connected components below a minimum
// voxel count").
func RemoveSmallObjects(mask []bool, shape grid.Shape, connectivity int, minVoxels int) ([]bool, error) {
	labels, n, err := Label(mask, shape, connectivity)
	if err != nil {
		return nil, err
	}
	counts := make([]int, n+1)
	for _, l := range labels {
		counts[l]++
	}
	out := make([]bool, len(mask))
	for i, l := range labels {
		if l != 0 && counts[l] >= minVoxels {
			out[i] = true
		}
	}
	return out, nil
}
