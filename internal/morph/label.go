package morph

import "github.com/grailbio/granulate/internal/grid"

// Label performs connected-component labeling of mask under the given
// connectivity (6 or 26), returning a dense label volume (0 = background,
// 1..N = components) and N. Implemented as a flood fill from each
// unvisited foreground voxel, grounded in structure (dense flat array,
// BFS queue, compaction) on how the pack's dvid `labels64`/`voxels`
// packages scan a label grid, since no Go package in the pack performs 3D
// segmentation itself.
func Label(mask []bool, shape grid.Shape, connectivity int) ([]int32, int, error) {
	offs, err := Connectivity(connectivity)
	if err != nil {
		return nil, 0, err
	}
	n := shape.Len()
	labels := make([]int32, n)
	queue := make([]int32, 0, 1024)

	next := int32(0)
	for start := 0; start < n; start++ {
		if !mask[start] || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		queue = queue[:0]
		queue = append(queue, int32(start))
		for head := 0; head < len(queue); head++ {
			idx := int(queue[head])
			z, y, x := shape.Coords(idx)
			for _, o := range offs {
				nz, ny, nx := z+o.DZ, y+o.DY, x+o.DX
				if !shape.InBounds(nz, ny, nx) {
					continue
				}
				ni := shape.Index(nz, ny, nx)
				if mask[ni] && labels[ni] == 0 {
					labels[ni] = next
					queue = append(queue, int32(ni))
				}
			}
		}
	}
	return labels, int(next), nil
}

// Compact renumbers labels (which may have gaps, e.g. after a watershed
// step that dropped some seed IDs) to a dense 1..N range, preserving
// relative order of first appearance. Background (0) is left untouched.
func Compact(labels []int32) int {
	remap := make(map[int32]int32)
	next := int32(0)
	for i, l := range labels {
		if l == 0 {
			continue
		}
		newID, ok := remap[l]
		if !ok {
			next++
			newID = next
			remap[l] = newID
		}
		labels[i] = newID
	}
	return int(next)
}
