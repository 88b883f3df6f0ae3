package morph

import (
	"container/heap"

	"github.com/grailbio/granulate/internal/grid"
)

// Watershed floods -distance (so basins = maxima of distance, i.e. particle
// centers) restricted to mask, starting from seeds (nonzero = seed label,
// 0 = unlabeled). Unlabeled mask voxels are assigned to the seed whose
// flood reaches them first; among equal -distance values, the voxel
// inserted into the priority queue earliest wins, matching spec.md §4.3
// step 5's tie-break rule ("the seed whose basin is reached first along
// the priority-queue ordering").
func Watershed(distance []float32, mask []bool, seeds []int32, shape grid.Shape) []int32 {
	labels := make([]int32, len(seeds))
	copy(labels, seeds)

	pq := &wsHeap{}
	heap.Init(pq)
	seq := 0
	offs := Offsets26()

	pushNeighbors := func(idx int) {
		z, y, x := shape.Coords(idx)
		for _, o := range offs {
			nz, ny, nx := z+o.DZ, y+o.DY, x+o.DX
			if !shape.InBounds(nz, ny, nx) {
				continue
			}
			ni := shape.Index(nz, ny, nx)
			if mask[ni] && labels[ni] == 0 {
				heap.Push(pq, wsItem{height: -distance[ni], seq: seq, idx: ni, label: labels[idx]})
				seq++
			}
		}
	}

	for i, l := range seeds {
		if l != 0 {
			pushNeighbors(i)
		}
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(wsItem)
		if labels[item.idx] != 0 {
			continue // already claimed by an earlier, equal-or-lower-height pop
		}
		labels[item.idx] = item.label
		pushNeighbors(item.idx)
	}

	// Any mask voxel unreachable from a seed (shouldn't happen for a
	// connected mask with >=1 seed, but guards against pathological
	// disconnected components) keeps label 0 and is handled by the caller.
	return labels
}

type wsItem struct {
	height float32
	seq    int
	idx    int
	label  int32
}

type wsHeap []wsItem

func (h wsHeap) Len() int { return len(h) }
func (h wsHeap) Less(i, j int) bool {
	if h[i].height != h[j].height {
		return h[i].height < h[j].height
	}
	return h[i].seq < h[j].seq
}
func (h wsHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *wsHeap) Push(x interface{}) {
	*h = append(*h, x.(wsItem))
}
func (h *wsHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
