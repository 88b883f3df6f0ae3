// Package contact implements C5: neighborhood contact counting between
// particles in a label volume, and the guard-volume interior/boundary
// partition used to exclude edge-clipped particles from contact analysis.
package contact

import (
	"math"
	"runtime"
	"sync"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/grailbio/granulate/internal/morph"
)

// GuardStats summarizes the interior/boundary partition.
type GuardStats struct {
	TotalParticles    int
	InteriorParticles int
	ExcludedParticles int
}

// GuardOptions configures the guard-volume margin (spec.md §4.5 defaults).
type GuardOptions struct {
	MinMargin int
	Alpha     float64
}

// DefaultGuardOptions returns min_margin=10, alpha=0.3.
func DefaultGuardOptions() GuardOptions {
	return GuardOptions{MinMargin: 10, Alpha: 0.3}
}

// Result is the output of Analyze: full and interior-restricted contact
// counts plus guard statistics.
type Result struct {
	FullContacts     map[int32]int
	InteriorContacts map[int32]int
	GuardStats       GuardStats
}

// Analyze computes full_contacts, interior_contacts and guard_stats for a
// label volume under the given connectivity (6 or 26). It never mutates
// labels.
func Analyze(labels []int32, dims [3]int, connectivity int, opts GuardOptions) (Result, error) {
	shape := grid.Shape{Z: dims[0], Y: dims[1], X: dims[2]}
	offs, err := morph.Connectivity(connectivity)
	if err != nil {
		return Result{}, err
	}

	full := countContacts(labels, shape, offs)

	volumes := make(map[int32]int)
	for _, l := range labels {
		if l != 0 {
			volumes[l]++
		}
	}
	margin := guardMargin(volumes, shape, opts)
	interiorIDs := interiorParticles(labels, shape, volumes, margin)

	interior := make(map[int32]int, len(interiorIDs))
	for id := range interiorIDs {
		interior[id] = full[id]
	}

	stats := GuardStats{
		TotalParticles:    len(volumes),
		InteriorParticles: len(interiorIDs),
		ExcludedParticles: len(volumes) - len(interiorIDs),
	}
	return Result{FullContacts: full, InteriorContacts: interior, GuardStats: stats}, nil
}

// countContacts enumerates every offset in offs, comparing the label
// volume against itself shifted by that offset over the overlapping
// region, and records for each particle the set of distinct neighboring
// ids. Offsets are handed out to at most GOMAXPROCS worker goroutines, each
// offset scanned by exactly one worker into its own neighbor set (spec.md
// §5: fork at the start of each operation, join at the end, no locking
// mid-loop); the per-offset neighbor sets are merged into the final count
// map at the join point.
func countContacts(labels []int32, shape grid.Shape, offs []morph.Offset) map[int32]int {
	type neighborSet map[int32]map[int32]struct{}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(offs) {
		workers = len(offs)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]neighborSet, len(offs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(offs))
	for i := range offs {
		jobs <- i
	}
	close(jobs)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = scanOffset(labels, shape, offs[i])
			}
		}()
	}
	wg.Wait()

	merged := make(neighborSet)
	for _, ns := range results {
		for id, neighbors := range ns {
			dst, ok := merged[id]
			if !ok {
				dst = make(map[int32]struct{})
				merged[id] = dst
			}
			for n := range neighbors {
				dst[n] = struct{}{}
			}
		}
	}

	counts := make(map[int32]int, len(merged))
	for id, neighbors := range merged {
		counts[id] = len(neighbors)
	}
	return counts
}

func scanOffset(labels []int32, shape grid.Shape, o morph.Offset) map[int32]map[int32]struct{} {
	out := make(map[int32]map[int32]struct{})
	add := func(a, b int32) {
		m, ok := out[a]
		if !ok {
			m = make(map[int32]struct{})
			out[a] = m
		}
		m[b] = struct{}{}
	}
	for z := 0; z < shape.Z; z++ {
		nz := z + o.DZ
		if nz < 0 || nz >= shape.Z {
			continue
		}
		for y := 0; y < shape.Y; y++ {
			ny := y + o.DY
			if ny < 0 || ny >= shape.Y {
				continue
			}
			for x := 0; x < shape.X; x++ {
				nx := x + o.DX
				if nx < 0 || nx >= shape.X {
					continue
				}
				a := labels[shape.Index(z, y, x)]
				b := labels[shape.Index(nz, ny, nx)]
				if a != 0 && b != 0 && a != b {
					add(a, b)
					add(b, a)
				}
			}
		}
	}
	return out
}

// guardMargin computes m := max(min_margin, ceil(alpha*r_eq)), capped at 6%
// of each dimension and then clamped back up to min_margin (so min_margin
// always wins when it exceeds the 6% cap), where r_eq is the
// equivalent-sphere radius of the largest particle by voxel count.
func guardMargin(volumes map[int32]int, shape grid.Shape, opts GuardOptions) [3]int {
	maxVol := 0
	for _, v := range volumes {
		if v > maxVol {
			maxVol = v
		}
	}
	rEq := math.Cbrt(3 * float64(maxVol) / (4 * math.Pi))
	m := opts.MinMargin
	if alphaMargin := int(math.Ceil(opts.Alpha * rEq)); alphaMargin > m {
		m = alphaMargin
	}

	capToDim := func(dim int) int {
		c := m
		if limit := int(0.06 * float64(dim)); limit < c {
			c = limit
		}
		if c < opts.MinMargin {
			c = opts.MinMargin
		}
		return c
	}
	return [3]int{capToDim(shape.Z), capToDim(shape.Y), capToDim(shape.X)}
}

func interiorParticles(labels []int32, shape grid.Shape, volumes map[int32]int, margin [3]int) map[int32]struct{} {
	boundary := make(map[int32]bool, len(volumes))
	for z := 0; z < shape.Z; z++ {
		for y := 0; y < shape.Y; y++ {
			for x := 0; x < shape.X; x++ {
				l := labels[shape.Index(z, y, x)]
				if l == 0 {
					continue
				}
				if z < margin[0] || z >= shape.Z-margin[0] ||
					y < margin[1] || y >= shape.Y-margin[1] ||
					x < margin[2] || x >= shape.X-margin[2] {
					boundary[l] = true
				}
			}
		}
	}
	interior := make(map[int32]struct{})
	for id := range volumes {
		if !boundary[id] {
			interior[id] = struct{}{}
		}
	}
	return interior
}
