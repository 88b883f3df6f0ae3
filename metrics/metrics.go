// Package metrics implements C4: scalar and distributional statistics over
// a label volume (per-particle volumes, dominance measures, and
// variation-of-information stability between two label volumes).
package metrics

import (
	"math"
	"sort"
)

// Volumes computes per-particle voxel counts from a label volume, excluding
// background (label 0), via a single histogram pass.
func Volumes(labels []int32) map[int32]int {
	out := make(map[int32]int)
	for _, l := range labels {
		if l != 0 {
			out[l]++
		}
	}
	return out
}

// LargestParticleRatio returns max(volume)/sum(volume) over particles, plus
// the raw largest and total voxel counts. Zero particles returns (0,0,0).
func LargestParticleRatio(volumes map[int32]int) (ratio float64, largest, total int) {
	for _, v := range volumes {
		total += v
		if v > largest {
			largest = v
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return float64(largest) / float64(total), largest, total
}

// TopKShare returns the cumulative volume share of the k largest particles
// (k clamped to the number of particles present).
func TopKShare(volumes map[int32]int, k int) float64 {
	if k < 1 {
		k = 1
	}
	sizes := sortedVolumes(volumes)
	if len(sizes) == 0 {
		return 0
	}
	if k > len(sizes) {
		k = len(sizes)
	}
	var total, top int
	for i, v := range sizes {
		total += v
		if i < k {
			top += v
		}
	}
	if total == 0 {
		return 0
	}
	return float64(top) / float64(total)
}

// HHI is the Herfindahl-Hirschman index Σsᵢ² over particle volume shares.
// Range (0,1] when N>=1; approaches 1 under single-particle dominance.
func HHI(volumes map[int32]int) float64 {
	_, _, total := LargestParticleRatio(volumes)
	if total == 0 {
		return 0
	}
	var sum float64
	for _, v := range volumes {
		s := float64(v) / float64(total)
		sum += s * s
	}
	return sum
}

// Gini computes the Gini coefficient of particle volumes via the standard
// Lorenz-curve formula. Returns 0 for a uniform distribution (or fewer than
// two particles), clamped to [0,1].
func Gini(volumes map[int32]int) float64 {
	sizes := sortedVolumes(volumes)
	n := len(sizes)
	if n < 2 {
		return 0
	}
	sort.Ints(sizes)
	var sumAll, weighted float64
	for i, v := range sizes {
		sumAll += float64(v)
		weighted += float64(i+1) * float64(v)
	}
	if sumAll == 0 {
		return 0
	}
	g := (2*weighted)/(float64(n)*sumAll) - float64(n+1)/float64(n)
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	return g
}

func sortedVolumes(volumes map[int32]int) []int {
	sizes := make([]int, 0, len(volumes))
	for _, v := range volumes {
		sizes = append(sizes, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// VariationOfInformation computes VI(A,B) = H(A) + H(B) - 2*I(A;B) in base
// 2, between two label volumes of identical length. When ignoreBackground
// is set, voxels are restricted to (A>0) OR (B>0). The joint contingency
// table is a map keyed on the (a,b) label pair rather than a materialized
// N*M matrix, so label IDs need not be consecutive and memory stays
// proportional to the number of distinct pairs actually observed.
func VariationOfInformation(a, b []int32, ignoreBackground bool) float64 {
	type pair struct{ a, b int32 }
	joint := make(map[pair]int)
	marginalA := make(map[int32]int)
	marginalB := make(map[int32]int)
	n := 0
	for i := range a {
		av, bv := a[i], b[i]
		if ignoreBackground && av == 0 && bv == 0 {
			continue
		}
		joint[pair{av, bv}]++
		marginalA[av]++
		marginalB[bv]++
		n++
	}
	if n == 0 {
		return 0
	}
	entropy := func(counts map[int32]int) float64 {
		var h float64
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := float64(c) / float64(n)
			h -= p * math.Log2(p)
		}
		return h
	}
	hA := entropy(marginalA)
	hB := entropy(marginalB)

	var mi float64
	for k, c := range joint {
		if c == 0 {
			continue
		}
		pxy := float64(c) / float64(n)
		px := float64(marginalA[k.a]) / float64(n)
		py := float64(marginalB[k.b]) / float64(n)
		if px == 0 || py == 0 {
			continue
		}
		mi += pxy * math.Log2(pxy/(px*py))
	}

	vi := hA + hB - 2*mi
	if vi < 0 {
		vi = 0 // guard against floating-point error producing a small negative value
	}
	return vi
}
