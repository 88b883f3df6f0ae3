package morph

import (
	"math"

	"github.com/grailbio/granulate/internal/grid"
)

// EuclideanDistanceTransform computes, for every voxel, the Euclidean
// distance to the nearest background (false) voxel in mask; background
// voxels themselves get distance 0 (matches scipy.ndimage.distance_transform_edt's
// convention, which spec.md §4.3 step 4 calls for). It is separable: a 1D
// squared-distance lower-envelope pass (Felzenszwalt & Huttenlocher) run
// along X, then Y, then Z.
func EuclideanDistanceTransform(mask []bool, shape grid.Shape) []float32 {
	sq := make([]float64, shape.Len())
	const inf = 1e20
	for i, v := range mask {
		if v {
			sq[i] = inf
		} else {
			sq[i] = 0
		}
	}

	buf := make([]float64, maxInt(shape.X, maxInt(shape.Y, shape.Z)))

	// Pass along X.
	for z := 0; z < shape.Z; z++ {
		for y := 0; y < shape.Y; y++ {
			base := shape.Index(z, y, 0)
			row := sq[base : base+shape.X]
			lowerEnvelope1D(row, buf[:shape.X])
			copy(row, buf[:shape.X])
		}
	}
	// Pass along Y.
	col := make([]float64, shape.Y)
	for z := 0; z < shape.Z; z++ {
		for x := 0; x < shape.X; x++ {
			for y := 0; y < shape.Y; y++ {
				col[y] = sq[shape.Index(z, y, x)]
			}
			lowerEnvelope1D(col, buf[:shape.Y])
			for y := 0; y < shape.Y; y++ {
				sq[shape.Index(z, y, x)] = buf[y]
			}
		}
	}
	// Pass along Z.
	dep := make([]float64, shape.Z)
	for y := 0; y < shape.Y; y++ {
		for x := 0; x < shape.X; x++ {
			for z := 0; z < shape.Z; z++ {
				dep[z] = sq[shape.Index(z, y, x)]
			}
			lowerEnvelope1D(dep, buf[:shape.Z])
			for z := 0; z < shape.Z; z++ {
				sq[shape.Index(z, y, x)] = buf[z]
			}
		}
	}

	out := make([]float32, shape.Len())
	for i, v := range sq {
		out[i] = float32(math.Sqrt(v))
	}
	return out
}

// lowerEnvelope1D computes the 1D squared-distance transform of f (each
// entry is either 0 at a "seed" or +inf elsewhere, after earlier passes an
// already-squared partial distance), writing the result into out.
// Standard parabola lower-envelope algorithm, O(n).
func lowerEnvelope1D(f []float64, out []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	v := make([]int, n)   // locations of parabolas in lower envelope
	z := make([]float64, n+1)
	k := 0
	v[0] = 0
	z[0] = -1e30
	z[1] = 1e30

	for q := 1; q < n; q++ {
		for {
			s := intersect(f, v[k], q)
			if s <= z[k] {
				k--
				continue
			}
			z[k+1] = s
			break
		}
		k++
		v[k] = q
		z[k+1] = 1e30
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		out[q] = dq*dq + f[v[k]]
	}
}

func intersect(f []float64, p, q int) float64 {
	fp, fq := f[p], f[q]
	pf, qf := float64(p), float64(q)
	return ((fq + qf*qf) - (fp + pf*pf)) / (2*qf - 2*pf)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ManhattanDistanceTransform computes, for every voxel, the grid (L1) path
// distance to the nearest background voxel using multi-source BFS over the
// 6-connected lattice. This is the memory-bounded fallback spec.md §4.3
// step 4 allows when the volume is too large for the Euclidean pass (it
// needs only an int32 queue and distance buffer, no float parabola state).
func ManhattanDistanceTransform(mask []bool, shape grid.Shape) []float32 {
	n := shape.Len()
	dist := make([]int32, n)
	const unset = -1
	for i := range dist {
		dist[i] = unset
	}
	queue := make([]int32, 0, n/4+1)
	for i, v := range mask {
		if !v {
			dist[i] = 0
			queue = append(queue, int32(i))
		}
	}
	offs := Offsets6()
	for head := 0; head < len(queue); head++ {
		idx := int(queue[head])
		z, y, x := shape.Coords(idx)
		d := dist[idx]
		for _, o := range offs {
			nz, ny, nx := z+o.DZ, y+o.DY, x+o.DX
			if !shape.InBounds(nz, ny, nx) {
				continue
			}
			ni := shape.Index(nz, ny, nx)
			if dist[ni] == unset {
				dist[ni] = d + 1
				queue = append(queue, int32(ni))
			}
		}
	}
	out := make([]float32, n)
	for i, d := range dist {
		if d == unset {
			d = 0
		}
		out[i] = float32(d)
	}
	return out
}

// VoxelCountGate is the reference total-voxel-count threshold spec.md §4.3
// step 4 cites as a guide for choosing Euclidean vs. taxicab distance.
const VoxelCountGate = 20_000_000

// ChooseDistanceTransform runs the Euclidean transform below the voxel-count
// gate and the Manhattan fallback above it, matching spec.md's guidance that
// the choice may be gated on total voxel count when memory is a concern.
func ChooseDistanceTransform(mask []bool, shape grid.Shape) (dist []float32, usedEuclidean bool) {
	if shape.Len() <= VoxelCountGate {
		return EuclideanDistanceTransform(mask, shape), true
	}
	return ManhattanDistanceTransform(mask, shape), false
}
