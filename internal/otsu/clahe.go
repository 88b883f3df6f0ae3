package otsu

import "math"

// CLAHEOptions configures contrast-limited adaptive histogram equalization.
type CLAHEOptions struct {
	ClipLimit float64 // relative clip limit, e.g. 2.0 (matches cv2's default scale)
	TilesY    int
	TilesX    int
}

// DefaultCLAHEOptions mirrors the teacher Python's cv2.createCLAHE defaults
// (clip 2.0, 8x8 tiles), adapted to spec.md §4.2 step 1's per-slice pass.
func DefaultCLAHEOptions() CLAHEOptions {
	return CLAHEOptions{ClipLimit: 2.0, TilesY: 8, TilesX: 8}
}

// CLAHESlice applies contrast-limited adaptive histogram equalization to a
// single 2D slice of uint16 values (h rows, w cols), returning float32
// values normalized to [0,1], per spec.md §4.2 step 1 ("converting to a
// normalized floating-point volume in [0,1]").
func CLAHESlice(data []uint16, h, w int, opts CLAHEOptions) []float32 {
	out := make([]float32, len(data))
	if h == 0 || w == 0 {
		return out
	}
	ty, tx := opts.TilesY, opts.TilesX
	if ty < 1 {
		ty = 1
	}
	if tx < 1 {
		tx = 1
	}

	const levels = 65536
	tileCDFs := make([][]float64, ty*tx)
	for ty_ := 0; ty_ < ty; ty_++ {
		y0 := ty_ * h / ty
		y1 := (ty_ + 1) * h / ty
		for tx_ := 0; tx_ < tx; tx_++ {
			x0 := tx_ * w / tx
			x1 := (tx_ + 1) * w / tx
			idx := ty_*tx + tx_

			var hist [levels]uint32
			count := 0
			for y := y0; y < y1; y++ {
				row := y * w
				for x := x0; x < x1; x++ {
					hist[data[row+x]]++
					count++
				}
			}
			if count == 0 {
				tileCDFs[idx] = make([]float64, levels)
				continue
			}

			clipLimit := opts.ClipLimit * float64(count) / float64(levels)
			if clipLimit < 1 {
				clipLimit = 1
			}
			var excess uint32
			for i := range hist {
				if float64(hist[i]) > clipLimit {
					excess += hist[i] - uint32(clipLimit)
					hist[i] = uint32(clipLimit)
				}
			}
			redistribute := float64(excess) / float64(levels)
			cdf := make([]float64, levels)
			running := 0.0
			for i := 0; i < levels; i++ {
				running += float64(hist[i]) + redistribute
				cdf[i] = running
			}
			norm := running
			if norm == 0 {
				norm = 1
			}
			for i := range cdf {
				cdf[i] /= norm
			}
			tileCDFs[idx] = cdf
		}
	}

	for y := 0; y < h; y++ {
		ty0, ty1, wy := bracket(float64(y), ty, h)
		for x := 0; x < w; x++ {
			tx0, tx1, wx := bracket(float64(x), tx, w)

			v := data[y*w+x]
			q00 := tileCDFs[ty0*tx+tx0][v]
			q01 := tileCDFs[ty0*tx+tx1][v]
			q10 := tileCDFs[ty1*tx+tx0][v]
			q11 := tileCDFs[ty1*tx+tx1][v]

			val := bilinear(q00, q01, q10, q11, wx, wy)
			out[y*w+x] = float32(clamp01(val))
		}
	}
	return out
}

// bracket finds the two tile indices along one axis that bracket position p
// (tile centers are at the midpoint of each tile's pitch) and the
// interpolation weight toward the second tile.
func bracket(p float64, tiles, extent int) (i0, i1 int, w float64) {
	pitch := float64(extent) / float64(tiles)
	c := p/pitch - 0.5
	i0 = int(math.Floor(c))
	w = c - float64(i0)
	if i0 < 0 {
		i0, w = 0, 0
	}
	i1 = i0 + 1
	if i1 >= tiles {
		i1 = tiles - 1
		if i0 >= tiles {
			i0 = tiles - 1
		}
		w = 0
	}
	return i0, i1, w
}

func bilinear(q00, q01, q10, q11, wx, wy float64) float64 {
	top := q00*(1-wx) + q01*wx
	bottom := q10*(1-wx) + q11*wx
	return top*(1-wy) + bottom*wy
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
