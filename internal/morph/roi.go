package morph

import "github.com/grailbio/granulate/internal/grid"

// CloseSquare2D applies binary closing to a single 2D slice (h rows, w
// cols) with an n x n square structuring element, as spec.md §4.2 step 2
// requires for per-slice ROI derivation ("morphologically close with a 5x5
// square").
func CloseSquare2D(mask []bool, h, w, n int) []bool {
	return erodeSquare2D(dilateSquare2D(mask, h, w, n), h, w, n)
}

func dilateSquare2D(mask []bool, h, w, n int) []bool {
	out := make([]bool, len(mask))
	radius := n / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if out[y*w+x] {
				continue
			}
			found := false
			for dy := -radius; dy <= radius && !found; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					if mask[ny*w+nx] {
						found = true
						break
					}
				}
			}
			out[y*w+x] = found
		}
	}
	return out
}

func erodeSquare2D(mask []bool, h, w, n int) []bool {
	out := make([]bool, len(mask))
	radius := n / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			all := true
			for dy := -radius; dy <= radius && all; dy++ {
				ny := y + dy
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if ny < 0 || ny >= h || nx < 0 || nx >= w || !mask[ny*w+nx] {
						all = false
						break
					}
				}
			}
			out[y*w+x] = all
		}
	}
	return out
}

// FillHoles2D fills background regions of a 2D mask that are not connected
// to the slice border, matching scipy.ndimage.binary_fill_holes used by the
// per-slice ROI derivation in spec.md §4.2 step 2.
func FillHoles2D(mask []bool, h, w int) []bool {
	shape := grid.Shape{Z: 1, Y: h, X: w}
	reached := make([]bool, h*w)
	queue := make([]int32, 0, h+w)
	push := func(y, x int) {
		idx := shape.Index(0, y, x)
		if !mask[idx] && !reached[idx] {
			reached[idx] = true
			queue = append(queue, int32(idx))
		}
	}
	for x := 0; x < w; x++ {
		push(0, x)
		push(h-1, x)
	}
	for y := 0; y < h; y++ {
		push(y, 0)
		push(y, w-1)
	}
	offs := Offsets6()
	for head := 0; head < len(queue); head++ {
		idx := int(queue[head])
		_, y, x := shape.Coords(idx)
		for _, o := range offs {
			if o.DZ != 0 {
				continue
			}
			ny, nx := y+o.DY, x+o.DX
			if ny < 0 || ny >= h || nx < 0 || nx >= w {
				continue
			}
			ni := shape.Index(0, ny, nx)
			if !mask[ni] && !reached[ni] {
				reached[ni] = true
				queue = append(queue, int32(ni))
			}
		}
	}
	out := make([]bool, h*w)
	for i, v := range mask {
		out[i] = v || !reached[i]
	}
	return out
}

// LargestComponent2D returns a mask containing only the largest
// 8-connected foreground component of a 2D slice ("retain the largest
// connected component", spec.md §4.2 step 2).
func LargestComponent2D(mask []bool, h, w int) []bool {
	shape := grid.Shape{Z: 1, Y: h, X: w}
	labels, n, err := Label(mask, shape, 26) // 26-neighborhood on Z=1 reduces to 8-connectivity in-plane
	if err != nil || n == 0 {
		return make([]bool, h*w)
	}
	counts := make([]int, n+1)
	for _, l := range labels {
		counts[l]++
	}
	best := int32(1)
	for id := int32(2); id <= int32(n); id++ {
		if counts[id] > counts[best] {
			best = id
		}
	}
	out := make([]bool, h*w)
	for i, l := range labels {
		out[i] = l == best
	}
	return out
}
