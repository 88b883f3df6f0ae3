package otsu

// Otsu finds the threshold t that maximizes between-class variance over the
// histogram, the standard Otsu's method. Voxels with value <= t are the
// "below" class, value > t the "above" class. Returns 0 if the histogram has
// fewer than two distinct populated levels.
func Otsu(h Histogram) int {
	total := h.Total()
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, c := range h {
		sumAll += float64(i) * float64(c)
	}

	var sumB, wB float64
	wAll := float64(total)

	bestT := 0
	bestVar := -1.0

	for t := 0; t < len(h); t++ {
		wB += float64(h[t])
		if wB == 0 {
			continue
		}
		wF := wAll - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(h[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		diff := mB - mF
		between := wB * wF * diff * diff
		if between > bestVar {
			bestVar = between
			bestT = t
		}
	}
	return bestT
}

// Triangle implements the Triangle thresholding method: it draws a line from
// the histogram peak to the farthest non-empty tail and picks the bin with
// maximum perpendicular distance to that line.
func Triangle(h Histogram) int {
	total := h.Total()
	if total == 0 {
		return 0
	}

	peak := 0
	for i, c := range h {
		if c > h[peak] {
			peak = i
		}
	}

	lo, hi := -1, -1
	for i, c := range h {
		if c > 0 {
			if lo == -1 {
				lo = i
			}
			hi = i
		}
	}
	if lo == -1 {
		return 0
	}

	// Triangle is drawn on whichever side of the peak is longer, matching
	// the classical formulation (the side with more room for a tail).
	var tailStart, tailEnd int
	if peak-lo > hi-peak {
		tailStart, tailEnd = lo, peak
	} else {
		tailStart, tailEnd = peak, hi
	}
	if tailStart == tailEnd {
		return peak
	}

	x1, y1 := float64(tailStart), float64(h[tailStart])
	x2, y2 := float64(tailEnd), float64(h[tailEnd])
	dx, dy := x2-x1, y2-y1
	norm := dx*dx + dy*dy
	if norm == 0 {
		return peak
	}

	bestI := tailStart
	bestDist := -1.0
	for i := tailStart; i <= tailEnd; i++ {
		x0, y0 := float64(i), float64(h[i])
		// Perpendicular distance from (x0,y0) to the line through (x1,y1)-(x2,y2).
		num := dy*x0 - dx*y0 + x2*y1 - y2*x1
		if num < 0 {
			num = -num
		}
		dist := num * num / norm // monotone in true distance, avoids a sqrt
		if dist > bestDist {
			bestDist = dist
			bestI = i
		}
	}
	return bestI
}
