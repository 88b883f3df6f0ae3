package metrics

// Dice2D computes the Dice coefficient between two 2D boolean masks of
// equal length: 2*|A∩B| / (|A|+|B|). Self-Dice is 1, disjoint-Dice is 0
// (spec.md §8 law L5). Returns 1 when both masks are empty (vacuously
// identical).
func Dice2D(a, b []bool) float64 {
	var intersection, sumA, sumB int
	for i := range a {
		if a[i] {
			sumA++
		}
		if b[i] {
			sumB++
		}
		if a[i] && b[i] {
			intersection++
		}
	}
	if sumA+sumB == 0 {
		return 1
	}
	return 2 * float64(intersection) / float64(sumA+sumB)
}

// MeanSliceDice averages Dice2D across a set of ground-truth 2D slices
// keyed by Z index, each compared against the corresponding slice of a
// predicted 2D mask set. Slices present in one set but not the other are
// skipped. Returns 0 if no keys overlap.
func MeanSliceDice(groundTruth, predicted map[int][]bool) float64 {
	var sum float64
	var n int
	for z, gt := range groundTruth {
		pred, ok := predicted[z]
		if !ok {
			continue
		}
		sum += Dice2D(gt, pred)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
