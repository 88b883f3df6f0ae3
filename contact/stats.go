package contact

import (
	"math"
	"sort"
)

// Stats is the descriptive summary Describe computes over a contact-count
// distribution: mean/median/std plus quartiles. This is the
// broader descriptive-stats pass the distilled spec drops in favor of just
// the guard-volume split; kept as an optional diagnostic, not on the
// mandatory sweep path.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Stddev float64
	Q1     float64
	Q3     float64
}

// Describe computes descriptive statistics over a contact-count map.
func Describe(counts map[int32]int) Stats {
	if len(counts) == 0 {
		return Stats{}
	}
	values := make([]int, 0, len(counts))
	for _, c := range counts {
		values = append(values, c)
	}
	sort.Ints(values)

	n := len(values)
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(n)

	return Stats{
		Count:  n,
		Mean:   mean,
		Median: percentile(values, 0.5),
		Stddev: math.Sqrt(variance),
		Q1:     percentile(values, 0.25),
		Q3:     percentile(values, 0.75),
	}
}

// AutoExclude splits a contact-count map at threshold: particles whose
// contact count exceeds threshold are considered spurious (e.g. a
// segmentation artifact merging many particles into one touching everything)
// and returned separately from the kept set.
func AutoExclude(full map[int32]int, threshold int) (kept map[int32]int, excluded []int32) {
	kept = make(map[int32]int, len(full))
	for id, c := range full {
		if c > threshold {
			excluded = append(excluded, id)
			continue
		}
		kept[id] = c
	}
	sort.Slice(excluded, func(i, j int) bool { return excluded[i] < excluded[j] })
	return kept, excluded
}

func percentile(sorted []int, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return float64(sorted[0])
	}
	pos := p * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
