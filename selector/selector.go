// Package selector implements C7: the decision procedure that picks the
// best radius from a completed sweep, plus a Pareto+distance fallback
// selector for diagnostic comparison. ByConstraints always returns a
// decision, and nothing in this module calls ParetoDistance automatically.
package selector

import (
	"math"
	"sort"

	"github.com/grailbio/granulate/sweep"
)

// Thresholds configures the primary decision procedure (spec.md §4.7
// defaults).
type Thresholds struct {
	TauRatio        float64
	ContactsMin     float64
	ContactsMax     float64
	SmoothingWindow int // 0 (none), 1 or 2
}

// DefaultThresholds returns tau_ratio=0.03, contacts range [5,9], no
// smoothing.
func DefaultThresholds() Thresholds {
	return Thresholds{TauRatio: 0.03, ContactsMin: 5, ContactsMax: 9, SmoothingWindow: 0}
}

// Reason is the recorded justification for the chosen radius.
type Reason string

const (
	ReasonPeakAndContacts Reason = "peak_and_contacts"
	ReasonContactsOnly    Reason = "contacts_only"
	ReasonRPeak           Reason = "r_peak"
	ReasonRStar           Reason = "r_star"
	ReasonMaxR            Reason = "max_r"
)

// Decision is the outcome of the primary decision procedure.
type Decision struct {
	Radius     int
	Reason     Reason
	Thresholds Thresholds
}

// smoothed pairs a record's decision-relevant signals with its radius,
// after optional centered moving-average smoothing.
type smoothed struct {
	radius  int
	lpr     float64
	count   float64
	contact float64
}

func smooth(records []sweep.Record, window int) []smoothed {
	out := make([]smoothed, len(records))
	for i, r := range records {
		out[i] = smoothed{radius: r.Radius, lpr: r.LargestParticleRatio, count: float64(r.ParticleCount), contact: r.MeanInteriorContacts}
	}
	if window <= 0 {
		return out
	}
	avg := func(get func(smoothed) float64, i int) float64 {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi >= len(out) {
			hi = len(out) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += get(out[j])
		}
		return sum / float64(hi-lo+1)
	}
	smoothedOut := make([]smoothed, len(out))
	for i := range out {
		smoothedOut[i] = smoothed{
			radius:  out[i].radius,
			lpr:     avg(func(s smoothed) float64 { return s.lpr }, i),
			count:   avg(func(s smoothed) float64 { return s.count }, i),
			contact: avg(func(s smoothed) float64 { return s.contact }, i),
		}
	}
	return smoothedOut
}

// ByConstraints implements the ordered primary decision procedure of
// spec.md §4.7. records must be in radius-ascending order (as a
// sweep.Summary always produces).
func ByConstraints(records []sweep.Record, th Thresholds) Decision {
	if len(records) == 0 {
		return Decision{Thresholds: th}
	}
	sig := smooth(records, th.SmoothingWindow)

	ratioSatisfiedAnywhere := false
	rStarIdx := -1
	for i, s := range sig {
		if s.lpr <= th.TauRatio {
			ratioSatisfiedAnywhere = true
			rStarIdx = i
			break
		}
	}
	if rStarIdx == -1 {
		rStarIdx = 0
	}
	rStar := sig[rStarIdx].radius

	// R_peak: within {r >= r* && lpr(r) <= tau_ratio}, the radius with
	// maximal (smoothed) particle_count; ties favor the smaller radius.
	peakIdx := -1
	for i := rStarIdx; i < len(sig); i++ {
		if sig[i].lpr > th.TauRatio {
			continue
		}
		if peakIdx == -1 || sig[i].count > sig[peakIdx].count {
			peakIdx = i
		}
	}

	inContactRange := func(c float64) bool { return c >= th.ContactsMin && c <= th.ContactsMax }

	if peakIdx != -1 && inContactRange(sig[peakIdx].contact) {
		return Decision{Radius: sig[peakIdx].radius, Reason: ReasonPeakAndContacts, Thresholds: th}
	}

	for i := rStarIdx; i < len(sig); i++ {
		if inContactRange(sig[i].contact) {
			return Decision{Radius: sig[i].radius, Reason: ReasonContactsOnly, Thresholds: th}
		}
	}

	if peakIdx != -1 {
		return Decision{Radius: sig[peakIdx].radius, Reason: ReasonRPeak, Thresholds: th}
	}

	if ratioSatisfiedAnywhere {
		return Decision{Radius: rStar, Reason: ReasonRStar, Thresholds: th}
	}

	return Decision{Radius: sig[len(sig)-1].radius, Reason: ReasonMaxR, Thresholds: th}
}

// InstabilityLookup returns the variation of information between the label
// volumes at two radii, or ok=false if unavailable. Satisfied by
// *sweep.Summary.
type InstabilityLookup interface {
	InstabilityTo(radius, neighbor int) (vi float64, ok bool, err error)
}

// ParetoCandidate is one record's Pareto decision, exposed for diagnostics.
type ParetoCandidate struct {
	Radius          int
	HHI             float64
	KneeDistance    float64
	Instability     float64
	NonDominated    bool
	DistanceToIdeal float64
}

// ParetoResult is the fallback selector's full output.
type ParetoResult struct {
	BestRadius int
	Candidates []ParetoCandidate
}

// ParetoDistance implements the fallback selector (spec.md §4.7): Pareto
// non-dominated set over {HHI, knee distance, instability}, each
// min-max normalized, tie-broken by Euclidean distance to the origin, then
// smaller radius, then smaller raw HHI, then proximity of mean contacts to
// targetContacts.
func ParetoDistance(records []sweep.Record, hhis []float64, instability InstabilityLookup, targetContacts float64) ParetoResult {
	n := len(records)
	if n == 0 {
		return ParetoResult{}
	}

	counts := make([]float64, n)
	radii := make([]float64, n)
	for i, r := range records {
		counts[i] = float64(r.ParticleCount)
		radii[i] = float64(r.Radius)
	}
	kneeIdx := 0
	if n >= 3 {
		kneeIdx = kneedle(radii, counts)
	}

	kneeDists := make([]float64, n)
	instabs := make([]float64, n)
	for i, r := range records {
		kneeDists[i] = math.Abs(float64(i - kneeIdx))
		var vals []float64
		if i > 0 {
			if vi, ok, err := instability.InstabilityTo(records[i-1].Radius, r.Radius); err == nil && ok {
				vals = append(vals, vi)
			}
		}
		if i+1 < n {
			if vi, ok, err := instability.InstabilityTo(r.Radius, records[i+1].Radius); err == nil && ok {
				vals = append(vals, vi)
			}
		}
		instabs[i] = meanFloat(vals)
	}

	hhiN := normalize(hhis)
	kneeN := normalize(kneeDists)
	instabN := normalize(instabs)

	dominates := func(a, b int) bool {
		le := hhiN[a] <= hhiN[b] && kneeN[a] <= kneeN[b] && instabN[a] <= instabN[b]
		lt := hhiN[a] < hhiN[b] || kneeN[a] < kneeN[b] || instabN[a] < instabN[b]
		return le && lt
	}

	nonDominated := make([]bool, n)
	for i := range records {
		dominated := false
		for j := range records {
			if j != i && dominates(j, i) {
				dominated = true
				break
			}
		}
		nonDominated[i] = !dominated
	}

	distance := func(i int) float64 {
		return math.Sqrt(hhiN[i]*hhiN[i] + kneeN[i]*kneeN[i] + instabN[i]*instabN[i])
	}

	candidates := make([]ParetoCandidate, n)
	candidateIdx := make([]int, 0, n)
	for i, r := range records {
		candidates[i] = ParetoCandidate{
			Radius:          r.Radius,
			HHI:             hhis[i],
			KneeDistance:    kneeDists[i],
			Instability:     instabs[i],
			NonDominated:    nonDominated[i],
			DistanceToIdeal: distance(i),
		}
		if nonDominated[i] {
			candidateIdx = append(candidateIdx, i)
		}
	}
	if len(candidateIdx) == 0 {
		for i := range records {
			candidateIdx = append(candidateIdx, i)
		}
	}

	sort.Slice(candidateIdx, func(a, b int) bool {
		i, j := candidateIdx[a], candidateIdx[b]
		if distance(i) != distance(j) {
			return distance(i) < distance(j)
		}
		if records[i].Radius != records[j].Radius {
			return records[i].Radius < records[j].Radius
		}
		if hhis[i] != hhis[j] {
			return hhis[i] < hhis[j]
		}
		return math.Abs(records[i].MeanInteriorContacts-targetContacts) < math.Abs(records[j].MeanInteriorContacts-targetContacts)
	})

	return ParetoResult{BestRadius: records[candidateIdx[0]].Radius, Candidates: candidates}
}

// kneedle detects the knee point index of a curve via the standard
// min-max-normalized-distance-from-diagonal method: normalize both axes to
// [0,1] and return the index of maximal (y - x).
func kneedle(x, y []float64) int {
	xn := normalize(x)
	yn := normalize(y)
	best := 0
	bestDiff := math.Inf(-1)
	for i := range xn {
		diff := yn[i] - xn[i]
		if diff > bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max <= min {
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
