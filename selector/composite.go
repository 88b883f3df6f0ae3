package selector

import (
	"math"
	"sort"

	"github.com/grailbio/granulate/sweep"
)

// CompositeResult is the output of WeightedComposite: the chosen radius
// plus the per-radius scores that produced it, for diagnostic inspection.
type CompositeResult struct {
	BestRadius int
	Scores     map[int]float64
	Reason     string
}

// WeightedComposite is the legacy weighted-composite selector: a single
// score per radius blending separation quality (largest_particle_ratio),
// proximity to the target contact count, and distance from the knee point
// of the particle-count curve, weighted equally. It is never called by the
// orchestrator's default path and exists purely as a diagnostic comparison
// against ByConstraints/ParetoDistance.
func WeightedComposite(records []sweep.Record, targetContacts float64) CompositeResult {
	if len(records) == 0 {
		return CompositeResult{Reason: "no results available"}
	}

	radii := make([]float64, len(records))
	counts := make([]float64, len(records))
	for i, r := range records {
		radii[i] = float64(r.Radius)
		counts[i] = float64(r.ParticleCount)
	}
	kneeIdx := 0
	if len(records) >= 3 {
		kneeIdx = kneedle(radii, counts)
	}

	separation := make([]float64, len(records))
	contactFit := make([]float64, len(records))
	kneeProximity := make([]float64, len(records))
	for i, r := range records {
		separation[i] = 1 - clamp01(r.LargestParticleRatio)
		contactFit[i] = 1 / (1 + math.Abs(r.MeanInteriorContacts-targetContacts))
		kneeProximity[i] = 1 / (1 + math.Abs(float64(i-kneeIdx)))
	}

	scores := make(map[int]float64, len(records))
	for i, r := range records {
		scores[r.Radius] = (separation[i] + contactFit[i] + kneeProximity[i]) / 3
	}

	radiiOrder := make([]int, len(records))
	for i, r := range records {
		radiiOrder[i] = r.Radius
	}
	sort.Slice(radiiOrder, func(a, b int) bool { return scores[radiiOrder[a]] > scores[radiiOrder[b]] })

	return CompositeResult{
		BestRadius: radiiOrder[0],
		Scores:     scores,
		Reason:     "weighted composite of separation, contact fit and knee proximity",
	}
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
