// Package sweep implements C6: the radius sweep driver that repeatedly
// invokes the splitter, metrics and contact stages over a list of radii and
// assembles the resulting records into an ordered summary.
package sweep

import (
	"context"
	"time"

	"github.com/biogo/store/llrb"
	"github.com/golang/snappy"
	"github.com/grailbio/base/log"
	"github.com/grailbio/granulate/contact"
	"github.com/grailbio/granulate/metrics"
	"github.com/grailbio/granulate/splitter"
	"github.com/pkg/errors"
)

// Record is a SweepRecord: the immutable per-radius tuple produced by one
// sweep iteration.
type Record struct {
	Radius                int
	ParticleCount         int
	MeanInteriorContacts  float64
	LargestParticleRatio  float64
	InteriorParticleCount int
	ExcludedParticleCount int
	TotalVolume           int
	LargestParticleVolume int
	ProcessingTime        time.Duration
}

// Compare implements llrb.Comparable, ordering records by radius. Radii
// within one sweep are unique, so this is a total order.
func (r *Record) Compare(other llrb.Comparable) int {
	o := other.(*Record)
	return r.Radius - o.Radius
}

// Options configures a sweep run.
type Options struct {
	Radii              []int
	Connectivity       int
	GuardOptions       contact.GuardOptions
	PlateauThreshold   float64 // relative particle-count change below which early-stopping triggers; 0 disables
	RetainLabelVolumes bool    // keep snappy-compressed label volumes for VI instability (selector fallback)
}

// DefaultPlateauThreshold is spec.md §4.6 step 5's default (1%).
const DefaultPlateauThreshold = 0.01

// DefaultOptions returns radii 1..10, connectivity 6, default guard options
// and plateau threshold, retaining label volumes for the Selector's
// instability objective.
func DefaultOptions() Options {
	radii := make([]int, 10)
	for i := range radii {
		radii[i] = i + 1
	}
	return Options{
		Radii:              radii,
		Connectivity:       6,
		GuardOptions:       contact.DefaultGuardOptions(),
		PlateauThreshold:   DefaultPlateauThreshold,
		RetainLabelVolumes: true,
	}
}

// retainedVolume is a snappy-compressed label volume kept in memory so the
// Selector's Pareto fallback can compute variation of information between
// adjacent radii without holding multiple uncompressed int32 volumes live.
type retainedVolume struct {
	dims       [3]int
	compressed []byte
}

func compressLabels(labels []int32, dims [3]int) retainedVolume {
	raw := make([]byte, len(labels)*4)
	for i, v := range labels {
		u := uint32(v)
		raw[4*i] = byte(u)
		raw[4*i+1] = byte(u >> 8)
		raw[4*i+2] = byte(u >> 16)
		raw[4*i+3] = byte(u >> 24)
	}
	return retainedVolume{dims: dims, compressed: snappy.Encode(nil, raw)}
}

func (v retainedVolume) decompress() ([]int32, error) {
	raw, err := snappy.Decode(nil, v.compressed)
	if err != nil {
		return nil, errors.Wrap(err, "sweep: decompressing retained label volume")
	}
	n := len(raw) / 4
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		u := uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
		out[i] = int32(u)
	}
	return out, nil
}

// Summary is the SweepSummary: the ordered sequence of records produced by
// a Run, plus bookkeeping needed by the Selector's instability objective.
// Records are kept in run order and also indexed in an llrb.Tree keyed by
// radius, which backs At's lookup of a single radius.
type Summary struct {
	tree       llrb.Tree
	ordered    []Record
	TotalTime  time.Duration
	Truncated  bool // true if early-stopping or an error cut the sweep short
	retained   map[int]retainedVolume
}

// Records returns the sweep's records in strictly ascending radius order.
func (s *Summary) Records() []Record {
	return s.ordered
}

// At returns the record for a specific radius, if present.
func (s *Summary) At(radius int) (Record, bool) {
	item := s.tree.Get(&Record{Radius: radius})
	if item == nil {
		return Record{}, false
	}
	return *item.(*Record), true
}

// InstabilityTo computes the variation of information between the retained
// label volume at radius and the one at neighbor, if both were retained.
// Returns ok=false if either volume was not retained (e.g.
// RetainLabelVolumes was false, or the sweep never reached one of them).
func (s *Summary) InstabilityTo(radius, neighbor int) (vi float64, ok bool, err error) {
	a, haveA := s.retained[radius]
	b, haveB := s.retained[neighbor]
	if !haveA || !haveB {
		return 0, false, nil
	}
	labelsA, err := a.decompress()
	if err != nil {
		return 0, false, err
	}
	labelsB, err := b.decompress()
	if err != nil {
		return 0, false, err
	}
	return metrics.VariationOfInformation(labelsA, labelsB, true), true, nil
}

// LabelsAt decompresses and returns the label volume retained for radius,
// if RetainLabelVolumes was set and the sweep reached that radius. This is
// the only way to recover a label volume after a sweep completes: Run
// itself never persists one, per spec.md §3's ownership rule that only the
// radius ultimately chosen by the Selector survives past the sweep.
func (s *Summary) LabelsAt(radius int) (labels []int32, dims [3]int, ok bool, err error) {
	v, have := s.retained[radius]
	if !have {
		return nil, [3]int{}, false, nil
	}
	labels, err = v.decompress()
	if err != nil {
		return nil, [3]int{}, false, err
	}
	return labels, v.dims, true, nil
}

// Progress is emitted once per completed radius, carrying the partial
// record (spec.md §4.6 step 4).
type Progress struct {
	Record Record
	Index  int
	Total  int
}

// Run implements C6: for each radius in opts.Radii (ascending order
// required), invokes the splitter, metrics and contact packages, assembling
// a Record per iteration. progressFn, if non-nil, is called synchronously
// after each radius completes; ctx is checked for cancellation at that same
// per-radius boundary (spec.md §5's suspension points), returning
// ctx.Err() wrapped if it fires. Run never persists label volumes to disk;
// when opts.RetainLabelVolumes is set, it keeps a snappy-compressed copy of
// each iteration's labels in the returned Summary.
func Run(ctx context.Context, mask []bool, dims [3]int, opts Options, progressFn func(Progress)) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		ordered:  make([]Record, 0, len(opts.Radii)),
		retained: make(map[int]retainedVolume),
	}

	prevCount := -1
	for i, r := range opts.Radii {
		iterStart := time.Now()
		labels, err := splitter.Split(mask, dims, r)
		if err != nil {
			summary.Truncated = true
			summary.TotalTime = time.Since(start)
			return summary, errors.Wrapf(err, "sweep: splitting at radius %d", r)
		}

		volumes := metrics.Volumes(labels.Data)
		ratio, largest, total := metrics.LargestParticleRatio(volumes)

		contactResult, err := contact.Analyze(labels.Data, dims, opts.Connectivity, opts.GuardOptions)
		if err != nil {
			summary.Truncated = true
			summary.TotalTime = time.Since(start)
			return summary, errors.Wrapf(err, "sweep: contact analysis at radius %d", r)
		}
		meanInterior := meanOf(contactResult.InteriorContacts)

		rec := Record{
			Radius:                r,
			ParticleCount:         len(volumes),
			MeanInteriorContacts:  meanInterior,
			LargestParticleRatio:  ratio,
			InteriorParticleCount: contactResult.GuardStats.InteriorParticles,
			ExcludedParticleCount: contactResult.GuardStats.ExcludedParticles,
			TotalVolume:           total,
			LargestParticleVolume: largest,
			ProcessingTime:        time.Since(iterStart),
		}
		summary.ordered = append(summary.ordered, rec)
		summary.tree.Insert(&rec)

		if opts.RetainLabelVolumes {
			summary.retained[r] = compressLabels(labels.Data, dims)
		}

		log.Debug.Printf("sweep: radius %d: particles=%d lpr=%.4f mean_interior_contacts=%.2f",
			r, rec.ParticleCount, rec.LargestParticleRatio, rec.MeanInteriorContacts)

		if progressFn != nil {
			progressFn(Progress{Record: rec, Index: i, Total: len(opts.Radii)})
		}

		if err := ctx.Err(); err != nil {
			summary.Truncated = true
			summary.TotalTime = time.Since(start)
			return summary, errors.Wrap(err, "sweep: cancelled")
		}

		if opts.PlateauThreshold > 0 && prevCount >= 0 && prevCount > 0 {
			relChange := absFloat(float64(rec.ParticleCount-prevCount)) / float64(prevCount)
			if relChange < opts.PlateauThreshold {
				log.Debug.Printf("sweep: plateau reached at radius %d (relative change %.4f < %.4f)",
					r, relChange, opts.PlateauThreshold)
				summary.Truncated = true
				break
			}
		}
		prevCount = rec.ParticleCount
	}

	summary.TotalTime = time.Since(start)
	return summary, nil
}

func meanOf(counts map[int32]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum int
	for _, c := range counts {
		sum += c
	}
	return float64(sum) / float64(len(counts))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
