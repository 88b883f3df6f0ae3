// Package orchestrator implements C8: the top-level pipeline driver. It
// invokes the volume loader, binarizer, radius sweeper and selector in
// sequence, emits a typed progress event stream, and persists the chosen
// label volume and the tabular sweep summary.
package orchestrator

import (
	"context"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/granulate/contact"
	"github.com/grailbio/granulate/selector"
	"github.com/grailbio/granulate/sweep"
	"github.com/grailbio/granulate/volume"
	"github.com/pkg/errors"
)

// Stage names the three pipeline phases reported to the progress sink.
type Stage string

const (
	StageInitialization Stage = "initialization"
	StageOptimization   Stage = "optimization"
	StageFinalization   Stage = "finalization"
)

// EventKind tags which field of Event is populated. Event is a tagged
// struct (not an interface hierarchy): Kind takes one of the fixed set of
// values below, and a caller switches over it.
type EventKind int

const (
	EventStageChanged EventKind = iota
	EventSweepRecord
	EventProgressText
	EventProgressPercentage
	EventWarning
	EventError
	EventCompleted
)

// Event is one message on the progress stream (spec.md §6).
type Event struct {
	Kind       EventKind
	Stage      Stage
	Record     sweep.Record
	Text       string
	Percentage int
	Err        error
	Result     *Result
}

// Options configures a full pipeline run.
type Options struct {
	LoadOptions      volume.LoadOptions
	BinarizeOptions  volume.BinarizeOptions
	Radii            []int
	Connectivity     int
	GuardOptions     contact.GuardOptions
	Thresholds       selector.Thresholds
	PlateauThreshold float64
	TargetContacts   float64
	// OutputDir, if non-empty, causes Run to persist the sweep summary and
	// the r* label volume via internal/outputstore before returning.
	OutputDir string
}

// DefaultOptions mirrors spec.md §6's configuration defaults: radii
// 1..10, connectivity 6, tau_ratio 0.03, contacts range [5,9], no
// smoothing, auto polarity, Otsu, CLAHE off, min_object_size 100,
// closing_radius 0.
func DefaultOptions() Options {
	radii := make([]int, 10)
	for i := range radii {
		radii[i] = i + 1
	}
	binarize := volume.DefaultBinarizeOptions()
	binarize.MinObjectSize = 100
	return Options{
		LoadOptions:      volume.DefaultLoadOptions(),
		BinarizeOptions:  binarize,
		Radii:            radii,
		Connectivity:     6,
		GuardOptions:     contact.DefaultGuardOptions(),
		Thresholds:       selector.DefaultThresholds(),
		PlateauThreshold: sweep.DefaultPlateauThreshold,
		TargetContacts:   6,
	}
}

// Result is the SweepSummary produced by a completed Run: the sweep's
// per-radius records, the Selector's decision, and the retained summary
// used for persistence and diagnostic re-querying (e.g. the Pareto
// fallback).
type Result struct {
	Records        []sweep.Record
	BestRadius     int
	SelectorReason selector.Reason
	Thresholds     selector.Thresholds
	TotalTime      time.Duration
	Truncated      bool
	BinarizeInfo   volume.BinarizationInfo
	Summary        *sweep.Summary
}

// Run drives C1->C2->C6->C7 in sequence over the TIFF stack in folder,
// emitting progress events to events (if non-nil) at stage, per-radius and
// completion boundaries. ctx cancellation is observed at each per-radius
// boundary inside the sweep and aborts the run cleanly, returning a
// non-nil error with whatever records completed still present in the
// returned (possibly nil) Result.
func Run(ctx context.Context, folder string, opts Options, events chan<- Event) (*Result, error) {
	emit := func(e Event) {
		if events != nil {
			events <- e
		}
	}

	emit(Event{Kind: EventStageChanged, Stage: StageInitialization})
	emit(Event{Kind: EventProgressText, Text: "loading volume from " + folder})

	v, lowSliceCount, err := volume.Load(folder, opts.LoadOptions)
	if err != nil {
		wrapped := errors.Wrap(err, "orchestrator: loading volume")
		emit(Event{Kind: EventError, Err: wrapped})
		return nil, wrapped
	}
	if lowSliceCount {
		emit(Event{Kind: EventWarning, Text: "fewer than the recommended minimum slice count"})
		log.Debug.Printf("orchestrator: volume has fewer than %d slices", volume.MinSlicesWarning)
	}

	binary, info, err := volume.Binarize(v, opts.BinarizeOptions)
	if err != nil {
		wrapped := errors.Wrap(err, "orchestrator: binarizing volume")
		emit(Event{Kind: EventError, Err: wrapped})
		return nil, wrapped
	}
	emit(Event{Kind: EventProgressPercentage, Percentage: 10})

	if err := ctx.Err(); err != nil {
		wrapped := errors.Wrap(err, "orchestrator: cancelled before optimization stage")
		emit(Event{Kind: EventError, Err: wrapped})
		return nil, wrapped
	}

	emit(Event{Kind: EventStageChanged, Stage: StageOptimization})

	sweepOpts := sweep.Options{
		Radii:              opts.Radii,
		Connectivity:       opts.Connectivity,
		GuardOptions:       opts.GuardOptions,
		PlateauThreshold:   opts.PlateauThreshold,
		RetainLabelVolumes: true,
	}
	summary, err := sweep.Run(ctx, binary.Data, binary.Dims, sweepOpts, func(p sweep.Progress) {
		emit(Event{Kind: EventSweepRecord, Record: p.Record})
		pct := 10 + int(80*float64(p.Index+1)/float64(p.Total))
		emit(Event{Kind: EventProgressPercentage, Percentage: pct})
	})
	if err != nil {
		wrapped := errors.Wrap(err, "orchestrator: sweep failed")
		emit(Event{Kind: EventError, Err: wrapped})
		if summary != nil && len(summary.Records()) > 0 {
			partial := &Result{Records: summary.Records(), TotalTime: summary.TotalTime, Truncated: true, BinarizeInfo: info, Summary: summary}
			return partial, wrapped
		}
		return nil, wrapped
	}

	emit(Event{Kind: EventStageChanged, Stage: StageFinalization})

	decision := selector.ByConstraints(summary.Records(), opts.Thresholds)

	result := &Result{
		Records:        summary.Records(),
		BestRadius:     decision.Radius,
		SelectorReason: decision.Reason,
		Thresholds:     decision.Thresholds,
		TotalTime:      summary.TotalTime,
		Truncated:      summary.Truncated,
		BinarizeInfo:   info,
		Summary:        summary,
	}

	if opts.OutputDir != "" {
		if err := persist(opts, result); err != nil {
			wrapped := errors.Wrap(err, "orchestrator: persisting outputs")
			emit(Event{Kind: EventError, Err: wrapped})
			return result, wrapped
		}
	}

	emit(Event{Kind: EventProgressPercentage, Percentage: 100})
	emit(Event{Kind: EventCompleted, Result: result})
	return result, nil
}
