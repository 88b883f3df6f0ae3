package orchestrator

import (
	"strconv"

	"github.com/grailbio/granulate/internal/outputstore"
	"github.com/pkg/errors"
)

// summaryColumns is the exact column list spec.md §4.8/§6 names for the
// tabular sweep report, radius-ascending.
var summaryColumns = []string{
	"radius", "particle_count", "mean_contacts", "largest_particle_ratio",
	"interior_particle_count", "excluded_particle_count", "processing_time",
	"total_volume", "largest_particle_volume",
}

const (
	tabularFileName = "optimization_results.csv"
)

func labelFileName(radius int) string {
	return "labels_r" + strconv.Itoa(radius) + ".npy"
}

// persist writes result's sweep summary and r*'s label volume via an
// outputstore.Store resolved from result's configured output location. No
// other label volume is written, matching spec.md §4.8's single-survivor
// rule.
func persist(opts Options, result *Result) error {
	store, err := outputstore.New(opts.OutputDir)
	if err != nil {
		return err
	}

	rows := make([][]string, len(result.Records))
	for i, r := range result.Records {
		rows[i] = []string{
			strconv.Itoa(r.Radius),
			strconv.Itoa(r.ParticleCount),
			strconv.FormatFloat(r.MeanInteriorContacts, 'f', -1, 64),
			strconv.FormatFloat(r.LargestParticleRatio, 'f', -1, 64),
			strconv.Itoa(r.InteriorParticleCount),
			strconv.Itoa(r.ExcludedParticleCount),
			r.ProcessingTime.String(),
			strconv.Itoa(r.TotalVolume),
			strconv.Itoa(r.LargestParticleVolume),
		}
	}
	if err := store.WriteTabular(tabularFileName, summaryColumns, rows); err != nil {
		return err
	}

	labels, dims, ok, err := result.Summary.LabelsAt(result.BestRadius)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("orchestrator: no retained label volume for chosen radius %d", result.BestRadius)
	}
	return store.WriteVolume(labelFileName(result.BestRadius), labels, dims)
}
