// Package volume implements the volume loader and binarizer: decoding a
// folder of grayscale CT slices into a dense 3D array (C1) and reducing that
// array to a boolean particle/background mask (C2).
package volume

import "github.com/pkg/errors"

// Volume is a dense row-major (Z,Y,X) grayscale stack. Source bit depth is
// preserved in BitDepth; Data always holds widened uint16 samples so
// internal/otsu's histogram and threshold search run over one arithmetic
// type regardless of whether the slices were 8-bit or 16-bit TIFFs.
type Volume struct {
	Dims     [3]int
	Data     []uint16
	BitDepth int
}

// Len returns the total voxel count.
func (v Volume) Len() int { return v.Dims[0] * v.Dims[1] * v.Dims[2] }

// Index returns the flat offset of voxel (z,y,x).
func (v Volume) Index(z, y, x int) int {
	return (z*v.Dims[1]+y)*v.Dims[2] + x
}

// Binary is a dense boolean particle/background mask produced by Binarize.
type Binary struct {
	Dims [3]int
	Data []bool
}

// Len returns the total voxel count.
func (b Binary) Len() int { return b.Dims[0] * b.Dims[1] * b.Dims[2] }

// Polarity selects which side of the stage-2 threshold is foreground.
type Polarity string

const (
	PolarityAuto   Polarity = "auto"
	PolarityBright Polarity = "bright"
	PolarityDark   Polarity = "dark"
)

// ThresholdMethod selects the stage-2 threshold search.
type ThresholdMethod string

const (
	ThresholdOtsu     ThresholdMethod = "otsu"
	ThresholdTriangle ThresholdMethod = "triangle"
)

// ROIMode selects how the region of interest is derived before thresholding.
type ROIMode string

const (
	ROINone              ROIMode = "none"
	ROIPerSliceLargestCC ROIMode = "per-slice-largest-component"
)

// BinarizeOptions configures Binarize.
type BinarizeOptions struct {
	MinObjectSize   int
	ClosingRadius   int
	Polarity        Polarity
	ThresholdMethod ThresholdMethod
	CLAHEEnabled    bool
	ROIMode         ROIMode
}

// DefaultBinarizeOptions returns the conservative defaults: no ROI
// restriction, auto polarity, Otsu thresholding, CLAHE off, no cleanup.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{
		Polarity:        PolarityAuto,
		ThresholdMethod: ThresholdOtsu,
		ROIMode:         ROINone,
	}
}

// BinarizationInfo records the thresholds, shape/dtype provenance, and
// voxel statistics Binarize derived, for diagnostics (the Orchestrator
// returns it in Result.BinarizeInfo; the tabular report does not include
// it). Field set matches spec.md §3's BinarizationInfo contract
// (num_slices, shape, source_dtype, threshold_stage1, threshold_stage2,
// polarity, foreground_ratio, mean_below, mean_above, closing_radius,
// min_object_size, threshold_method, clahe_enabled), plus a few additional
// voxel counts this implementation also tracks.
type BinarizationInfo struct {
	NumSlices       int
	Shape           [3]int
	SourceDType     string
	Stage1Threshold int
	Stage2Threshold int
	Polarity        Polarity
	ForegroundRatio float64
	MeanBelow       float64
	MeanAbove       float64
	ClosingRadius   int
	MinObjectSize   int
	ThresholdMethod ThresholdMethod
	CLAHEEnabled    bool

	ForegroundVoxels int
	BackgroundVoxels int
	EmptyForeground  bool
	ROIVoxels        int
}

var (
	ErrFolderMissing       = errors.New("volume: folder does not exist")
	ErrNoMatchingFiles     = errors.New("volume: no files matched the accepted extensions")
	ErrUnsupportedPolarity = errors.New("volume: unsupported polarity")
)

// UnreadableSliceError reports a slice file that could not be decoded.
type UnreadableSliceError struct {
	Path string
	Err  error
}

func (e *UnreadableSliceError) Error() string {
	return errors.Wrapf(e.Err, "volume: unreadable slice %s", e.Path).Error()
}

func (e *UnreadableSliceError) Unwrap() error { return e.Err }

// ShapeMismatchError reports a slice whose (Y,X) extent disagrees with the
// shape established by the first slice in the stack.
type ShapeMismatchError struct {
	Path             string
	ExpectedY, ExpectedX int
	ActualY, ActualX     int
}

func (e *ShapeMismatchError) Error() string {
	return errors.Errorf("volume: shape mismatch at %s: expected (%d,%d), got (%d,%d)",
		e.Path, e.ExpectedY, e.ExpectedX, e.ActualY, e.ActualX).Error()
}
