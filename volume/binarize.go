package volume

import (
	"github.com/grailbio/granulate/internal/grid"
	"github.com/grailbio/granulate/internal/morph"
	"github.com/grailbio/granulate/internal/otsu"
	"github.com/pkg/errors"
)

// The ROI closing kernel size (spec.md §4.2 step 2: "morphologically close
// with a 5x5 square").
const roiClosingSquare = 5

// Binarize implements C2: two-stage Otsu (or Triangle) thresholding with
// optional ROI restriction, automatic/forced polarity, and morphological
// cleanup. opts.CLAHEEnabled is copied into BinarizationInfo, but Binarize
// applies no contrast enhancement: both thresholds are always computed on
// the raw integer samples.
func Binarize(v Volume, opts BinarizeOptions) (Binary, BinarizationInfo, error) {
	shape := grid.Shape{Z: v.Dims[0], Y: v.Dims[1], X: v.Dims[2]}
	sourceDType := "uint16"
	if v.BitDepth <= 8 {
		sourceDType = "uint8"
	}
	thresholdMethod := opts.ThresholdMethod
	if thresholdMethod == "" {
		thresholdMethod = ThresholdOtsu
	}
	info := BinarizationInfo{
		NumSlices:       v.Dims[0],
		Shape:           v.Dims,
		SourceDType:     sourceDType,
		Polarity:        opts.Polarity,
		ClosingRadius:   opts.ClosingRadius,
		MinObjectSize:   opts.MinObjectSize,
		ThresholdMethod: thresholdMethod,
		CLAHEEnabled:    opts.CLAHEEnabled,
	}

	var roi []bool
	roiActive := opts.ROIMode == ROIPerSliceLargestCC
	if roiActive {
		roi = deriveROI(v, shape)
		for _, r := range roi {
			if r {
				info.ROIVoxels++
			}
		}
	}

	hist := otsu.Build(v.Data, true)
	t1 := otsu.Otsu(hist)
	info.Stage1Threshold = t1

	stage2Values := stage2Voxels(v, shape, roi, roiActive, t1)
	var t2 int
	if len(stage2Values) == 0 {
		t2 = t1
	} else {
		h2 := otsu.Build(stage2Values, false)
		switch opts.ThresholdMethod {
		case ThresholdTriangle:
			t2 = otsu.Triangle(h2)
		case ThresholdOtsu, "":
			t2 = otsu.Otsu(h2)
		default:
			return Binary{}, info, errors.Wrapf(ErrUnsupportedPolarity, "threshold method %q", opts.ThresholdMethod)
		}
	}
	info.Stage2Threshold = t2

	mask, err := applyPolarity(v, roi, roiActive, t2, opts.Polarity, &info)
	if err != nil {
		return Binary{}, info, err
	}

	if opts.ClosingRadius > 0 {
		mask = morph.CloseBall(mask, shape, opts.ClosingRadius)
	}
	if opts.MinObjectSize > 0 {
		mask, err = morph.RemoveSmallObjects(mask, shape, 6, opts.MinObjectSize)
		if err != nil {
			return Binary{}, info, errors.Wrap(err, "volume: removing small objects")
		}
	}

	for _, fg := range mask {
		if fg {
			info.ForegroundVoxels++
		}
	}
	info.BackgroundVoxels = shape.Len() - info.ForegroundVoxels
	info.EmptyForeground = info.ForegroundVoxels == 0
	info.ForegroundRatio = float64(info.ForegroundVoxels) / float64(shape.Len())

	return Binary{Dims: v.Dims, Data: mask}, info, nil
}

// deriveROI implements spec.md §4.2 step 2: per-slice foreground mask,
// square closing, hole-filling, largest-component retention, unioned
// across slices.
func deriveROI(v Volume, shape grid.Shape) []bool {
	roi := make([]bool, shape.Len())
	h, w := shape.Y, shape.X
	slice := make([]bool, h*w)
	for z := 0; z < shape.Z; z++ {
		base := z * h * w
		for i := 0; i < h*w; i++ {
			slice[i] = v.Data[base+i] > 0
		}
		closed := morph.CloseSquare2D(slice, h, w, roiClosingSquare)
		filled := morph.FillHoles2D(closed, h, w)
		largest := morph.LargestComponent2D(filled, h, w)
		copy(roi[base:base+h*w], largest)
	}
	return roi
}

func stage2Voxels(v Volume, shape grid.Shape, roi []bool, roiActive bool, t1 int) []uint16 {
	var out []uint16
	for i, val := range v.Data {
		if roiActive && !roi[i] {
			continue
		}
		if int(val) > t1 {
			out = append(out, val)
		}
	}
	return out
}

func applyPolarity(v Volume, roi []bool, roiActive bool, t2 int, polarity Polarity, info *BinarizationInfo) ([]bool, error) {
	n := len(v.Data)
	mask := make([]bool, n)

	below, above := 0, 0
	var sumBelow, sumAbove float64
	for i, val := range v.Data {
		if roiActive && !roi[i] {
			continue
		}
		if int(val) <= t2 {
			below++
			sumBelow += float64(val)
		} else {
			above++
			sumAbove += float64(val)
		}
	}
	if below > 0 {
		info.MeanBelow = sumBelow / float64(below)
	}
	if above > 0 {
		info.MeanAbove = sumAbove / float64(above)
	}

	resolved := polarity
	if polarity == PolarityAuto {
		if below <= above {
			resolved = PolarityDark
		} else {
			resolved = PolarityBright
		}
	}
	info.Polarity = resolved

	switch resolved {
	case PolarityBright:
		for i, val := range v.Data {
			mask[i] = int(val) > t2
		}
	case PolarityDark:
		for i, val := range v.Data {
			mask[i] = int(val) <= t2
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedPolarity, "%q", polarity)
	}

	if roiActive {
		for i := range mask {
			mask[i] = mask[i] && roi[i]
		}
	}
	return mask, nil
}
