package volume

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// threeTierVolume builds a volume with a large low background cluster and
// two progressively brighter particle clusters, so both the stage-1 and
// stage-2 Otsu splits have more than one populated level to separate.
func threeTierVolume(z, y, x, backgroundCount, midCount int) Volume {
	v := Volume{Dims: [3]int{z, y, x}, Data: make([]uint16, z*y*x), BitDepth: 16}
	for i := range v.Data {
		switch {
		case i < backgroundCount:
			v.Data[i] = 50
		case i < backgroundCount+midCount:
			v.Data[i] = 2000
		default:
			v.Data[i] = 4000
		}
	}
	return v
}

func TestBinarizeBrightPolarityIsolatesHighCluster(t *testing.T) {
	v := threeTierVolume(2, 4, 4, 20, 6)
	opts := DefaultBinarizeOptions()
	opts.Polarity = PolarityBright
	bin, info, err := Binarize(v, opts)
	require.NoError(t, err)
	require.Equal(t, v.Dims, bin.Dims)
	require.False(t, info.EmptyForeground)
	for i, val := range v.Data {
		require.Equal(t, val == 4000, bin.Data[i])
	}
}

func TestBinarizeAutoPolarityPicksMinorityPhase(t *testing.T) {
	v := threeTierVolume(2, 4, 4, 20, 6)
	opts := DefaultBinarizeOptions()
	bin, info, err := Binarize(v, opts)
	require.NoError(t, err)
	count := 0
	for _, fg := range bin.Data {
		if fg {
			count++
		}
	}
	require.Equal(t, 6, count)
	require.Equal(t, PolarityBright, info.Polarity)
}

func TestBinarizeUnsupportedPolarity(t *testing.T) {
	v := threeTierVolume(1, 2, 2, 2, 1)
	opts := DefaultBinarizeOptions()
	opts.Polarity = "sideways"
	_, _, err := Binarize(v, opts)
	require.Error(t, err)
}

func TestBinarizeMinObjectSizeRemovesSpeckle(t *testing.T) {
	v := Volume{Dims: [3]int{1, 1, 9}, Data: make([]uint16, 9), BitDepth: 8}
	// One isolated bright voxel, and a run of five bright voxels.
	v.Data[0] = 200
	for i := 4; i < 9; i++ {
		v.Data[i] = 200
	}
	opts := DefaultBinarizeOptions()
	opts.Polarity = PolarityBright
	opts.MinObjectSize = 3
	bin, _, err := Binarize(v, opts)
	require.NoError(t, err)
	require.False(t, bin.Data[0])
	for i := 4; i < 9; i++ {
		require.True(t, bin.Data[i])
	}
}
