package morph

import (
	"testing"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/stretchr/testify/require"
)

// TestWatershedSplitsTwoTouchingBlobs reproduces the textbook "two touching
// discs" splitting scenario (spec.md §8 scenario S1): a synthetic distance
// field with two separated peaks and a shallow saddle between them should
// divide its mask along that saddle, one label per peak.
func TestWatershedSplitsTwoTouchingBlobs(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 11}
	mask := make([]bool, shape.Len())
	for i := range mask {
		mask[i] = true
	}
	// Synthetic -shaped distance field: peaks at x=2 and x=8, saddle at x=5.
	dist := []float32{1, 2, 3, 2, 1, 0.5, 1, 2, 3, 2, 1}

	seeds := make([]int32, shape.Len())
	seeds[2] = 1
	seeds[8] = 2

	labels := Watershed(dist, mask, seeds, shape)
	require.Equal(t, int32(1), labels[0])
	require.Equal(t, int32(1), labels[2])
	require.Equal(t, int32(2), labels[8])
	require.Equal(t, int32(2), labels[10])
	require.NotEqual(t, labels[4], labels[6])
}

func TestWatershedLeavesBackgroundUnlabeled(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 5}
	mask := []bool{false, true, true, true, false}
	dist := EuclideanDistanceTransform(mask, shape)
	seeds := make([]int32, shape.Len())
	seeds[2] = 1
	labels := Watershed(dist, mask, seeds, shape)
	require.Equal(t, int32(0), labels[0])
	require.Equal(t, int32(0), labels[4])
	require.Equal(t, int32(1), labels[1])
	require.Equal(t, int32(1), labels[3])
}
