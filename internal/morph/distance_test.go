package morph

import (
	"testing"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestEuclideanDistanceTransformSingleSlab(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 13}
	mask := make([]bool, shape.Len())
	for i := 1; i < shape.X-1; i++ {
		mask[i] = true
	}
	dist := EuclideanDistanceTransform(mask, shape)
	require.Equal(t, float32(6), dist[6]) // center voxel, background bookends at 0 and 12
}

func TestEuclideanDistanceTransformBackgroundIsZero(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 3, X: 3}
	mask := []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	}
	dist := EuclideanDistanceTransform(mask, shape)
	for i, v := range mask {
		if !v {
			require.Equal(t, float32(0), dist[i])
		}
	}
	require.InDelta(t, 1.0, dist[shape.Index(0, 1, 1)], 1e-5)
}

func TestManhattanDistanceTransformMatchesGridPath(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 5}
	mask := []bool{false, true, true, true, false}
	dist := ManhattanDistanceTransform(mask, shape)
	require.Equal(t, float32(1), dist[1])
	require.Equal(t, float32(2), dist[2])
	require.Equal(t, float32(1), dist[3])
}

func TestChooseDistanceTransformGate(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 5}
	mask := []bool{false, true, true, true, false}
	_, usedEuclidean := ChooseDistanceTransform(mask, shape)
	require.True(t, usedEuclidean)
}
