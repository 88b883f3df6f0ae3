package morph

import (
	"testing"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestLabelSeparatesDisjointComponents(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 7}
	mask := []bool{true, true, false, false, true, true, true}
	labels, n, err := Label(mask, shape, 6)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, labels[0], labels[1])
	require.Equal(t, labels[4], labels[5])
	require.Equal(t, labels[5], labels[6])
	require.NotEqual(t, labels[0], labels[4])
	require.Equal(t, int32(0), labels[2])
}

func TestLabel26ConnectsDiagonalNeighbors(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 3, X: 3}
	mask := []bool{
		true, false, false,
		false, true, false,
		false, false, true,
	}
	_, n6, err := Label(mask, shape, 6)
	require.NoError(t, err)
	require.Equal(t, 3, n6) // corner-touching voxels are not face-adjacent

	labels26, n26, err := Label(mask, shape, 26)
	require.NoError(t, err)
	require.Equal(t, 1, n26) // but they are all 26-connected through shared corners
	require.Equal(t, labels26[0], labels26[shape.Index(0, 1, 1)])
	require.Equal(t, labels26[0], labels26[shape.Index(0, 2, 2)])
}

func TestLabelRejectsUnsupportedConnectivity(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 1}
	_, _, err := Label([]bool{true}, shape, 4)
	require.Error(t, err)
}

func TestCompactRenumbersDensely(t *testing.T) {
	labels := []int32{0, 5, 5, 0, 9, 9, 9}
	n := Compact(labels)
	require.Equal(t, 2, n)
	require.Equal(t, []int32{0, 1, 1, 0, 2, 2, 2}, labels)
}
