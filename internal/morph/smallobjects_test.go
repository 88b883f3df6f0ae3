package morph

import (
	"testing"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/stretchr/testify/require"
)

func TestRemoveSmallObjectsClearsBelowThreshold(t *testing.T) {
	shape := grid.Shape{Z: 1, Y: 1, X: 9}
	mask := []bool{
		true, false,
		true, true, true, true, true,
		false, true,
	}
	out, err := RemoveSmallObjects(mask, shape, 6, 3)
	require.NoError(t, err)
	require.False(t, out[0])
	require.False(t, out[8])
	for i := 2; i <= 6; i++ {
		require.True(t, out[i])
	}
}
