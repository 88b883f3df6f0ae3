package morph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsets6And26Counts(t *testing.T) {
	require.Len(t, Offsets6(), 6)
	require.Len(t, Offsets26(), 26)
}

func TestConnectivityRejectsUnsupported(t *testing.T) {
	_, err := Connectivity(18)
	require.ErrorIs(t, err, ErrUnsupportedConnectivity)
}

func TestBallIsSymmetricAndContainsCenterNeighbors(t *testing.T) {
	offs := Ball(2)
	require.NotEmpty(t, offs)
	seen := make(map[Offset]bool)
	for _, o := range offs {
		seen[o] = true
	}
	for _, o := range offs {
		require.Contains(t, seen, Offset{-o.DZ, -o.DY, -o.DX})
	}
	require.Contains(t, seen, Offset{0, 0, 1})
}

func TestBallRadiusZeroIsEmpty(t *testing.T) {
	require.Nil(t, Ball(0))
}
