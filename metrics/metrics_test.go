package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolumesExcludesBackground(t *testing.T) {
	labels := []int32{0, 1, 1, 2, 2, 2, 0}
	vols := Volumes(labels)
	require.Equal(t, map[int32]int{1: 2, 2: 3}, vols)
}

func TestLargestParticleRatioEmpty(t *testing.T) {
	ratio, largest, total := LargestParticleRatio(map[int32]int{})
	require.Equal(t, 0.0, ratio)
	require.Equal(t, 0, largest)
	require.Equal(t, 0, total)
}

func TestLargestParticleRatioSingleDominant(t *testing.T) {
	ratio, largest, total := LargestParticleRatio(map[int32]int{1: 90, 2: 10})
	require.InDelta(t, 0.9, ratio, 1e-9)
	require.Equal(t, 90, largest)
	require.Equal(t, 100, total)
}

func TestTopKShareClampsToParticleCount(t *testing.T) {
	vols := map[int32]int{1: 50, 2: 30, 3: 20}
	require.InDelta(t, 0.5, TopKShare(vols, 1), 1e-9)
	require.InDelta(t, 1.0, TopKShare(vols, 10), 1e-9)
}

func TestHHIUniformVsDominant(t *testing.T) {
	uniform := HHI(map[int32]int{1: 25, 2: 25, 3: 25, 4: 25})
	require.InDelta(t, 0.25, uniform, 1e-9)
	dominant := HHI(map[int32]int{1: 97, 2: 1, 3: 1, 4: 1})
	require.Greater(t, dominant, uniform)
	require.LessOrEqual(t, dominant, 1.0)
}

func TestGiniUniformIsZero(t *testing.T) {
	require.Equal(t, 0.0, Gini(map[int32]int{1: 10, 2: 10, 3: 10}))
}

func TestGiniExtremeInequalityApproachesOne(t *testing.T) {
	vols := map[int32]int{}
	for i := int32(1); i <= 100; i++ {
		vols[i] = 1
	}
	vols[101] = 10000
	g := Gini(vols)
	require.Greater(t, g, 0.8)
	require.LessOrEqual(t, g, 1.0)
}

func TestVariationOfInformationSelfIsZero(t *testing.T) {
	labels := []int32{0, 1, 1, 2, 2, 3, 0, 1}
	require.InDelta(t, 0.0, VariationOfInformation(labels, labels, true), 1e-9)
}

func TestVariationOfInformationSymmetric(t *testing.T) {
	a := []int32{1, 1, 2, 2, 0, 0}
	b := []int32{1, 2, 2, 2, 0, 0}
	require.InDelta(t, VariationOfInformation(a, b, true), VariationOfInformation(b, a, true), 1e-12)
}

func TestVariationOfInformationNonNegative(t *testing.T) {
	a := []int32{1, 2, 3, 1, 2, 3}
	b := []int32{1, 1, 1, 2, 2, 2}
	require.GreaterOrEqual(t, VariationOfInformation(a, b, true), 0.0)
}

func TestDice2DSelfAndDisjoint(t *testing.T) {
	a := []bool{true, true, false, false}
	require.Equal(t, 1.0, Dice2D(a, a))
	b := []bool{false, false, true, true}
	require.Equal(t, 0.0, Dice2D(a, b))
}

func TestMeanSliceDiceSkipsMissingKeys(t *testing.T) {
	gt := map[int][]bool{
		0: {true, true, false},
		1: {true, false, false},
	}
	pred := map[int][]bool{
		0: {true, true, false}, // identical, Dice=1
	}
	require.InDelta(t, 1.0, MeanSliceDice(gt, pred), 1e-9)
}
