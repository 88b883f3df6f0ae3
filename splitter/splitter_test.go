package splitter

import (
	"testing"

	"github.com/grailbio/granulate/internal/grid"
	"github.com/grailbio/granulate/internal/morph"
	"github.com/stretchr/testify/require"
)

// addBox sets mask true within the inclusive [z0,z1]x[y0,y1]x[x0,x1] box.
// Rectangular regions give an exactly computable Euclidean distance
// transform (the margin to the nearest axis-aligned face), which is what
// makes the scenarios below checkable by hand instead of by running code.
func addBox(mask []bool, shape grid.Shape, z0, z1, y0, y1, x0, x1 int) {
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				mask[shape.Index(z, y, x)] = true
			}
		}
	}
}

func sphereMask(shape grid.Shape, centers [][3]int, radius int) []bool {
	mask := make([]bool, shape.Len())
	r2 := radius * radius
	for z := 0; z < shape.Z; z++ {
		for y := 0; y < shape.Y; y++ {
			for x := 0; x < shape.X; x++ {
				for _, c := range centers {
					dz, dy, dx := z-c[0], y-c[1], x-c[2]
					if dz*dz+dy*dy+dx*dx <= r2 {
						mask[shape.Index(z, y, x)] = true
						break
					}
				}
			}
		}
	}
	return mask
}

func countParticles(labels []int32) int {
	seen := make(map[int32]bool)
	for _, l := range labels {
		if l != 0 {
			seen[l] = true
		}
	}
	return len(seen)
}

func TestSplitInvalidRadius(t *testing.T) {
	_, err := Split([]bool{true}, [3]int{1, 1, 1}, 0)
	require.ErrorIs(t, err, ErrInvalidRadius)
}

func TestSplitShapeMismatch(t *testing.T) {
	_, err := Split([]bool{true, false}, [3]int{1, 1, 1}, 1)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSplitFallsBackToSingleComponentWhenErosionEmpty(t *testing.T) {
	dims := [3]int{1, 3, 3}
	mask := []bool{
		false, true, false,
		true, true, true,
		false, true, false,
	}
	labels, err := Split(mask, dims, 3) // radius far exceeds the shape, erosion wipes everything
	require.NoError(t, err)
	require.Equal(t, 1, countParticles(labels.Data))
	for i, v := range mask {
		if v {
			require.Equal(t, int32(1), labels.Data[i])
		}
	}
}

// TestSplitTwoNonTouchingBoxes mirrors spec scenario S1: two well-separated
// solid regions should split into exactly two particles across a range of
// erosion radii, regardless of r. Boxes make the Euclidean distance
// transform exactly computable by hand (the margin to the nearest face),
// unlike spheres.
func TestSplitTwoNonTouchingBoxes(t *testing.T) {
	shape := grid.Shape{Z: 49, Y: 29, X: 29}
	mask := make([]bool, shape.Len())
	addBox(mask, shape, 8, 20, 8, 20, 8, 20)  // box1: margin 7 at its center
	addBox(mask, shape, 29, 41, 8, 20, 8, 20) // box2: same size, 8 voxels of background between them
	dims := [3]int{shape.Z, shape.Y, shape.X}

	for r := 1; r <= 5; r++ {
		labels, err := Split(mask, dims, r)
		require.NoError(t, err)
		require.Equal(t, 2, countParticles(labels.Data))
	}
}

// TestSplitTwoTouchingBoxesSeparatesAtLargerRadius mirrors spec scenario S2:
// two bulbs joined by a narrow bridge look like one component at small
// erosion radius and separate into two once the bridge (margin 2) is eroded
// away while the bulb cores (margin 7) survive.
func TestSplitTwoTouchingBoxesSeparatesAtLargerRadius(t *testing.T) {
	shape := grid.Shape{Z: 47, Y: 29, X: 29}
	mask := make([]bool, shape.Len())
	addBox(mask, shape, 8, 20, 8, 20, 8, 20)    // box1
	addBox(mask, shape, 21, 25, 13, 15, 13, 15) // bridge, width 3 -> margin 2 at its center
	addBox(mask, shape, 26, 38, 8, 20, 8, 20)   // box2
	dims := [3]int{shape.Z, shape.Y, shape.X}

	labelsSmallR, err := Split(mask, dims, 1)
	require.NoError(t, err)
	require.Equal(t, 1, countParticles(labelsSmallR.Data)) // bridge (margin 2) survives r=1, keeps it merged

	labelsLargeR, err := Split(mask, dims, 5)
	require.NoError(t, err)
	require.Equal(t, 2, countParticles(labelsLargeR.Data)) // bridge fully erased by r=5, bulb cores (margin 7) remain
}

func TestLabelConnectedComponentsIgnoresSplitting(t *testing.T) {
	shape := grid.Shape{Z: 24, Y: 24, X: 24}
	centers := [][3]int{{9, 12, 12}, {15, 12, 12}} // overlapping, single blob under any connectivity
	mask := sphereMask(shape, centers, 6)
	labels, err := LabelConnectedComponents(mask, [3]int{shape.Z, shape.Y, shape.X}, 6)
	require.NoError(t, err)
	require.Equal(t, 1, countParticles(labels.Data))

	// Sanity check against morph.Label directly for the same connectivity.
	direct, n, err := morph.Label(mask, shape, 6)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, direct, labels.Data)
}
