package otsu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOtsuSeparatesTwoClusters(t *testing.T) {
	values := make([]uint16, 0, 2000)
	for i := 0; i < 1000; i++ {
		values = append(values, 100)
	}
	for i := 0; i < 1000; i++ {
		values = append(values, 5000)
	}
	h := Build(values, false)
	th := Otsu(h)
	// Values <= th form the lower class, so any th in [100, 5000) separates
	// the clusters; the first maximizing level is 100 itself.
	require.GreaterOrEqual(t, th, 100)
	require.Less(t, th, 5000)
}

func TestOtsuSkipZero(t *testing.T) {
	values := []uint16{0, 0, 0, 0, 10, 10, 200, 200}
	withZero := Build(values, false)
	withoutZero := Build(values, true)
	require.Equal(t, uint64(8), withZero.Total())
	require.Equal(t, uint64(4), withoutZero.Total())
}

func TestTriangleMonotoneTail(t *testing.T) {
	values := make([]uint16, 0, 1100)
	for i := 0; i < 1000; i++ {
		values = append(values, 50)
	}
	for i := 0; i < 100; i++ {
		values = append(values, uint16(200+i))
	}
	h := Build(values, false)
	th := Triangle(h)
	require.Greater(t, th, 50)
}

func TestCLAHESliceNormalizesToUnitRange(t *testing.T) {
	h, w := 16, 16
	data := make([]uint16, h*w)
	for i := range data {
		data[i] = uint16(i * 100)
	}
	out := CLAHESlice(data, h, w, DefaultCLAHEOptions())
	require.Len(t, out, h*w)
	for _, v := range out {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
}
