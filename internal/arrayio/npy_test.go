package arrayio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadVolumeRoundTrip(t *testing.T) {
	dims := [3]int{2, 3, 4}
	data := make([]int32, 24)
	for i := range data {
		data[i] = int32(i - 5)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVolume(&buf, data, dims))

	got, gotDims, err := ReadVolume(&buf)
	require.NoError(t, err)
	require.Equal(t, dims, gotDims)
	require.Equal(t, data, got)
}

func TestWriteVolumeRejectsDimsMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteVolume(&buf, make([]int32, 5), [3]int{2, 2, 2})
	require.Error(t, err)
}

func TestWriteReadVolumeGzipRoundTrip(t *testing.T) {
	dims := [3]int{1, 2, 5}
	data := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	var buf bytes.Buffer
	require.NoError(t, WriteVolumeGzip(&buf, data, dims))

	got, gotDims, err := ReadVolumeGzip(&buf)
	require.NoError(t, err)
	require.Equal(t, dims, gotDims)
	require.Equal(t, data, got)
}

func TestReadVolumeRejectsBadMagic(t *testing.T) {
	_, _, err := ReadVolume(bytes.NewReader([]byte("not an npy file")))
	require.Error(t, err)
}
