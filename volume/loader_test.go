package volume

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func writeGray16TIFF(t *testing.T, path string, w, h int, fill uint16) {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: fill})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, tiff.Encode(f, img, nil))
}

func TestLoadFolderMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), DefaultLoadOptions())
	require.ErrorIs(t, err, ErrFolderMissing)
}

func TestLoadNoMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))
	_, _, err := Load(dir, DefaultLoadOptions())
	require.ErrorIs(t, err, ErrNoMatchingFiles)
}

func TestLoadOrdersSlicesNaturally(t *testing.T) {
	dir := t.TempDir()
	writeGray16TIFF(t, filepath.Join(dir, "slice_2.tif"), 2, 2, 200)
	writeGray16TIFF(t, filepath.Join(dir, "slice_10.tif"), 2, 2, 1000)
	writeGray16TIFF(t, filepath.Join(dir, "slice_1.tif"), 2, 2, 100)

	v, warn, err := Load(dir, DefaultLoadOptions())
	require.NoError(t, err)
	require.True(t, warn) // fewer than MinSlicesWarning slices
	require.Equal(t, [3]int{3, 2, 2}, v.Dims)
	require.Equal(t, uint16(100), v.Data[v.Index(0, 0, 0)])
	require.Equal(t, uint16(200), v.Data[v.Index(1, 0, 0)])
	require.Equal(t, uint16(1000), v.Data[v.Index(2, 0, 0)])
}

func TestLoadShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	writeGray16TIFF(t, filepath.Join(dir, "slice_1.tif"), 2, 2, 100)
	writeGray16TIFF(t, filepath.Join(dir, "slice_2.tif"), 3, 3, 100)

	_, _, err := Load(dir, DefaultLoadOptions())
	require.Error(t, err)
	var mismatch *ShapeMismatchError
	require.ErrorAs(t, err, &mismatch)
}
