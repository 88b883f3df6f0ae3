package volume

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/granulate/internal/natsort"
	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

// MinSlicesWarning is the slice count below which Load reports a warning
// (spec.md §4.1: "fewer than ~50 slices SHOULD emit a warning event").
const MinSlicesWarning = 50

// LoadOptions configures Load.
type LoadOptions struct {
	// Extensions accepted, case-insensitive, with leading dot (default
	// [".tif", ".tiff"] when empty).
	Extensions []string
}

// DefaultLoadOptions returns the TIFF-only default.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Extensions: []string{".tif", ".tiff"}}
}

// Load reads a folder of grayscale slice files into a single 3D volume (C1).
// Files are scanned non-recursively and ordered naturally (numeric runs
// compared as integers, the remainder case-insensitive). It returns a
// warning bool (true when the stack has fewer than MinSlicesWarning slices)
// alongside the error.
func Load(folder string, opts LoadOptions) (Volume, bool, error) {
	if len(opts.Extensions) == 0 {
		opts = DefaultLoadOptions()
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return Volume{}, false, ErrFolderMissing
		}
		return Volume{}, false, errors.Wrapf(err, "volume: reading folder %s", folder)
	}

	accept := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		accept[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool, len(entries))
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !accept[ext] {
			continue
		}
		fold := strings.ToLower(name)
		if seen[fold] {
			continue // dedup case-insensitive duplicates
		}
		seen[fold] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return Volume{}, false, ErrNoMatchingFiles
	}
	natsort.Strings(names)

	var (
		v        Volume
		expectedY, expectedX int
	)
	for z, name := range names {
		path := filepath.Join(folder, name)
		img, bitDepth, err := decodeSlice(path)
		if err != nil {
			return Volume{}, false, &UnreadableSliceError{Path: path, Err: err}
		}
		bounds := img.Bounds()
		y, x := bounds.Dy(), bounds.Dx()
		if z == 0 {
			expectedY, expectedX = y, x
			v.Dims = [3]int{len(names), y, x}
			v.Data = make([]uint16, v.Len())
			v.BitDepth = bitDepth
		} else if y != expectedY || x != expectedX {
			return Volume{}, false, &ShapeMismatchError{
				Path: path, ExpectedY: expectedY, ExpectedX: expectedX, ActualY: y, ActualX: x,
			}
		}
		base := z * expectedY * expectedX
		for row := 0; row < y; row++ {
			for col := 0; col < x; col++ {
				v.Data[base+row*x+col] = grayValue(img, bounds.Min.X+col, bounds.Min.Y+row)
			}
		}
	}
	return v, len(names) < MinSlicesWarning, nil
}

func decodeSlice(path string) (image.Image, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		return nil, 0, err
	}
	bitDepth := 16
	if _, ok := img.(*image.Gray); ok {
		bitDepth = 8
	}
	return img, bitDepth, nil
}

func grayValue(img image.Image, x, y int) uint16 {
	switch g := img.(type) {
	case *image.Gray16:
		return g.Gray16At(x, y).Y
	case *image.Gray:
		return uint16(g.GrayAt(x, y).Y)
	default:
		r, _, _, _ := img.At(x, y).RGBA()
		return uint16(r)
	}
}
