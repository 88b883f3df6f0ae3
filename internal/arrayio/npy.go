// Package arrayio reads and writes dense 3D int32 arrays in the NumPy
// `.npy` v1.0 layout: an 8-byte magic+version prefix, a little-endian
// header-length field, an ASCII Python-dict-literal header describing
// dtype/fortran_order/shape, then the raw row-major array bytes.
package arrayio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var magic = []byte("\x93NUMPY")

const (
	versionMajor = 1
	versionMinor = 0
)

// dtype is the little-endian signed 32-bit integer dtype descriptor used
// for every array this package writes.
const dtype = "<i4"

// WriteVolume writes a dense row-major int32 3D array in `.npy` v1.0
// format to w. dims is (Z,Y,X); len(data) must equal dims[0]*dims[1]*dims[2].
func WriteVolume(w io.Writer, data []int32, dims [3]int) error {
	if want := dims[0] * dims[1] * dims[2]; want != len(data) {
		return errors.Errorf("arrayio: dims %v imply %d elements, got %d", dims, want, len(data))
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		dtype, dims[0], dims[1], dims[2])
	// Pad the header so magic+version+headerLen+header is a multiple of 64,
	// and terminate with a newline, per the npy v1.0 spec.
	prefixLen := len(magic) + 2 + 2
	total := prefixLen + len(header) + 1
	pad := (64 - total%64) % 64
	header = header + strings.Repeat(" ", pad) + "\n"

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic); err != nil {
		return errors.Wrap(err, "arrayio: writing magic")
	}
	if err := bw.WriteByte(versionMajor); err != nil {
		return errors.Wrap(err, "arrayio: writing version")
	}
	if err := bw.WriteByte(versionMinor); err != nil {
		return errors.Wrap(err, "arrayio: writing version")
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(header)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "arrayio: writing header length")
	}
	if _, err := bw.WriteString(header); err != nil {
		return errors.Wrap(err, "arrayio: writing header")
	}
	if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
		return errors.Wrap(err, "arrayio: writing array body")
	}
	return bw.Flush()
}

// WriteVolumeGzip writes the volume through a gzip compressor at default
// compression level.
func WriteVolumeGzip(w io.Writer, data []int32, dims [3]int) error {
	gw := gzip.NewWriter(w)
	if err := WriteVolume(gw, data, dims); err != nil {
		return err
	}
	return gw.Close()
}

// ReadVolume parses a `.npy` v1.0/v2.0 int32 array, returning the flat data
// and its (Z,Y,X) shape.
func ReadVolume(r io.Reader) (data []int32, dims [3]int, err error) {
	br := bufio.NewReader(r)

	gotMagic := make([]byte, len(magic))
	if _, err := io.ReadFull(br, gotMagic); err != nil {
		return nil, dims, errors.Wrap(err, "arrayio: reading magic")
	}
	if !bytes.Equal(gotMagic, magic) {
		return nil, dims, errors.New("arrayio: not an npy file (bad magic)")
	}
	var verBuf [2]byte
	if _, err := io.ReadFull(br, verBuf[:]); err != nil {
		return nil, dims, errors.Wrap(err, "arrayio: reading version")
	}
	major := verBuf[0]

	var headerLen int
	if major >= 2 {
		var lenBuf [4]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, dims, errors.Wrap(err, "arrayio: reading header length")
		}
		headerLen = int(binary.LittleEndian.Uint32(lenBuf[:]))
	} else {
		var lenBuf [2]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, dims, errors.Wrap(err, "arrayio: reading header length")
		}
		headerLen = int(binary.LittleEndian.Uint16(lenBuf[:]))
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(br, headerBuf); err != nil {
		return nil, dims, errors.Wrap(err, "arrayio: reading header")
	}
	shape, err := parseShape(string(headerBuf))
	if err != nil {
		return nil, dims, err
	}
	dims = shape

	n := dims[0] * dims[1] * dims[2]
	data = make([]int32, n)
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return nil, dims, errors.Wrap(err, "arrayio: reading array body")
	}
	return data, dims, nil
}

// ReadVolumeGzip transparently gzip-decompresses before parsing.
func ReadVolumeGzip(r io.Reader) ([]int32, [3]int, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, [3]int{}, errors.Wrap(err, "arrayio: opening gzip stream")
	}
	defer gr.Close()
	return ReadVolume(gr)
}

// parseShape extracts the "shape": (a, b, c) tuple from an npy header
// dict literal without a full Python-literal parser.
func parseShape(header string) ([3]int, error) {
	key := "'shape':"
	idx := strings.Index(header, key)
	if idx == -1 {
		return [3]int{}, errors.New("arrayio: header missing shape field")
	}
	rest := header[idx+len(key):]
	open := strings.Index(rest, "(")
	shut := strings.Index(rest, ")")
	if open == -1 || shut == -1 || shut < open {
		return [3]int{}, errors.New("arrayio: malformed shape tuple")
	}
	parts := strings.Split(rest[open+1:shut], ",")
	var dims [3]int
	n := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return [3]int{}, errors.Wrapf(err, "arrayio: parsing shape element %q", p)
		}
		if n >= 3 {
			return [3]int{}, errors.New("arrayio: shape has more than 3 dimensions")
		}
		dims[n] = v
		n++
	}
	if n != 3 {
		return [3]int{}, errors.Errorf("arrayio: expected 3-dimensional shape, got %d dimensions", n)
	}
	return dims, nil
}
