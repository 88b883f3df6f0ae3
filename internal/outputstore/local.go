package outputstore

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/grailbio/granulate/internal/arrayio"
	"github.com/pkg/errors"
)

// LocalStore writes output artifacts as plain files under Dir.
type LocalStore struct {
	Dir string
}

// NewLocalStore returns a LocalStore rooted at dir. dir is created on first
// write if it does not already exist.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

func (s *LocalStore) ensureDir() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "outputstore: creating output directory %s", s.Dir)
	}
	return nil
}

// WriteTabular writes name as CSV: header row followed by rows, using the
// teacher's stdlib-only tabular-output convention (no third-party CSV
// library pulls its weight over encoding/csv for a flat, well-known
// column set).
func (s *LocalStore) WriteTabular(name string, header []string, rows [][]string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "outputstore: creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "outputstore: writing header to %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "outputstore: writing row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "outputstore: flushing %s", path)
	}
	return nil
}

// WriteVolume writes name as a `.npy` v1.0 dense int32 array.
func (s *LocalStore) WriteVolume(name string, data []int32, dims [3]int) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "outputstore: creating %s", path)
	}
	defer f.Close()
	if err := arrayio.WriteVolume(f, data, dims); err != nil {
		return errors.Wrapf(err, "outputstore: writing volume to %s", path)
	}
	return nil
}
