// Package outputstore persists the orchestrator's two output artifacts
// (the tabular sweep summary and the chosen-radius label volume) behind a
// single Store interface, so the caller can target a local directory or an
// S3 bucket without the orchestrator knowing which.
package outputstore

import (
	"strings"

	"github.com/pkg/errors"
)

// Store is implemented by LocalStore and S3Store.
type Store interface {
	// WriteTabular writes a CSV file named name with the given header and
	// rows, one row per swept radius in radius-ascending order.
	WriteTabular(name string, header []string, rows [][]string) error
	// WriteVolume writes a dense int32 (Z,Y,X) label volume named name in
	// `.npy` v1.0 format.
	WriteVolume(name string, data []int32, dims [3]int) error
}

const s3Prefix = "s3://"

// New returns a LocalStore rooted at dir, or an S3Store if dir is an
// "s3://bucket/prefix" URI.
func New(dir string) (Store, error) {
	if strings.HasPrefix(dir, s3Prefix) {
		bucket, prefix, err := parseS3URI(dir)
		if err != nil {
			return nil, err
		}
		return NewS3Store(bucket, prefix)
	}
	return NewLocalStore(dir), nil
}

func parseS3URI(uri string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(uri, s3Prefix)
	if rest == "" {
		return "", "", errors.Errorf("outputstore: empty S3 URI %q", uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return "", "", errors.Errorf("outputstore: S3 URI %q has no bucket", uri)
	}
	if len(parts) == 2 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}
	return bucket, prefix, nil
}
