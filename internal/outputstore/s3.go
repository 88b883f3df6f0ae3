package outputstore

import (
	"bytes"
	"encoding/csv"
	"path"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/grailbio/granulate/internal/arrayio"
	"github.com/pkg/errors"
)

// S3Store writes output artifacts as objects under Bucket/Prefix, using
// aws-sdk-go's s3manager uploader (grounded on the teacher's S3-backed
// sharded BAM storage, `encoding/bam/shardedbam.go`).
type S3Store struct {
	Bucket   string
	Prefix   string
	uploader *s3manager.Uploader
}

// NewS3Store builds an S3Store from the default AWS session (environment
// or shared credentials, default region resolution).
func NewS3Store(bucket, prefix string) (*S3Store, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "outputstore: creating AWS session")
	}
	return &S3Store{Bucket: bucket, Prefix: prefix, uploader: s3manager.NewUploader(sess)}, nil
}

func (s *S3Store) key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *S3Store) upload(name string, body []byte) error {
	key := s.key(name)
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: &s.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return errors.Wrapf(err, "outputstore: uploading s3://%s/%s", s.Bucket, key)
	}
	return nil
}

// WriteTabular uploads name as a CSV object.
func (s *S3Store) WriteTabular(name string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "outputstore: encoding CSV header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "outputstore: encoding CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "outputstore: flushing CSV encoder")
	}
	return s.upload(name, buf.Bytes())
}

// WriteVolume uploads name as a `.npy` v1.0 object.
func (s *S3Store) WriteVolume(name string, data []int32, dims [3]int) error {
	var buf bytes.Buffer
	if err := arrayio.WriteVolume(&buf, data, dims); err != nil {
		return errors.Wrap(err, "outputstore: encoding npy volume")
	}
	return s.upload(name, buf.Bytes())
}
