// Package cloudwriter abstracts where delivery-history exports land: an S3
// bucket in production, the local filesystem for development.
package cloudwriter

import (
	"os"
	"path/filepath"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// LocalWriterFactory writes objects under a base directory, treating the
// bucket as the first path element.
type LocalWriterFactory struct {
	BaseDir string
}

func (f *LocalWriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	fullPath := filepath.Join(f.BaseDir, bucket, objectPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, err
	}
	return os.Create(fullPath)
}
