package book

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source provides the raw document blob. The document itself is static; a
// source is opened exactly once at startup.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the document from local disk.
type FileSource struct {
	path string
}

// NewFileSource validates the path and returns a disk-backed source.
func NewFileSource(path string) (*FileSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("document path is required")
	}
	return &FileSource{path: path}, nil
}

// Open implements Source.
func (f *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	r, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	return r, nil
}

// ObjectSource reads the document from MinIO/S3 compatible object storage.
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectSource connects to object storage and verifies the bucket exists.
func NewObjectSource(endpoint, accessKey, secretKey, bucket, key string, useSSL bool) (*ObjectSource, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("object storage bucket and key are required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}
	return &ObjectSource{client: client, bucket: bucket, key: key}, nil
}

// Open implements Source.
func (o *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get document object: %w", err)
	}
	return obj, nil
}
