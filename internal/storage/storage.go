package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions carries the object headers set on upload.
type PutOptions struct {
	ContentType        string
	ContentDisposition string
	ACL                string
}

// ObjectInfo represents metadata for a stored object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// RemoveError reports a key that could not be removed.
type RemoveError struct {
	Key string
	Err error
}

// ObjectStorage captures the S3-compatible operations the worker needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration, disposition string) (string, error)
	RemoveObjects(ctx context.Context, bucket string, keys []string) ([]RemoveError, error)
}
