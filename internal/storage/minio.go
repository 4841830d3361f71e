package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for S3-compatible storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioClient implements ObjectStorage on top of minio-go.
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient builds a MinioClient. The endpoint may carry an http(s) scheme,
// which then takes precedence over UseSSL.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	endpoint, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioClient{client: client}, nil
}

// PutObject uploads r under bucket/key.
func (c *MinioClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:        opts.ContentType,
		ContentDisposition: opts.ContentDisposition,
	}
	if opts.ACL != "" {
		putOpts.UserMetadata = map[string]string{"x-amz-acl": opts.ACL}
	}

	info, err := c.client.PutObject(ctx, bucket, key, r, size, putOpts)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put object bucket=%s key=%s: %w", bucket, key, err)
	}
	return ObjectInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		Size:   info.Size,
		ETag:   info.ETag,
	}, nil
}

// PresignGet returns a time limited GET URL. A non-empty disposition is
// served back as the response Content-Disposition.
func (c *MinioClient) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration, disposition string) (string, error) {
	params := url.Values{}
	if disposition != "" {
		params.Set("response-content-disposition", disposition)
	}
	u, err := c.client.PresignedGetObject(ctx, bucket, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("presign bucket=%s key=%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// RemoveObjects deletes keys in one batch. Per-key failures are returned,
// not treated as an error of the call.
func (c *MinioClient) RemoveObjects(ctx context.Context, bucket string, keys []string) ([]RemoveError, error) {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var failed []RemoveError
	for rerr := range c.client.RemoveObjects(ctx, bucket, objects, minio.RemoveObjectsOptions{}) {
		failed = append(failed, RemoveError{Key: rerr.ObjectName, Err: rerr.Err})
	}
	if err := ctx.Err(); err != nil {
		return failed, err
	}
	return failed, nil
}

func splitEndpoint(raw string, useSSL bool) (string, bool) {
	endpoint := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	}
	return strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/"), useSSL
}

var _ ObjectStorage = (*MinioClient)(nil)
