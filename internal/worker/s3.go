// Package worker serves the storage methods the gateway calls: uploadPublic,
// getPresignedUrl and deleteFiles. It is registered on an rpc.Mux under the
// gateway's endpoint name.
package worker

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/andresuchdata/s3facility/internal/rpc"
	"github.com/andresuchdata/s3facility/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultContentType = "application/octet-stream"

var ErrBadArgs = errors.New("bad rpc arguments")

// UploadResult is returned by uploadPublic.
type UploadResult struct {
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
	ETag   string `json:"etag,omitempty"`
}

// PresignResult is returned by getPresignedUrl.
type PresignResult struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// DeleteResult is returned by deleteFiles.
type DeleteResult struct {
	Deleted []string        `json:"deleted"`
	Errors  []DeleteFailure `json:"errors,omitempty"`
}

type DeleteFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

type S3Worker struct {
	store storage.ObjectStorage
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func NewS3Worker(store storage.ObjectStorage, log zerolog.Logger) *S3Worker {
	return &S3Worker{
		store: store,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (w *S3Worker) ServeRPC(ctx context.Context, method string, args []json.RawMessage) (any, error) {
	switch method {
	case "uploadPublic":
		return w.uploadPublic(ctx, args)
	case "getPresignedUrl":
		return w.presignedURL(ctx, args)
	case "deleteFiles":
		return w.deleteFiles(ctx, args)
	}
	return nil, fmt.Errorf("%w: %s", rpc.ErrUnknownMethod, method)
}

func (w *S3Worker) uploadPublic(ctx context.Context, args []json.RawMessage) (*UploadResult, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: uploadPublic takes 2 args, got %d", ErrBadArgs, len(args))
	}
	var hexBody string
	if err := json.Unmarshal(args[0], &hexBody); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrBadArgs, err)
	}
	var headers domain.Headers
	if err := json.Unmarshal(args[1], &headers); err != nil {
		return nil, fmt.Errorf("%w: headers: %v", ErrBadArgs, err)
	}
	if headers.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrBadArgs)
	}

	body, err := hex.DecodeString(hexBody)
	if err != nil {
		return nil, fmt.Errorf("%w: body is not hex: %v", ErrBadArgs, err)
	}

	key := headers.Key
	if key == "" {
		key = path.Join(w.now().UTC().Format("2006/01/02"), w.newID())
	}

	info, err := w.store.PutObject(ctx, headers.Bucket, key, bytes.NewReader(body), int64(len(body)), storage.PutOptions{
		ContentType:        headers.ContentTypeOr(defaultContentType),
		ContentDisposition: headers.ContentDisposition,
		ACL:                headers.ACL,
	})
	if err != nil {
		return nil, err
	}

	w.log.Info().
		Str("bucket", headers.Bucket).
		Str("key", key).
		Int("size", len(body)).
		Msg("object uploaded")

	return &UploadResult{
		Key:    key,
		Bucket: headers.Bucket,
		Size:   int64(len(body)),
		ETag:   info.ETag,
	}, nil
}

func (w *S3Worker) presignedURL(ctx context.Context, args []json.RawMessage) (*PresignResult, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: getPresignedUrl takes 1 arg, got %d", ErrBadArgs, len(args))
	}
	var req domain.PresignRequest
	if err := json.Unmarshal(args[0], &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	if req.Key == "" || req.Bucket == "" {
		return nil, fmt.Errorf("%w: key and bucket are required", ErrBadArgs)
	}
	if req.SignedURLExpireTime <= 0 {
		return nil, fmt.Errorf("%w: signedUrlExpireTime must be positive", ErrBadArgs)
	}

	expiry := time.Duration(req.SignedURLExpireTime) * time.Second
	u, err := w.store.PresignGet(ctx, req.Bucket, req.Key, expiry, req.ResponseDisposition)
	if err != nil {
		return nil, err
	}
	return &PresignResult{
		URL:       u,
		ExpiresAt: w.now().Add(expiry).UTC().Format(time.RFC3339),
	}, nil
}

func (w *S3Worker) deleteFiles(ctx context.Context, args []json.RawMessage) (*DeleteResult, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: deleteFiles takes 2 args, got %d", ErrBadArgs, len(args))
	}
	files, err := domain.ParseFileRefs(args[0])
	if err != nil {
		return nil, err
	}
	var header domain.BucketACL
	if err := json.Unmarshal(args[1], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadArgs, err)
	}
	if header.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrBadArgs)
	}

	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.Key
	}

	failed, err := w.store.RemoveObjects(ctx, header.Bucket, keys)
	if err != nil {
		return nil, err
	}

	failedKeys := make(map[string]struct{}, len(failed))
	result := &DeleteResult{Deleted: make([]string, 0, len(keys))}
	for _, f := range failed {
		failedKeys[f.Key] = struct{}{}
		msg := "unknown error"
		if f.Err != nil {
			msg = f.Err.Error()
		}
		result.Errors = append(result.Errors, DeleteFailure{Key: f.Key, Error: msg})
	}
	for _, key := range keys {
		if _, ok := failedKeys[key]; !ok {
			result.Deleted = append(result.Deleted, key)
		}
	}

	w.log.Info().
		Str("bucket", header.Bucket).
		Int("deleted", len(result.Deleted)).
		Int("failed", len(result.Errors)).
		Msg("objects deleted")

	return result, nil
}

var _ rpc.Handler = (*S3Worker)(nil)
