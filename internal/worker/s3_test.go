package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/andresuchdata/s3facility/internal/rpc"
	"github.com/andresuchdata/s3facility/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket string
	key    string
	body   []byte
	opts   storage.PutOptions
}

type presignCall struct {
	bucket      string
	key         string
	expiry      time.Duration
	disposition string
}

type fakeStore struct {
	mu       sync.Mutex
	puts     []putCall
	presigns []presignCall
	removed  [][]string
	failKeys map[string]error
}

func (s *fakeStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts storage.PutOptions) (storage.ObjectInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, putCall{bucket: bucket, key: key, body: body, opts: opts})
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: size, ETag: "etag-1"}, nil
}

func (s *fakeStore) PresignGet(_ context.Context, bucket, key string, expiry time.Duration, disposition string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presigns = append(s.presigns, presignCall{bucket: bucket, key: key, expiry: expiry, disposition: disposition})
	return "https://storage.local/" + bucket + "/" + key + "?sig=1", nil
}

func (s *fakeStore) RemoveObjects(_ context.Context, bucket string, keys []string) ([]storage.RemoveError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, keys)
	var failed []storage.RemoveError
	for _, k := range keys {
		if err, ok := s.failKeys[k]; ok {
			failed = append(failed, storage.RemoveError{Key: k, Err: err})
		}
	}
	return failed, nil
}

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newTestWorker(store storage.ObjectStorage) *S3Worker {
	w := NewS3Worker(store, zerolog.Nop())
	w.now = func() time.Time { return fixedNow }
	w.newID = func() string { return "generated" }
	return w
}

func wireArgs(t *testing.T, args ...any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		require.NoError(t, err)
		out[i] = b
	}
	return out
}

func TestUploadPublic(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store)

	mime := "image/png"
	env := domain.Envelope{
		Body: "00ff10",
		Headers: domain.Headers{
			ContentType:        &mime,
			ACL:                "public-read",
			Bucket:             "b",
			ContentDisposition: `attachment; filename="a.png"`,
			Key:                "docs/a.png",
		},
	}

	resp, err := w.ServeRPC(context.Background(), "uploadPublic", wireArgs(t, env.Args()...))
	require.NoError(t, err)
	assert.Equal(t, &UploadResult{Key: "docs/a.png", Bucket: "b", Size: 3, ETag: "etag-1"}, resp)

	require.Len(t, store.puts, 1)
	put := store.puts[0]
	assert.Equal(t, "b", put.bucket)
	assert.Equal(t, "docs/a.png", put.key)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, put.body)
	assert.Equal(t, storage.PutOptions{
		ContentType:        "image/png",
		ContentDisposition: `attachment; filename="a.png"`,
		ACL:                "public-read",
	}, put.opts)
}

func TestUploadPublicGeneratesKey(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store)

	env := domain.Envelope{Body: "6869", Headers: domain.Headers{ACL: "private", Bucket: "b"}}
	resp, err := w.ServeRPC(context.Background(), "uploadPublic", wireArgs(t, env.Args()...))
	require.NoError(t, err)

	result, ok := resp.(*UploadResult)
	require.True(t, ok)
	assert.Equal(t, "2024/03/09/generated", result.Key)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "application/octet-stream", store.puts[0].opts.ContentType)
	assert.Empty(t, store.puts[0].opts.ContentDisposition)
}

func TestUploadPublicBadArgs(t *testing.T) {
	w := newTestWorker(&fakeStore{})

	tests := []struct {
		name string
		args []json.RawMessage
	}{
		{name: "arity", args: wireArgs(t, "00")},
		{name: "non hex body", args: wireArgs(t, "zz", domain.Headers{Bucket: "b"})},
		{name: "missing bucket", args: wireArgs(t, "00", domain.Headers{})},
		{name: "body not a string", args: wireArgs(t, 5, domain.Headers{Bucket: "b"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.ServeRPC(context.Background(), "uploadPublic", tt.args)
			assert.ErrorIs(t, err, ErrBadArgs)
		})
	}
}

func TestGetPresignedURL(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store)

	req := domain.PresignRequest{
		Key:                 "docs/a.png",
		Bucket:              "b",
		SignedURLExpireTime: 120,
		ResponseDisposition: "attachment; filename=a.png",
	}
	resp, err := w.ServeRPC(context.Background(), "getPresignedUrl", wireArgs(t, req))
	require.NoError(t, err)
	assert.Equal(t, &PresignResult{
		URL:       "https://storage.local/b/docs/a.png?sig=1",
		ExpiresAt: "2024-03-09T10:02:00Z",
	}, resp)

	require.Len(t, store.presigns, 1)
	assert.Equal(t, presignCall{
		bucket:      "b",
		key:         "docs/a.png",
		expiry:      2 * time.Minute,
		disposition: "attachment; filename=a.png",
	}, store.presigns[0])
}

func TestGetPresignedURLRequiresKey(t *testing.T) {
	w := newTestWorker(&fakeStore{})
	_, err := w.ServeRPC(context.Background(), "getPresignedUrl", wireArgs(t, domain.PresignRequest{Bucket: "b", SignedURLExpireTime: 120}))
	assert.ErrorIs(t, err, ErrBadArgs)
}

func TestDeleteFiles(t *testing.T) {
	store := &fakeStore{failKeys: map[string]error{"b": errors.New("access denied")}}
	w := newTestWorker(store)

	files := []domain.FileRef{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	resp, err := w.ServeRPC(context.Background(), "deleteFiles", wireArgs(t, files, domain.BucketACL{ACL: "public-read", Bucket: "bucket"}))
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{
		Deleted: []string{"a", "c"},
		Errors:  []DeleteFailure{{Key: "b", Error: "access denied"}},
	}, resp)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, store.removed)
}

func TestDeleteFilesRevalidatesBatch(t *testing.T) {
	w := newTestWorker(&fakeStore{})
	_, err := w.ServeRPC(context.Background(), "deleteFiles", wireArgs(t, []map[string]string{{"key": "a"}, {}}, domain.BucketACL{Bucket: "b"}))
	assert.ErrorIs(t, err, domain.ErrMissingKey)
}

func TestUnknownMethod(t *testing.T) {
	w := newTestWorker(&fakeStore{})
	_, err := w.ServeRPC(context.Background(), "listFiles", nil)
	assert.ErrorIs(t, err, rpc.ErrUnknownMethod)
}
