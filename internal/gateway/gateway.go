// Package gateway dispatches upload, presigned URL and delete requests to the
// storage worker through an injected rpc.Caller.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andresuchdata/s3facility/internal/config"
	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/andresuchdata/s3facility/internal/envelope"
	"github.com/andresuchdata/s3facility/internal/filename"
	"github.com/andresuchdata/s3facility/internal/rpc"
	"github.com/andresuchdata/s3facility/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	// DefaultWorker is the endpoint used when StoreConfig.Worker is empty.
	DefaultWorker = "rest:ext:s3"

	MethodUpload       = "uploadPublic"
	MethodPresignedURL = "getPresignedUrl"
	MethodDeleteFiles  = "deleteFiles"

	// CallTimeout bounds every dispatch.
	CallTimeout = 10 * time.Second

	// SignedURLExpireSeconds is the lifetime requested for download URLs.
	SignedURLExpireSeconds = 120

	downloadDisposition = "attachment"
)

type Gateway struct {
	cfg     config.StoreConfig
	worker  string
	builder *envelope.Builder
	caller  rpc.Caller
	log     zerolog.Logger
}

type Option func(*Gateway)

// WithLogger replaces the package level logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func New(cfg config.StoreConfig, caller rpc.Caller, opts ...Option) *Gateway {
	worker := cfg.Worker
	if worker == "" {
		worker = DefaultWorker
	}
	g := &Gateway{
		cfg:     cfg,
		worker:  worker,
		builder: envelope.NewBuilder(cfg),
		caller:  caller,
		log:     logger.Log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Worker returns the endpoint name calls are sent to.
func (g *Gateway) Worker() string {
	return g.worker
}

// Upload sends data to uploadPublic. Data URIs are decoded first; any other
// text is uploaded as is.
func (g *Gateway) Upload(ctx context.Context, data, name, key string, cb rpc.Callback) *rpc.Future {
	env, err := g.builder.Build(data, name, key)
	if err != nil {
		g.log.Warn().Err(err).Str("filename", name).Msg("failed to build upload envelope")
		return rpc.Failed(err, cb)
	}
	return g.upload(ctx, env, cb)
}

// UploadBytes sends raw bytes to uploadPublic.
func (g *Gateway) UploadBytes(ctx context.Context, data []byte, name, key string, cb rpc.Callback) *rpc.Future {
	return g.upload(ctx, g.builder.BuildBytes(data, name, key), cb)
}

func (g *Gateway) upload(ctx context.Context, env domain.Envelope, cb rpc.Callback) *rpc.Future {
	g.log.Debug().
		Str("mode", string(env.Mode)).
		Int("hex_len", len(env.Body)).
		Str("key", env.Headers.Key).
		Msg("dispatching upload")
	return g.dispatch(ctx, MethodUpload, env.Args(), cb)
}

// DownloadURL asks the worker for a presigned URL to key.
func (g *Gateway) DownloadURL(ctx context.Context, name, key string, cb rpc.Callback) *rpc.Future {
	req := domain.PresignRequest{
		Key:                 key,
		Bucket:              g.cfg.Bucket,
		SignedURLExpireTime: SignedURLExpireSeconds,
		ResponseDisposition: filename.Disposition(downloadDisposition, name),
	}
	return g.dispatch(ctx, MethodPresignedURL, []any{req}, cb)
}

// DeleteMany removes every file in files. The batch is rejected before any
// dispatch when files is nil, empty, or has an entry without a key.
func (g *Gateway) DeleteMany(ctx context.Context, files []domain.FileRef, cb rpc.Callback) *rpc.Future {
	if err := domain.ValidateFileRefs(files); err != nil {
		return rpc.Failed(err, cb)
	}

	batch := make([]domain.FileRef, len(files))
	for i, f := range files {
		batch[i] = domain.FileRef{Key: f.Key}
	}
	header := domain.BucketACL{ACL: g.cfg.ACL, Bucket: g.cfg.Bucket}
	return g.dispatch(ctx, MethodDeleteFiles, []any{batch, header}, cb)
}

func (g *Gateway) dispatch(ctx context.Context, method string, args []any, cb rpc.Callback) *rpc.Future {
	return rpc.Go(func() (json.RawMessage, error) {
		resp, err := g.caller.Call(ctx, g.worker, method, args, rpc.Options{Timeout: CallTimeout})
		if err != nil {
			g.log.Warn().Err(err).Str("endpoint", g.worker).Str("method", method).Msg("storage call failed")
		}
		return resp, err
	}, cb)
}
