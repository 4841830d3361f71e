package bootstrap

import (
	"fmt"

	"github.com/andresuchdata/s3facility/internal/config"
	"github.com/andresuchdata/s3facility/internal/gateway"
	"github.com/andresuchdata/s3facility/internal/rpc"
	"github.com/andresuchdata/s3facility/internal/storage"
	"github.com/andresuchdata/s3facility/internal/worker"
	"github.com/rs/zerolog"
)

// App holds the wired gateway and the mux its worker is registered on.
type App struct {
	Config  *config.Config
	Mux     *rpc.Mux
	Gateway *gateway.Gateway
}

// Build connects object storage, registers the storage worker under the
// configured endpoint and returns a gateway dispatching to it.
func Build(cfg *config.Config, log zerolog.Logger) (*App, error) {
	if cfg.Store.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET must be set")
	}

	store, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	return Wire(cfg, store, log), nil
}

// Wire assembles the app around an existing store.
func Wire(cfg *config.Config, store storage.ObjectStorage, log zerolog.Logger) *App {
	mux := rpc.NewMux(log.With().Str("component", "rpc").Logger())
	gw := gateway.New(cfg.Store, mux, gateway.WithLogger(log.With().Str("component", "gateway").Logger()))
	mux.Handle(gw.Worker(), worker.NewS3Worker(store, log.With().Str("component", "worker").Logger()))

	return &App{
		Config:  cfg,
		Mux:     mux,
		Gateway: gw,
	}
}
