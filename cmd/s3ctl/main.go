package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/s3facility/internal/bootstrap"
	"github.com/andresuchdata/s3facility/internal/config"
	"github.com/andresuchdata/s3facility/pkg/logger"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func initApp(c *cli.Context) error {
	cfg := config.Load()
	logger.SetFormat(cfg.Log.Format)
	logger.SetLevel(cfg.Log.Level)

	if bucket := c.String("bucket"); bucket != "" {
		cfg.Store.Bucket = bucket
	}
	if worker := c.String("worker"); worker != "" {
		cfg.Store.Worker = worker
	}

	app, err := bootstrap.Build(cfg, logger.Log)
	if err != nil {
		return err
	}

	c.Context = context.WithValue(c.Context, appKey{}, app)
	return nil
}

func appFrom(c *cli.Context) *bootstrap.App {
	app, _ := c.Context.Value(appKey{}).(*bootstrap.App)
	return app
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newApp(before cli.BeforeFunc) *cli.App {
	return &cli.App{
		Name:  "s3ctl",
		Usage: "Upload, sign and delete objects through the storage worker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "Bucket to operate on",
				EnvVars: []string{"S3_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "worker",
				Usage:   "Worker endpoint name",
				EnvVars: []string{"S3_WORKER"},
			},
		},
		Before: before,
		Commands: []*cli.Command{
			uploadCommand(),
			urlCommand(),
			deleteCommand(),
		},
	}
}

func main() {
	if err := newApp(initApp).Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("s3ctl failed")
		os.Exit(1)
	}
}

func urlCommand() *cli.Command {
	return &cli.Command{
		Name:  "url",
		Usage: "Issue a presigned download URL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "Object key", Required: true},
			&cli.StringFlag{Name: "filename", Usage: "Download file name"},
		},
		Action: func(c *cli.Context) error {
			resp, err := appFrom(c).Gateway.
				DownloadURL(c.Context, c.String("filename"), c.String("key"), nil).
				Wait(c.Context)
			if err != nil {
				return fmt.Errorf("presign %s: %w", c.String("key"), err)
			}
			return printJSON(c, resp)
		},
	}
}
