package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

type uploadOutcome struct {
	File     string          `json:"file"`
	Response json.RawMessage `json:"response"`
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload files, or a data URI passed with --data",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data",
				Usage: "Inline payload; base64 data URIs are decoded before upload",
			},
			&cli.StringFlag{
				Name:  "filename",
				Usage: "File name for the Content-Disposition header (--data only)",
			},
			&cli.StringFlag{
				Name:  "key",
				Usage: "Object key (--data only)",
			},
			&cli.StringFlag{
				Name:  "key-prefix",
				Usage: "Prefix joined with each file's base name to form its key",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum uploads in flight",
				Value: 4,
			},
		},
		Action: runUpload,
	}
}

func runUpload(c *cli.Context) error {
	gw := appFrom(c).Gateway

	if data := c.String("data"); data != "" {
		resp, err := gw.Upload(c.Context, data, c.String("filename"), c.String("key"), nil).Wait(c.Context)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		return printJSON(c, resp)
	}

	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("no files given")
	}

	var (
		mu       sync.Mutex
		outcomes = make([]uploadOutcome, len(files))
	)

	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(max(1, c.Int("concurrency")))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			name := filepath.Base(file)
			key := ""
			if prefix := c.String("key-prefix"); prefix != "" {
				key = path.Join(prefix, name)
			}

			resp, err := gw.UploadBytes(ctx, data, name, key, nil).Wait(ctx)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file, err)
			}

			mu.Lock()
			outcomes[i] = uploadOutcome{File: file, Response: resp}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return printJSON(c, outcomes)
}
