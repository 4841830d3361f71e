package main

import (
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/urfave/cli/v2"
)

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete objects by key",
		ArgsUsage: "[KEY...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "json",
				Usage: `Batch as JSON, e.g. '[{"key":"a"},{"key":"b"}]'`,
			},
		},
		Action: func(c *cli.Context) error {
			files, err := deleteBatch(c)
			if err != nil {
				return err
			}

			done := make(chan error, 1)
			appFrom(c).Gateway.DeleteMany(c.Context, files, func(resp json.RawMessage, err error) {
				if err == nil {
					err = printJSON(c, resp)
				}
				done <- err
			})
			return <-done
		},
	}
}

func deleteBatch(c *cli.Context) ([]domain.FileRef, error) {
	if raw := c.String("json"); raw != "" {
		files, err := domain.ParseFileRefs(json.RawMessage(raw))
		if err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
		return files, nil
	}

	keys := c.Args().Slice()
	files := make([]domain.FileRef, len(keys))
	for i, key := range keys {
		files[i] = domain.FileRef{Key: key}
	}
	return files, nil
}
