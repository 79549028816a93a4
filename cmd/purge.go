// cmd/purge.go

package main

import (
	"fmt"

	"glacierlist/pkg/chunk"

	"github.com/urfave/cli/v2"
)

func purgeFlags() *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "delete all chunk files under a storage root",
		ArgsUsage: "DIR",
		Action:    purge,
	}
}

func purge(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("DIR is needed")
	}
	dir := ctx.Args().Get(0)

	format, err := chunk.LoadFormat(dir)
	if err != nil {
		logger.Fatalf("load format: %s", err)
	}
	if format == nil {
		logger.Warnf("%s has no %s; removing anything that looks like a chunk file", dir, chunk.FormatFile)
	}

	store, err := chunk.NewFileStore(dir, chunk.JSONCodec{}, nil)
	if err != nil {
		return err
	}
	chunks, err := store.Scan()
	if err != nil {
		return err
	}
	if err := store.DeleteAll(); err != nil {
		return err
	}
	logger.Infof("Purged %d chunks under %s", chunks, dir)
	return nil
}
