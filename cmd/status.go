// cmd/status.go

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"glacierlist/pkg/chunk"

	"github.com/urfave/cli/v2"
	"golang.org/x/sys/unix"
)

type sections struct {
	Setting    *chunk.Format
	Chunks     int
	ChunkBytes int64
	Records    int
	FreeSpace  uint64
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func status(ctx *cli.Context) error {
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
		logger.Fatalf("%s is not a glacier storage root (no %s)", dir, chunk.FormatFile)
	}

	store, err := chunk.NewFileStore(dir, chunk.JSONCodec{}, &chunk.StoreConfig{Compress: format.Compression})
	if err != nil {
		logger.Fatalf("open store: %s", err)
	}
	chunks, err := store.Scan()
	if err != nil {
		logger.Fatalf("scan %s: %s", dir, err)
	}
	var bytes int64
	for k := 0; k < chunks; k++ {
		if st, err := os.Stat(store.Path(k)); err == nil {
			bytes += st.Size()
		}
	}

	var st unix.Statfs_t
	var free uint64
	if err := unix.Statfs(dir, &st); err == nil {
		free = st.Bavail * uint64(st.Bsize)
	}

	printJson(&sections{
		Setting:    format,
		Chunks:     chunks,
		ChunkBytes: bytes,
		Records:    chunks * format.ChunkSize,
		FreeSpace:  free,
	})
	return nil
}

func statusFlags() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show status of a storage root",
		ArgsUsage: "DIR",
		Action:    status,
	}
}
