// cmd/demo.go

package main

import (
	"fmt"

	"glacierlist/pkg/glacier"

	"github.com/urfave/cli/v2"
)

func demoFlags() *cli.Command {
	return &cli.Command{
		Name:   "demo",
		Usage:  "run a small demonstration",
		Action: demo,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "demo_data",
				Usage: "directory holding the chunk files",
			},
		},
	}
}

func demo(c *cli.Context) error {
	setLoggerLevel(c)
	l, err := glacier.Open(&glacier.Config{Dir: c.String("dir"), ChunkSize: 5})
	if err != nil {
		return err
	}
	for i := 0; i < 10; i++ {
		err = l.Append(glacier.Record{"id": i, "name": fmt.Sprintf("item_%d", i), "value": i * 10})
		if err != nil {
			return err
		}
	}
	fmt.Printf("Created list with %d items (%d chunks on disk, %d in memory)\n",
		l.Len(), l.ChunkCount(), l.TailLen())

	first, err := l.Get(0)
	if err != nil {
		return err
	}
	last, err := l.Get(-1)
	if err != nil {
		return err
	}
	middle, err := l.Slice(3, 7)
	if err != nil {
		return err
	}
	fmt.Printf("First item: %v\n", first)
	fmt.Printf("Last item: %v\n", last)
	fmt.Printf("Slice [3:7]: %v\n", middle)

	if err = l.Clear(); err != nil {
		return err
	}
	fmt.Println("Demo completed and cleaned up")
	return nil
}
