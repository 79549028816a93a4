// cmd/example.go

package main

import (
	"fmt"
	"time"

	"glacierlist/pkg/glacier"
	"glacierlist/pkg/utils"

	"github.com/google/gops/agent"
	"github.com/urfave/cli/v2"
)

func exampleFlags() *cli.Command {
	return &cli.Command{
		Name:   "example",
		Usage:  "run the full example with one million records",
		Action: example,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "example_data",
				Usage: "directory holding the chunk files",
			},
			&cli.IntFlag{
				Name:  "count",
				Value: 1000000,
				Usage: "number of records to append",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Value: 10000,
				Usage: "records per chunk",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "none",
				Usage: "compression algorithm (lz4, zstd, none)",
			},
			&cli.StringFlag{
				Name:  "encrypt-key",
				Usage: "passphrase to encrypt chunk files",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 4,
				Usage: "workers for the transform phase",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "load settings from a YAML file",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "keep the chunk files afterwards",
			},
			&cli.BoolFlag{
				Name:  "no-agent",
				Usage: "disable the gops agent",
			},
		},
	}
}

func example(c *cli.Context) error {
	setLoggerLevel(c)
	conf, err := loadExampleConf(c)
	if err != nil {
		return err
	}
	if !c.Bool("no-agent") {
		go func() {
			if err := agent.Listen(agent.Options{Addr: "127.0.0.1:0"}); err != nil {
				logger.Warnf("gops agent: %s", err)
			}
		}()
	}

	l, err := glacier.Open(&glacier.Config{
		Dir:       conf.Dir,
		ChunkSize: conf.ChunkSize,
		Compress:  conf.Compress,
		SecretKey: conf.EncryptKey,
		Workers:   conf.Workers,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	progress, bar := utils.NewDynProgressBar("append: ", c.Bool("quiet"))
	bar.SetTotal(int64(conf.Count), false)
	batch := make([]glacier.Record, 0, 1000)
	for i := 0; i < conf.Count; i++ {
		batch = append(batch, glacier.Record{
			"id":   fmt.Sprintf("%d", i),
			"data": fmt.Sprintf("record_%d", i),
			"meta": map[string]interface{}{"even": i%2 == 0},
		})
		if len(batch) == cap(batch) {
			if err = l.Extend(batch); err != nil {
				return err
			}
			bar.IncrBy(len(batch))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err = l.Extend(batch); err != nil {
			return err
		}
		bar.IncrBy(len(batch))
	}
	bar.SetTotal(int64(conf.Count), true)
	progress.Wait()
	logger.Infof("Appended %d records in %s (%d chunks, %d in tail)",
		l.Len(), time.Since(start), l.ChunkCount(), l.TailLen())

	mid, err := l.Get(conf.Count / 2)
	if err != nil {
		return err
	}
	logger.Infof("Record %d: %v", conf.Count/2, mid)

	start = time.Now()
	if err = l.Map(glacier.SerializeFields()); err != nil {
		return err
	}
	logger.Infof("Serialized nested fields of %d records in %s", l.Len(), time.Since(start))

	start = time.Now()
	var n int
	it := l.Iterator()
	for it.Next() {
		n++
	}
	if err = it.Err(); err != nil {
		return err
	}
	logger.Infof("Iterated %d records in %s", n, time.Since(start))

	ru := utils.GetRusage()
	logger.Infof("Used %.1fs user, %.1fs sys, wall clock %s", ru.GetUtime(), ru.GetStime(), utils.Clock())

	if !c.Bool("keep") {
		if err = l.Clear(); err != nil {
			return err
		}
		logger.Infof("Cleaned up %s", conf.Dir)
	}
	return nil
}
