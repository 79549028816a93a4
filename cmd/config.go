// cmd/config.go

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// exampleConf mirrors the example command flags. Fields present in the
// YAML file override the flags; absent fields keep the flag values.
type exampleConf struct {
	Dir        string `yaml:"dir"`
	Count      int    `yaml:"count"`
	ChunkSize  int    `yaml:"chunkSize"`
	Compress   string `yaml:"compress"`
	EncryptKey string `yaml:"encryptKey"`
	Workers    int    `yaml:"workers"`
}

func loadExampleConf(c *cli.Context) (*exampleConf, error) {
	conf := &exampleConf{
		Dir:        c.String("dir"),
		Count:      c.Int("count"),
		ChunkSize:  c.Int("chunk-size"),
		Compress:   c.String("compress"),
		EncryptKey: c.String("encrypt-key"),
		Workers:    c.Int("workers"),
	}
	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("parse %s: %s", path, err)
		}
	}
	if conf.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", conf.Count)
	}
	if conf.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", conf.ChunkSize)
	}
	return conf, nil
}
