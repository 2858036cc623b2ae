package main

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zlib"
	"gopkg.in/yaml.v3"

	"github.com/meigma/oaktms"
)

// packConfig holds the settings for the pack command.
type packConfig struct {
	Magic      uint64 `yaml:"magic"`
	ChunkSize  uint64 `yaml:"chunk_size"`
	Prefix     string `yaml:"prefix"`
	Date       string `yaml:"date"`
	Footer1    string `yaml:"footer1"`
	Footer2    string `yaml:"footer2"`
	FooterNum1 uint32 `yaml:"footer_num1"`
	FooterNum2 uint32 `yaml:"footer_num2"`
	Level      int    `yaml:"level"`
	Workers    int    `yaml:"workers"`
}

func defaultPackConfig() packConfig {
	tags := oaktms.DefaultFooterTags()
	return packConfig{
		Magic:     oaktms.Magic,
		ChunkSize: oaktms.DefaultChunkSize,
		Prefix:    oaktms.DefaultPrefix,
		Footer1:   tags[0],
		Footer2:   tags[1],
		Level:     zlib.DefaultCompression,
		Workers:   1,
	}
}

// loadPackConfig reads a YAML file into a copy of base. Keys missing
// from the file keep their value from base.
func loadPackConfig(path string, base packConfig) (packConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// merge copies the fields whose flags were set explicitly from flags
// into c.
func (c *packConfig) merge(flags packConfig, changed func(name string) bool) {
	if changed("magic") {
		c.Magic = flags.Magic
	}
	if changed("chunksize") {
		c.ChunkSize = flags.ChunkSize
	}
	if changed("prefix") {
		c.Prefix = flags.Prefix
	}
	if changed("date") {
		c.Date = flags.Date
	}
	if changed("footer1") {
		c.Footer1 = flags.Footer1
	}
	if changed("footer2") {
		c.Footer2 = flags.Footer2
	}
	if changed("footer-num1") {
		c.FooterNum1 = flags.FooterNum1
	}
	if changed("footer-num2") {
		c.FooterNum2 = flags.FooterNum2
	}
	if changed("level") {
		c.Level = flags.Level
	}
	if changed("workers") {
		c.Workers = flags.Workers
	}
}

// options converts the config to archive options. A date string is
// written verbatim as the first footer string.
func (c *packConfig) options() []oaktms.CreateOption {
	opts := []oaktms.CreateOption{
		oaktms.CreateWithMagic(c.Magic),
		oaktms.CreateWithChunkSize(c.ChunkSize),
		oaktms.CreateWithPrefix(c.Prefix),
		oaktms.CreateWithLevel(c.Level),
		oaktms.CreateWithWorkers(c.Workers),
	}
	if c.Date != "" {
		return append(opts, oaktms.CreateWithFooter(oaktms.Footer{
			Strings: []string{c.Date, c.Footer1, c.Footer2},
			Num1:    c.FooterNum1,
			Num2:    c.FooterNum2,
		}))
	}
	return append(opts,
		oaktms.CreateWithFooterTags(c.Footer1, c.Footer2),
		oaktms.CreateWithFooterNumbers(c.FooterNum1, c.FooterNum2),
	)
}
