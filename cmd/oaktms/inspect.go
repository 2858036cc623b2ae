package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/meigma/oaktms"
)

type inspectDoc struct {
	File         string        `yaml:"file"`
	Magic        string        `yaml:"magic"`
	Header       oaktms.Header `yaml:"header"`
	CommonPrefix string        `yaml:"common_prefix"`
	Chunks       []chunkDoc    `yaml:"chunks"`
	Footer       oaktms.Footer `yaml:"footer"`
	Files        []fileDoc     `yaml:"files"`
}

type chunkDoc struct {
	Compressed   uint64 `yaml:"compressed"`
	Uncompressed uint64 `yaml:"uncompressed"`
}

type fileDoc struct {
	Path string `yaml:"path"`
	Size int    `yaml:"size"`
}

func runInspect(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("inspect", e)
	verbose := fs.CountP("verbose", "v", "log format details while reading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	file, err := oneArg(fs, "archive")
	if err != nil {
		return err
	}

	a, err := oaktms.Open(ctx, file, oaktms.ReadWithLogger(newLogger(e.stderr, *verbose+1)))
	if err != nil {
		return err
	}

	h := a.Header()
	doc := inspectDoc{
		File:         file,
		Magic:        fmt.Sprintf("%#x", h.Magic),
		Header:       h,
		CommonPrefix: a.CommonPrefix(),
		Footer:       a.Footer(),
	}
	for _, c := range a.Chunks() {
		doc.Chunks = append(doc.Chunks, chunkDoc{Compressed: c.CompressedSize, Uncompressed: c.UncompressedSize})
	}
	for path, content := range a.Files() {
		doc.Files = append(doc.Files, fileDoc{Path: path, Size: len(content)})
	}

	enc := yaml.NewEncoder(e.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
