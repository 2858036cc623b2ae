package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/meigma/oaktms"
)

func runPack(ctx context.Context, args []string, e *env) error {
	flags := newFlagSet("pack", e)
	def := defaultPackConfig()
	var set packConfig
	flags.Uint64VarP(&set.Magic, "magic", "m", def.Magic, "magic number")
	flags.Uint64VarP(&set.ChunkSize, "chunksize", "c", def.ChunkSize, "uncompressed chunk size")
	flags.StringVarP(&set.Prefix, "prefix", "p", def.Prefix, "common prefix prepended to stored paths")
	flags.StringVarP(&set.Date, "date", "d", "", "footer date string, MM/DD/YY HH:MM:SS (default: now)")
	flags.StringVar(&set.Footer1, "footer1", def.Footer1, "first footer tag")
	flags.StringVar(&set.Footer2, "footer2", def.Footer2, "second footer tag")
	flags.Uint32Var(&set.FooterNum1, "footer-num1", 0, "first footer number")
	flags.Uint32Var(&set.FooterNum2, "footer-num2", 0, "second footer number")
	flags.IntVar(&set.Level, "level", def.Level, "zlib compression level")
	flags.IntVarP(&set.Workers, "workers", "w", def.Workers, "goroutines compressing chunks")
	output := flags.StringP("output", "o", "", "output file (default: DIR.cfg)")
	configPath := flags.String("config", "", "YAML file with pack settings; flags take precedence")
	force := flags.BoolP("force", "f", false, "overwrite the output without prompting")
	verbose := flags.CountP("verbose", "v", "verbose output (lists packed files)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	dir, err := oneArg(flags, "directory")
	if err != nil {
		return err
	}

	cfg := def
	if *configPath != "" {
		if cfg, err = loadPackConfig(*configPath, def); err != nil {
			return err
		}
	}
	cfg.merge(set, flags.Changed)

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "pack", Path: dir, Err: errors.New("not a directory")}
	}

	out := *output
	if out == "" {
		out = filepath.Clean(dir) + ".cfg"
	}
	if !*force {
		if _, err := os.Stat(out); err == nil {
			ok, err := e.prompter().confirm(out + " already exists - overwrite?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(e.stdout, "Exiting!")
				return oaktms.ErrAborted
			}
		}
	}

	opts := cfg.options()
	opts = append(opts, oaktms.CreateWithLogger(newLogger(e.stderr, *verbose-1)))
	res, err := oaktms.CreateFile(ctx, dir, out, opts...)
	if err != nil {
		return err
	}
	if *verbose > 0 {
		for _, p := range res.Paths {
			fmt.Fprintf(e.stdout, "   %s\n", p)
		}
	}

	plural := "s"
	if res.FileCount == 1 {
		plural = ""
	}
	fmt.Fprintf(e.stdout, "Packed %d file%s into %s (%s -> %s)\n", res.FileCount, plural, out,
		humanize.IBytes(res.TotalUncompressedSize), humanize.IBytes(uint64(res.Size))) //nolint:gosec // size is non-negative
	fmt.Fprintf(e.stdout, "%s\n", res.Digest)
	return nil
}
