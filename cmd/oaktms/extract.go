package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meigma/oaktms"
)

func runExtract(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("extract", e)
	dir := fs.StringP("directory", "d", "", "directory to extract to (default: archive name without extension)")
	force := fs.BoolP("force", "f", false, "overwrite existing files without prompting")
	list := fs.BoolP("list", "l", false, "only list archive contents")
	workers := fs.IntP("workers", "w", 1, "goroutines used to inflate chunks")
	verbose := fs.CountP("verbose", "v", "verbose output (repeat for format details)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	file, err := oneArg(fs, "archive")
	if err != nil {
		return err
	}

	log := newLogger(e.stderr, *verbose)
	a, err := oaktms.Open(ctx, file, oaktms.ReadWithLogger(log), oaktms.ReadWithWorkers(*workers))
	if err != nil {
		return err
	}
	if *list {
		printPaths(e, file, a, *verbose > 0)
		return nil
	}

	dest := *dir
	if dest == "" {
		dest = defaultExtractDir(file)
	}
	opts := []oaktms.ExtractOption{
		oaktms.ExtractWithLogger(log),
		oaktms.ExtractWithOverwrite(*force),
		oaktms.ExtractWithPrompt(e.prompter().overwrite()),
	}
	stats, err := a.Extract(ctx, dest, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Extracted %s to %s (%d written, %d skipped)\n", file, dest, stats.Written, stats.Skipped)
	return nil
}

// defaultExtractDir strips the extension from the archive name, or
// returns "." when there is none.
func defaultExtractDir(file string) string {
	dir := strings.TrimSuffix(file, filepath.Ext(file))
	if dir == file || dir == "" {
		return "."
	}
	return dir
}
