package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/oaktms"
)

func runList(ctx context.Context, args []string, e *env) error {
	fs := newFlagSet("list", e)
	long := fs.BoolP("long", "l", false, "show size and sha256 digest of each file")
	verbose := fs.CountP("verbose", "v", "verbose output (repeat for format details)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	file, err := oneArg(fs, "archive")
	if err != nil {
		return err
	}

	a, err := oaktms.Open(ctx, file, oaktms.ReadWithLogger(newLogger(e.stderr, *verbose)))
	if err != nil {
		return err
	}
	if !*long {
		printPaths(e, file, a, *verbose > 0)
		return nil
	}

	// Sizes are right-aligned by hand; tabwriter pads the other columns.
	sizes := make([]string, 0, a.Len())
	width := 0
	var total uint64
	for _, content := range a.Files() {
		size := uint64(len(content))
		total += size
		sizes = append(sizes, humanize.IBytes(size))
		width = max(width, len(sizes[len(sizes)-1]))
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	i := 0
	for path, content := range a.Files() {
		fmt.Fprintf(tw, "%*s\t%s\t%s\n", width, sizes[i], digest.FromBytes(content), path)
		i++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%d files, %s\n", a.Len(), humanize.IBytes(total))
	return nil
}

func printPaths(e *env, file string, a *oaktms.Archive, verbose bool) {
	if verbose {
		fmt.Fprintf(e.stdout, "%s contents:\n\n", file)
	}
	for path := range a.Files() {
		fmt.Fprintln(e.stdout, path)
	}
	if verbose {
		fmt.Fprintln(e.stdout)
	}
}
