// Command oaktms extracts, lists, packs and inspects TMS archives.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/meigma/oaktms"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	e := &env{
		stdin:       bufio.NewReader(os.Stdin),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())), //nolint:gosec // fd fits int
	}
	err := run(ctx, os.Args[1:], e)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", oaktms.KindOf(err), err)
		os.Exit(1)
	}
}

// env carries the process streams so commands can be tested.
type env struct {
	stdin       *bufio.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
}

func (e *env) prompter() *prompter {
	return &prompter{in: e.stdin, out: e.stdout, interactive: e.interactive}
}

type command struct {
	name    string
	summary string
	run     func(context.Context, []string, *env) error
}

func commands() []command {
	return []command{
		{"extract", "extract an archive", runExtract},
		{"list", "list the files in an archive", runList},
		{"pack", "pack a directory into an archive", runPack},
		{"inspect", "print archive metadata as YAML", runInspect},
		{"locres", "print a .locres string table", runLocres},
	}
}

func run(ctx context.Context, args []string, e *env) error {
	if len(args) == 0 {
		usage(e.stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "-h", "--help", "help":
		usage(e.stdout)
		return nil
	}
	for _, c := range commands() {
		if c.name == args[0] {
			err := c.run(ctx, args[1:], e)
			if errors.Is(err, pflag.ErrHelp) {
				return nil
			}
			return err
		}
	}
	usage(e.stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: oaktms <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, e *env) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.SortFlags = false
	return fs
}

// newLogger returns a text logger on w. Verbosity 0 logs warnings,
// 1 adds per-file progress and 2 adds format details.
func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// oneArg returns the single positional argument.
func oneArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}
