package oaktms

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meigma/oaktms/internal/format"
	"github.com/meigma/oaktms/internal/sink"
	"github.com/meigma/oaktms/internal/sortorder"
	"github.com/meigma/oaktms/internal/tree"
)

// Create packs the regular files under dir into an archive written to w.
//
// Create walks dir recursively. Empty directories are not preserved and
// symbolic links are not followed. Files are ordered so that OakGame/TMS
// comes before its siblings, and each stored path is the configured
// prefix joined with the path relative to dir.
//
// Create reads every file into memory before writing.
func Create(ctx context.Context, dir string, w io.Writer, opts ...CreateOption) (*Result, error) {
	cfg := newCreateConfig(opts)
	files, err := collect(ctx, dir, &cfg)
	if err != nil {
		return nil, err
	}
	return encode(ctx, w, files, &cfg, time.Now)
}

// CreateFile packs dir into the archive file at outPath.
//
// The archive is written to a temporary file next to outPath and renamed
// into place once complete, replacing any existing file. On failure no
// output file is left behind. Source files are read before the
// temporary file is created, so outPath may lie inside dir.
func CreateFile(ctx context.Context, dir, outPath string, opts ...CreateOption) (*Result, error) {
	cfg := newCreateConfig(opts)
	files, err := collect(ctx, dir, &cfg)
	if err != nil {
		return nil, err
	}

	s, err := sink.Open(filepath.Dir(outPath))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	out, err := s.Writer(filepath.Base(outPath))
	if err != nil {
		return nil, err
	}
	res, err := encode(ctx, out, files, &cfg, time.Now)
	if err != nil {
		_ = out.Discard() //nolint:errcheck // best-effort cleanup
		return nil, err
	}
	if err := out.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// collect reads the files under dir in archive order and applies the prefix.
func collect(ctx context.Context, dir string, cfg *createConfig) ([]File, error) {
	log := cfg.log()
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	log.Info("collecting files", "dir", dir)
	entries, err := tree.Collect(ctx, root, log, func(path string, size, count int) {
		cfg.progress.report(ProgressEvent{Stage: StageEnumerating, Path: path, BytesDone: uint64(size), FilesDone: count}) //nolint:gosec // size is non-negative
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, dir)
	}

	files := make([]File, len(entries))
	for i, e := range entries {
		files[i] = File{Path: joinPrefix(cfg.prefix, e.Path), Content: e.Content}
	}
	// The prefix may itself end in the OakGame segment.
	sortorder.SortFunc(files, func(f File) string { return f.Path })
	for _, f := range files {
		log.Debug("file", "path", f.Path, "size", len(f.Content))
	}
	return files, nil
}

// joinPrefix joins prefix and a slash-separated relative path, converting
// any backslashes in prefix to slashes.
func joinPrefix(prefix, rel string) string {
	prefix = strings.TrimSuffix(strings.ReplaceAll(prefix, `\`, format.Separator), format.Separator)
	if prefix == "" {
		return rel
	}
	return prefix + format.Separator + rel
}
