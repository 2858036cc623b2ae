// Package tree collects the regular files under a directory for packing.
package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/meigma/oaktms/internal/filetable"
	"github.com/meigma/oaktms/internal/format"
	"github.com/meigma/oaktms/internal/sortorder"
)

var errSymlink = errors.New("symbolic links not supported")

// VisitFunc is called after each file is read.
type VisitFunc func(path string, size int, count int)

// Collect reads every regular file under root. Paths are slash-separated
// and relative to root, and the result is in deterministic archive order.
// Symbolic links and other non-regular entries are skipped. Files larger
// than a uint32 length are rejected.
func Collect(ctx context.Context, root *os.Root, log *slog.Logger, visit VisitFunc) ([]filetable.Entry, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var entries []filetable.Entry
	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fsPath := filepath.FromSlash(path)
		ok, err := isRegular(root, fsPath, d)
		if err != nil {
			return err
		}
		if !ok {
			log.Debug("skipping non-regular entry", "path", path, "type", d.Type().String())
			return nil
		}
		content, err := readFile(root, fsPath)
		if errors.Is(err, errSymlink) {
			log.Debug("skipping symlink", "path", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		entries = append(entries, filetable.Entry{Path: path, Content: content})
		if visit != nil {
			visit(path, len(content), len(entries))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortorder.SortFunc(entries, func(e filetable.Entry) string { return e.Path })
	return entries, nil
}

// isRegular reports whether d is a regular file, resolving the type with
// Lstat when the directory listing does not carry it.
func isRegular(root *os.Root, fsPath string, d fs.DirEntry) (bool, error) {
	dtype := d.Type()
	if dtype&fs.ModeSymlink != 0 {
		return false, nil
	}
	if dtype == 0 {
		info, err := root.Lstat(fsPath)
		if err != nil {
			return false, err
		}
		return info.Mode().IsRegular(), nil
	}
	return dtype.IsRegular(), nil
}

func readFile(root *os.Root, fsPath string) ([]byte, error) {
	f, err := openNoFollow(root, fsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", fsPath)
	}
	if info.Size() > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", format.ErrSizeOverflow, info.Size())
	}
	// Read through a limit so a file growing under us cannot exceed the field.
	content, err := io.ReadAll(io.LimitReader(f, math.MaxUint32+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(content)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", format.ErrSizeOverflow, len(content))
	}
	return content, nil
}
