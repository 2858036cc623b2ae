// Package sink writes files beneath a destination directory without ever
// leaving it, staging each file in a temp file that is renamed on Commit.
package sink

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission used for files created by a FileSink.
const DefaultFileMode fs.FileMode = 0o644

const tempPrefix = ".tms-"

// Committer is a writer that can be committed or discarded.
type Committer interface {
	io.Writer

	// Commit finalizes the write, making content visible at its path.
	Commit() error

	// Discard aborts the write and removes any partial output.
	Discard() error
}

// FileSink writes files under a root directory.
//
// By default, files are written to a temporary file in the same directory
// and renamed to the final path on Commit. This ensures that partially
// written files are never visible at the final path.
type FileSink struct {
	destDir     string
	root        *os.Root
	perm        fs.FileMode
	directWrite bool
}

// Option configures a FileSink.
type Option func(*FileSink)

// WithDirectWrites disables temp files and writes directly to the final path.
func WithDirectWrites(enabled bool) Option {
	return func(s *FileSink) {
		s.directWrite = enabled
	}
}

// WithFileMode sets the permission bits of created files.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *FileSink) {
		s.perm = perm.Perm()
	}
}

// Open creates destDir if needed and returns a FileSink confined to it.
// The caller must Close the sink.
func Open(destDir string, opts ...Option) (*FileSink, error) {
	s := &FileSink{destDir: destDir, perm: DefaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	s.root = root
	return s, nil
}

// Close releases the destination root.
func (s *FileSink) Close() error {
	return s.root.Close()
}

// Dir returns the destination directory.
func (s *FileSink) Dir() string {
	return s.destDir
}

// Exists reports whether something already exists at the slash-separated path.
func (s *FileSink) Exists(path string) (bool, error) {
	if !fs.ValidPath(path) {
		return false, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrInvalid}
	}
	_, err := s.root.Lstat(filepath.FromSlash(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFile writes content to path and commits it.
func (s *FileSink) WriteFile(path string, content []byte) error {
	c, err := s.Writer(path)
	if err != nil {
		return err
	}
	if _, err := c.Write(content); err != nil {
		_ = c.Discard() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", path, err)
	}
	return c.Commit()
}

// Writer returns a Committer for the slash-separated path, creating
// parent directories as needed.
func (s *FileSink) Writer(path string) (Committer, error) {
	if !fs.ValidPath(path) || path == "." {
		return nil, &fs.PathError{Op: "create", Path: path, Err: fs.ErrInvalid}
	}
	destRel := filepath.FromSlash(path)
	destPath := filepath.Join(s.destDir, destRel)

	if err := s.root.MkdirAll(filepath.Dir(destRel), 0o750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", filepath.Dir(destPath), err)
	}

	if s.directWrite {
		file, err := s.root.OpenFile(destRel, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, s.perm)
		if err != nil {
			return nil, fmt.Errorf("create file %s: %w", destPath, err)
		}
		return &directCommitter{destPath: destPath, destRel: destRel, file: file, root: s.root}, nil
	}

	// Create temp file in same directory (for atomic rename)
	tempFile, tempRel, err := createTempFile(s.root, filepath.Dir(destRel), tempPrefix, s.perm)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &fileCommitter{
		destPath: destPath,
		destRel:  destRel,
		tempFile: tempFile,
		tempRel:  tempRel,
		root:     s.root,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	destPath string
	destRel  string
	tempFile *os.File
	tempRel  string
	root     *os.Root
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file and renames it to the final path.
func (c *fileCommitter) Commit() error {
	if err := c.tempFile.Close(); err != nil {
		_ = c.root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename to final path
	if err := c.root.Rename(c.tempRel, c.destRel); err != nil {
		_ = c.root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destPath, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
	return c.root.Remove(c.tempRel)
}

// directCommitter writes directly to the final path.
type directCommitter struct {
	destPath string
	destRel  string
	file     *os.File
	root     *os.Root
}

// Write implements io.Writer.
func (c *directCommitter) Write(p []byte) (int, error) {
	return c.file.Write(p)
}

// Commit closes the file.
func (c *directCommitter) Commit() error {
	if err := c.file.Close(); err != nil {
		_ = c.root.Remove(c.destRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close file %s: %w", c.destPath, err)
	}
	return nil
}

// Discard closes and removes the file.
func (c *directCommitter) Discard() error {
	_ = c.file.Close() //nolint:errcheck // best-effort cleanup
	return c.root.Remove(c.destRel)
}

func createTempFile(root *os.Root, dir, prefix string, perm fs.FileMode) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
