package oaktms

import (
	"io/fs"
	"log/slog"
)

// Decision is the answer to an overwrite prompt.
type Decision uint8

const (
	// Skip leaves the existing file in place.
	Skip Decision = iota

	// Overwrite replaces the existing file.
	Overwrite

	// OverwriteAll replaces this and every later existing file without asking.
	OverwriteAll

	// Abort stops extraction with ErrAborted.
	Abort
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case OverwriteAll:
		return "overwrite-all"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// OverwriteFunc decides what to do with an existing file. path is the
// normalized archive path; dest is the file on disk.
type OverwriteFunc func(path, dest string) (Decision, error)

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	overwrite   bool
	prompt      OverwriteFunc
	directWrite bool
	fileMode    fs.FileMode
	logger      *slog.Logger
	progress    ProgressFunc
}

// ExtractWithOverwrite replaces existing files without consulting the prompt.
// By default, existing files are skipped unless a prompt says otherwise.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithPrompt sets the function consulted for each existing file.
func ExtractWithPrompt(fn OverwriteFunc) ExtractOption {
	return func(c *extractConfig) {
		c.prompt = fn
	}
}

// ExtractWithDirectWrites writes files in place instead of through a
// temporary file and rename. A failure may then leave a partial file.
func ExtractWithDirectWrites(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.directWrite = enabled
	}
}

// ExtractWithFileMode sets the permission bits of extracted files.
// The default is 0644.
func ExtractWithFileMode(mode fs.FileMode) ExtractOption {
	return func(c *extractConfig) {
		c.fileMode = mode
	}
}

// ExtractWithLogger sets a logger for extraction diagnostics.
// If not set, logging is disabled.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = logger
	}
}

// ExtractWithProgress sets a callback to receive progress updates.
// The callback is invoked synchronously; keep it fast.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(c *extractConfig) {
		c.progress = fn
	}
}
