package oaktms

import "log/slog"

// ReadOption configures Read and Open.
type ReadOption func(*readConfig)

type readConfig struct {
	logger   *slog.Logger
	maxSize  uint64
	workers  int
	magic    uint64
	progress ProgressFunc
}

func defaultReadConfig() readConfig {
	return readConfig{
		maxSize: DefaultMaxSize,
		workers: 1,
		magic:   Magic,
	}
}

// ReadWithLogger sets a logger for header, chunk and footer details.
// Details are logged at debug level. If not set, logging is disabled.
func ReadWithLogger(logger *slog.Logger) ReadOption {
	return func(c *readConfig) {
		c.logger = logger
	}
}

// ReadWithMaxSize limits the total uncompressed payload size.
// Set limit to 0 to disable the limit.
func ReadWithMaxSize(limit uint64) ReadOption {
	return func(c *readConfig) {
		c.maxSize = limit
	}
}

// ReadWithWorkers sets the number of goroutines used to inflate chunks.
// Values <= 1 inflate sequentially.
func ReadWithWorkers(n int) ReadOption {
	return func(c *readConfig) {
		c.workers = n
	}
}

// ReadWithExpectedMagic sets the header constant to accept.
// The default is Magic.
func ReadWithExpectedMagic(magic uint64) ReadOption {
	return func(c *readConfig) {
		c.magic = magic
	}
}

// ReadWithProgress sets a callback to receive progress updates.
// The callback is invoked synchronously; keep it fast.
func ReadWithProgress(fn ProgressFunc) ReadOption {
	return func(c *readConfig) {
		c.progress = fn
	}
}
