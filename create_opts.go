package oaktms

import (
	"log/slog"
	"slices"
	"time"

	"github.com/klauspost/compress/zlib"
)

// TimestampLayout is the layout of the timestamp written as the first
// footer string.
const TimestampLayout = "01/02/06 15:04:05"

// DefaultFooterTags returns the tag strings written after the timestamp.
func DefaultFooterTags() []string {
	return []string{"cbauer", "CBAUER-Q42"}
}

// CreateOption configures Encode, Create and CreateFile.
type CreateOption func(*createConfig)

type createConfig struct {
	magic     uint64
	chunkSize uint64
	prefix    string
	timestamp time.Time
	tags      []string
	num1      uint32
	num2      uint32
	footer    *Footer
	level     int
	workers   int
	logger    *slog.Logger
	progress  ProgressFunc
}

func newCreateConfig(opts []CreateOption) createConfig {
	cfg := createConfig{
		magic:     Magic,
		chunkSize: DefaultChunkSize,
		prefix:    DefaultPrefix,
		tags:      DefaultFooterTags(),
		level:     zlib.DefaultCompression,
		workers:   1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// footerFor returns the footer to write. A verbatim footer wins over the
// timestamp, tags and numbers.
func (c *createConfig) footerFor(now func() time.Time) Footer {
	if c.footer != nil {
		return Footer{
			Strings: slices.Clone(c.footer.Strings),
			Num1:    c.footer.Num1,
			Num2:    c.footer.Num2,
		}
	}
	ts := c.timestamp
	if ts.IsZero() {
		ts = now()
	}
	strs := make([]string, 0, 1+len(c.tags))
	strs = append(strs, ts.Format(TimestampLayout))
	strs = append(strs, c.tags...)
	return Footer{Strings: strs, Num1: c.num1, Num2: c.num2}
}

func (c *createConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// CreateWithMagic sets the header constant. The default is Magic.
func CreateWithMagic(magic uint64) CreateOption {
	return func(c *createConfig) {
		c.magic = magic
	}
}

// CreateWithChunkSize sets the uncompressed chunk size.
// The default is DefaultChunkSize. Zero is rejected with ErrChunkSize.
func CreateWithChunkSize(size uint64) CreateOption {
	return func(c *createConfig) {
		c.chunkSize = size
	}
}

// CreateWithPrefix sets the prefix joined in front of every path collected
// by Create and CreateFile. The default is DefaultPrefix; "" stores
// paths relative to the source directory. Encode stores paths as given.
func CreateWithPrefix(prefix string) CreateOption {
	return func(c *createConfig) {
		c.prefix = prefix
	}
}

// CreateWithTimestamp sets the time written as the first footer string.
// The default is the current time, so pass a fixed time for reproducible
// output.
func CreateWithTimestamp(t time.Time) CreateOption {
	return func(c *createConfig) {
		c.timestamp = t
	}
}

// CreateWithFooterTags sets the footer strings written after the
// timestamp. The default is DefaultFooterTags.
func CreateWithFooterTags(tags ...string) CreateOption {
	return func(c *createConfig) {
		c.tags = slices.Clone(tags)
	}
}

// CreateWithFooterNumbers sets the two trailing footer numbers.
// Both default to zero.
func CreateWithFooterNumbers(num1, num2 uint32) CreateOption {
	return func(c *createConfig) {
		c.num1 = num1
		c.num2 = num2
	}
}

// CreateWithFooter writes f verbatim, ignoring the timestamp, tag and
// number options. Use it to repack an archive with its original footer.
func CreateWithFooter(f Footer) CreateOption {
	return func(c *createConfig) {
		c.footer = &Footer{Strings: slices.Clone(f.Strings), Num1: f.Num1, Num2: f.Num2}
	}
}

// CreateWithLevel sets the zlib compression level.
// The default is zlib.DefaultCompression.
func CreateWithLevel(level int) CreateOption {
	return func(c *createConfig) {
		c.level = level
	}
}

// CreateWithWorkers sets the number of goroutines compressing chunks.
// Values <= 1 compress sequentially. Output does not depend on the value.
func CreateWithWorkers(n int) CreateOption {
	return func(c *createConfig) {
		c.workers = n
	}
}

// CreateWithLogger sets a logger for packing diagnostics.
// If not set, logging is disabled.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(c *createConfig) {
		c.logger = logger
	}
}

// CreateWithProgress sets a callback to receive progress updates.
// The callback is invoked synchronously; keep it fast.
func CreateWithProgress(fn ProgressFunc) CreateOption {
	return func(c *createConfig) {
		c.progress = fn
	}
}
