package cursor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/meigma/oaktms/internal/format"
)

// Writer encodes fields sequentially to an io.Writer.
//
// The first error is sticky: later calls are no-ops and Err reports it.
type Writer struct {
	w   io.Writer
	n   int64
	err error
	buf [8]byte
}

// NewWriter returns a Writer that encodes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (c *Writer) Err() error {
	return c.err
}

// Offset returns the number of bytes written so far.
func (c *Writer) Offset() int64 {
	return c.n
}

// Bytes writes p verbatim.
func (c *Writer) Bytes(p []byte) {
	if c.err != nil {
		return
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		c.err = err
	}
}

// Uint32 writes a little-endian uint32.
func (c *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(c.buf[:4], v)
	c.Bytes(c.buf[:4])
}

// Uint64 writes a little-endian uint64.
func (c *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(c.buf[:8], v)
	c.Bytes(c.buf[:8])
}

// String writes s as NUL-terminated UTF-8 with a positive length prefix
// that counts the terminator.
func (c *Writer) String(s string) {
	if c.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		c.err = fmt.Errorf("%w: %q is not valid UTF-8", format.ErrTextDecode, s)
		return
	}
	if len(s) >= math.MaxInt32 {
		c.err = fmt.Errorf("%w: string of %d bytes", format.ErrSizeOverflow, len(s))
		return
	}
	c.Uint32(uint32(len(s) + 1)) //nolint:gosec // bounded above
	c.Bytes([]byte(s))
	c.Bytes([]byte{0})
}

// EncodedStringLen returns the number of bytes String writes for s.
func EncodedStringLen(s string) uint64 {
	return 4 + uint64(len(s)) + 1
}
