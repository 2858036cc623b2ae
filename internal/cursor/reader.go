package cursor

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/oaktms/internal/format"
	"github.com/meigma/oaktms/internal/sizing"
)

// Reader decodes fields sequentially from an io.Reader and tracks the
// number of bytes consumed.
type Reader struct {
	r   io.Reader
	off int64
	buf [8]byte
}

// NewReader returns a Reader positioned at the start of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (c *Reader) Offset() int64 {
	return c.off
}

func (c *Reader) fixed(n int, what string) ([]byte, error) {
	b := c.buf[:n]
	got, err := io.ReadFull(c.r, b)
	c.off += int64(got)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %s at offset %d", format.ErrTruncated, what, c.off-int64(got))
		}
		return nil, err
	}
	return b, nil
}

// Uint32 reads a little-endian uint32.
func (c *Reader) Uint32() (uint32, error) {
	b, err := c.fixed(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian int32.
func (c *Reader) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err //nolint:gosec // two's complement reinterpretation is intended
}

// Uint64 reads a little-endian uint64.
func (c *Reader) Uint64() (uint64, error) {
	b, err := c.fixed(8, "uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int64 reads a little-endian int64.
func (c *Reader) Int64() (int64, error) {
	v, err := c.Uint64()
	return int64(v), err //nolint:gosec // two's complement reinterpretation is intended
}

// Uint8 reads a single byte.
func (c *Reader) Uint8() (uint8, error) {
	b, err := c.fixed(1, "uint8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bytes reads exactly n raw bytes.
func (c *Reader) Bytes(n uint64) ([]byte, error) {
	start := c.off
	b, err := sizing.ReadExact(c.r, n, format.ErrTruncated)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, start, err)
	}
	c.off += int64(len(b))
	return b, nil
}

// Skip discards exactly n bytes.
func (c *Reader) Skip(n int64) error {
	got, err := io.CopyN(io.Discard, c.r, n)
	c.off += got
	if err == io.EOF {
		return fmt.Errorf("%w: skip %d bytes at offset %d", format.ErrTruncated, n, c.off-got)
	}
	return err
}

// String reads a length-prefixed string, selecting the text decoder by the
// sign of the prefix.
func (c *Reader) String() (string, error) {
	start := c.off
	n, err := c.Int32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	dec := DecoderFor(n)
	raw, err := c.Bytes(dec.Size(n))
	if err != nil {
		return "", err
	}
	s, err := dec.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("string at offset %d: %w", start, err)
	}
	return s, nil
}

// AtEOF reports whether the underlying reader is exhausted. If it is not,
// one byte is consumed to find out.
func (c *Reader) AtEOF() (bool, error) {
	var b [1]byte
	n, err := io.ReadFull(c.r, b[:])
	c.off += int64(n)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
