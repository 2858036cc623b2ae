package chunk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/format"
	"github.com/meigma/oaktms/internal/sizing"
)

// DefaultMaxSize is the default cap on a decompressed payload (1 GiB).
const DefaultMaxSize = 1 << 30

// ErrChunkSize is returned when a chunk size of zero is requested.
var ErrChunkSize = errors.New("tms: chunk size must be positive")

// Compressed is one compressed chunk and its descriptor.
type Compressed struct {
	Descriptor
	Data []byte
}

// Split cuts payload into contiguous slices of at most size bytes.
// Only the final slice may be shorter. The slices alias payload.
func Split(payload []byte, size uint64) ([][]byte, error) {
	if size == 0 {
		return nil, ErrChunkSize
	}
	parts := make([][]byte, 0, uint64(len(payload))/size+1)
	for rest := payload; len(rest) > 0; {
		n := uint64(len(rest))
		if n > size {
			n = size
		}
		parts = append(parts, rest[:n])
		rest = rest[n:]
	}
	return parts, nil
}

// Compressor deflates payload chunks with zlib.
type Compressor struct {
	workers int
	pool    *writerPool
}

// NewCompressor returns a Compressor using the given zlib level.
// workers <= 1 compresses sequentially.
func NewCompressor(level, workers int) (*Compressor, error) {
	if _, err := zlib.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("zlib level %d: %w", level, err)
	}
	return &Compressor{workers: workers, pool: newWriterPool(level)}, nil
}

// Compress splits payload into chunks of chunkSize and compresses each one
// independently. Chunk order and content never depend on the worker count.
func (c *Compressor) Compress(ctx context.Context, payload []byte, chunkSize uint64) ([]Compressed, error) {
	parts, err := Split(payload, chunkSize)
	if err != nil {
		return nil, err
	}
	out := make([]Compressed, len(parts))
	err = forEach(ctx, len(parts), c.workers, func(i int) error {
		data, err := c.deflate(parts[i])
		if err != nil {
			return fmt.Errorf("compress chunk %d: %w", i, err)
		}
		out[i] = Compressed{
			Descriptor: Descriptor{
				CompressedSize:   uint64(len(data)),
				UncompressedSize: uint64(len(parts[i])),
			},
			Data: data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compressor) deflate(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, release, err := c.pool.Get(&buf)
	if err != nil {
		return nil, err
	}
	defer release()
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompressor inflates chunks read from an archive.
type Decompressor struct {
	workers int
	maxSize uint64
	pool    readerPool
}

// NewDecompressor returns a Decompressor.
// workers <= 1 inflates sequentially; maxSize 0 disables the size cap.
func NewDecompressor(workers int, maxSize uint64) *Decompressor {
	return &Decompressor{workers: workers, maxSize: maxSize}
}

// Decompress reads each chunk's compressed bytes from r in descriptor order
// and inflates them into one payload buffer. Every chunk must inflate to
// exactly its declared size.
func (d *Decompressor) Decompress(ctx context.Context, r *cursor.Reader, descs []Descriptor) ([]byte, error) {
	_, total, ok := Sum(descs)
	if !ok {
		return nil, fmt.Errorf("%w: chunk sizes overflow", format.ErrSizeMismatch)
	}
	if d.maxSize > 0 && total > d.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", format.ErrTooLarge, total, d.maxSize)
	}
	size, err := sizing.ToInt(total, format.ErrTooLarge)
	if err != nil {
		return nil, err
	}

	raw := make([][]byte, len(descs))
	for i, desc := range descs {
		if raw[i], err = r.Bytes(desc.CompressedSize); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	payload := make([]byte, size)
	offsets := make([]int, len(descs))
	off := 0
	for i, desc := range descs {
		offsets[i] = off
		off += int(desc.UncompressedSize) //nolint:gosec // bounded by total
	}

	err = forEach(ctx, len(descs), d.workers, func(i int) error {
		dst := payload[offsets[i] : offsets[i]+int(descs[i].UncompressedSize)] //nolint:gosec // bounded by total
		if err := d.inflate(raw[i], dst); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (d *Decompressor) inflate(raw, dst []byte) error {
	zr, release, err := d.pool.Get(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", format.ErrDecompression, err)
	}
	defer release()

	n, err := io.ReadFull(zr, dst)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: inflated %d of %d bytes", format.ErrDecompression, n, len(dst))
		}
		return fmt.Errorf("%w: %v", format.ErrDecompression, err)
	}

	// The stream must end here; this read also verifies the adler32 trailer.
	var extra [1]byte
	m, err := io.ReadFull(zr, extra[:])
	if m > 0 {
		return fmt.Errorf("%w: inflates past %d bytes", format.ErrDecompression, len(dst))
	}
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", format.ErrDecompression, err)
	}
	return nil
}

// forEach runs fn for every index in [0, n). With workers <= 1 the calls
// happen in order on the calling goroutine.
func forEach(ctx context.Context, n, workers int, fn func(i int) error) error {
	if workers <= 1 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
