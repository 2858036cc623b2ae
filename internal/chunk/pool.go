package chunk

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// writerPool manages reusable zlib writers at a fixed level.
type writerPool struct {
	level int
	pool  sync.Pool
}

func newWriterPool(level int) *writerPool {
	return &writerPool{level: level}
}

// Get returns a writer targeting w.
// The caller must call the returned release function when done.
func (p *writerPool) Get(w io.Writer) (*zlib.Writer, func(), error) {
	if v, ok := p.pool.Get().(*zlib.Writer); ok {
		v.Reset(w)
		return v, func() { p.pool.Put(v) }, nil
	}
	zw, err := zlib.NewWriterLevel(w, p.level)
	if err != nil {
		return nil, nil, err
	}
	return zw, func() { p.pool.Put(zw) }, nil
}

// readerPool manages reusable zlib readers.
type readerPool struct {
	pool sync.Pool
}

// Get returns a reader inflating from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *readerPool) Get(r io.Reader) (io.ReadCloser, func(), error) {
	if v, ok := p.pool.Get().(io.ReadCloser); ok {
		if resetter, ok := v.(zlib.Resetter); ok {
			if err := resetter.Reset(r, nil); err == nil {
				return v, func() { p.pool.Put(v) }, nil
			}
		}
		// Reset failed, drop this one and create new
		_ = v.Close() //nolint:errcheck // discarding a broken reader
	}
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, func() { p.pool.Put(zr) }, nil
}
