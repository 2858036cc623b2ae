// Package filetable encodes and decodes the flat file table stored in a
// decompressed TMS payload.
//
// Each entry is a length-prefixed path string, a uint32 content length and
// the raw content, with no padding between entries.
package filetable

import (
	"bytes"
	"fmt"
	"math"

	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/format"
)

// Entry is one file stored in the table.
type Entry struct {
	Path    string
	Content []byte
}

// Decode reads count entries from payload. The entries must account for
// every byte of payload. Entry contents alias payload.
func Decode(payload []byte, count uint32) ([]Entry, error) {
	r := cursor.NewReader(bytes.NewReader(payload))
	entries := make([]Entry, 0, min(count, 1<<16))
	for i := range count {
		path, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("entry %d path: %w", i, err)
		}
		n, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s) length: %w", i, path, err)
		}
		start := r.Offset()
		if uint64(n) > uint64(int64(len(payload))-start) { //nolint:gosec // start <= len(payload)
			return nil, fmt.Errorf("%w: entry %d (%s) claims %d bytes, %d remain",
				format.ErrTruncated, i, path, n, int64(len(payload))-start)
		}
		if err := r.Skip(int64(n)); err != nil {
			return nil, fmt.Errorf("entry %d (%s) content: %w", i, path, err)
		}
		entries = append(entries, Entry{Path: path, Content: payload[start : start+int64(n)]})
	}
	if r.Offset() != int64(len(payload)) {
		return nil, fmt.Errorf("%w: file table ends at %d of %d payload bytes",
			format.ErrSizeMismatch, r.Offset(), len(payload))
	}
	return entries, nil
}

// Encode writes entries back to back in the given order.
func Encode(w *cursor.Writer, entries []Entry) error {
	for _, e := range entries {
		if uint64(len(e.Content)) > math.MaxUint32 {
			return fmt.Errorf("%w: %s is %d bytes", format.ErrSizeOverflow, e.Path, len(e.Content))
		}
		w.String(e.Path)
		w.Uint32(uint32(len(e.Content))) //nolint:gosec // bounded above
		w.Bytes(e.Content)
	}
	return w.Err()
}

// EncodedLen returns the number of bytes Encode writes for entries.
func EncodedLen(entries []Entry) uint64 {
	var n uint64
	for _, e := range entries {
		n += cursor.EncodedStringLen(e.Path) + 4 + uint64(len(e.Content))
	}
	return n
}
