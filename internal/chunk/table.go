package chunk

import (
	"fmt"

	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/format"
	"github.com/meigma/oaktms/internal/sizing"
)

// Descriptor records the stored and inflated size of one chunk.
type Descriptor struct {
	CompressedSize   uint64
	UncompressedSize uint64
}

// DecodeTable reads descriptors until their compressed sizes reach
// totalCompressed.
//
// Every descriptor before the last must leave both running sums strictly
// below the declared totals, and the last must bring the uncompressed sum to
// totalUncompressed exactly. Zero totals mean an archive without chunks.
func DecodeTable(r *cursor.Reader, totalCompressed, totalUncompressed uint64) ([]Descriptor, error) {
	if totalCompressed == 0 {
		if totalUncompressed != 0 {
			return nil, fmt.Errorf("%w: %d uncompressed bytes declared without compressed data",
				format.ErrSizeMismatch, totalUncompressed)
		}
		return nil, nil
	}

	var (
		descs  []Descriptor
		comp   uint64
		uncomp uint64
		ok     bool
	)
	for i := 0; ; i++ {
		c, err := r.Uint64()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		u, err := r.Uint64()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if c == 0 {
			return nil, fmt.Errorf("%w: chunk %d has no compressed bytes", format.ErrSizeMismatch, i)
		}
		if comp, ok = sizing.AddUint64(comp, c); !ok {
			return nil, fmt.Errorf("%w: chunk %d compressed size overflows", format.ErrSizeMismatch, i)
		}
		if uncomp, ok = sizing.AddUint64(uncomp, u); !ok {
			return nil, fmt.Errorf("%w: chunk %d uncompressed size overflows", format.ErrSizeMismatch, i)
		}
		descs = append(descs, Descriptor{CompressedSize: c, UncompressedSize: u})

		if comp == totalCompressed {
			if uncomp != totalUncompressed {
				return nil, fmt.Errorf("%w: chunks inflate to %d bytes, header declares %d",
					format.ErrSizeMismatch, uncomp, totalUncompressed)
			}
			return descs, nil
		}
		if comp > totalCompressed {
			return nil, fmt.Errorf("%w: chunk %d overruns compressed total (%d > %d)",
				format.ErrSizeMismatch, i, comp, totalCompressed)
		}
		if uncomp >= totalUncompressed {
			return nil, fmt.Errorf("%w: chunk %d reaches uncompressed total (%d of %d) before compressed total",
				format.ErrSizeMismatch, i, uncomp, totalUncompressed)
		}
	}
}

// EncodeTable writes descriptors in order. No terminator is written.
func EncodeTable(w *cursor.Writer, descs []Descriptor) {
	for _, d := range descs {
		w.Uint64(d.CompressedSize)
		w.Uint64(d.UncompressedSize)
	}
}

// Sum returns the compressed and uncompressed totals of descs.
// ok is false if either total overflows.
func Sum(descs []Descriptor) (compressed, uncompressed uint64, ok bool) {
	ok = true
	for _, d := range descs {
		if compressed, ok = sizing.AddUint64(compressed, d.CompressedSize); !ok {
			return 0, 0, false
		}
		if uncompressed, ok = sizing.AddUint64(uncompressed, d.UncompressedSize); !ok {
			return 0, 0, false
		}
	}
	return compressed, uncompressed, true
}
