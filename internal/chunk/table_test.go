package chunk

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/format"
)

func encodeTable(t *testing.T, descs ...Descriptor) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := cursor.NewWriter(&buf)
	EncodeTable(w, descs)
	require.NoError(t, w.Err())
	return buf.Bytes()
}

func TestDecodeTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descs      []Descriptor
		comp       uint64
		uncomp     uint64
		want       []Descriptor
		wantErr    error
		wantOffset int64
	}{
		{
			name:   "single chunk",
			descs:  []Descriptor{{10, 100}},
			comp:   10,
			uncomp: 100,
			want:   []Descriptor{{10, 100}},
		},
		{
			name:   "three chunks",
			descs:  []Descriptor{{10, 100}, {11, 100}, {5, 20}},
			comp:   26,
			uncomp: 220,
			want:   []Descriptor{{10, 100}, {11, 100}, {5, 20}},
		},
		{
			name:   "stops at compressed total",
			descs:  []Descriptor{{10, 100}, {99, 99}},
			comp:   10,
			uncomp: 100,
			want:   []Descriptor{{10, 100}},
		},
		{
			name:    "terminal uncompressed short",
			descs:   []Descriptor{{10, 90}},
			comp:    10,
			uncomp:  100,
			wantErr: format.ErrSizeMismatch,
		},
		{
			name:    "uncompressed reached early",
			descs:   []Descriptor{{5, 100}, {5, 0}},
			comp:    10,
			uncomp:  100,
			wantErr: format.ErrSizeMismatch,
		},
		{
			name:    "compressed overrun",
			descs:   []Descriptor{{5, 50}, {6, 50}},
			comp:    10,
			uncomp:  100,
			wantErr: format.ErrSizeMismatch,
		},
		{
			name:    "zero compressed size",
			descs:   []Descriptor{{0, 50}},
			comp:    10,
			uncomp:  100,
			wantErr: format.ErrSizeMismatch,
		},
		{
			name:    "overflow",
			descs:   []Descriptor{{5, math.MaxUint64}, {5, 2}},
			comp:    10,
			uncomp:  math.MaxUint64,
			wantErr: format.ErrSizeMismatch,
		},
		{
			name:    "runs out of table",
			descs:   []Descriptor{{5, 50}},
			comp:    10,
			uncomp:  100,
			wantErr: format.ErrTruncated,
		},
		{
			name:   "empty archive",
			comp:   0,
			uncomp: 0,
		},
		{
			name:    "uncompressed without compressed",
			comp:    0,
			uncomp:  4,
			wantErr: format.ErrSizeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := cursor.NewReader(bytes.NewReader(encodeTable(t, tt.descs...)))
			got, err := DecodeTable(r, tt.comp, tt.uncomp)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(16*len(tt.want)), r.Offset())
		})
	}
}

func TestSum(t *testing.T) {
	t.Parallel()

	comp, uncomp, ok := Sum(nil)
	assert.True(t, ok)
	assert.Zero(t, comp)
	assert.Zero(t, uncomp)

	comp, uncomp, ok = Sum([]Descriptor{{1, 2}, {3, 4}})
	assert.True(t, ok)
	assert.Equal(t, uint64(4), comp)
	assert.Equal(t, uint64(6), uncomp)

	_, _, ok = Sum([]Descriptor{{math.MaxUint64, 0}, {1, 0}})
	assert.False(t, ok)
}
