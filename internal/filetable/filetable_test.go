package filetable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/format"
)

func encode(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(cursor.NewWriter(&buf), entries))
	require.Equal(t, EncodedLen(entries), uint64(buf.Len()))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Path: "../../../OakGame/TMS/a.txt", Content: []byte("alpha")},
		{Path: "../../../OakGame/Content/ünï.txt", Content: []byte{}},
		{Path: "../../../OakGame/Content/b.bin", Content: []byte{0, 1, 2, 3, 0}},
	}
	payload := encode(t, entries)

	got, err := Decode(payload, uint32(len(entries)))
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Path, got[i].Path)
		assert.Equal(t, entries[i].Content, got[i].Content)
	}
}

func TestDecodeLayout(t *testing.T) {
	t.Parallel()

	payload := encode(t, []Entry{{Path: "a", Content: []byte("xyz")}})
	want := []byte{
		2, 0, 0, 0, 'a', 0,
		3, 0, 0, 0,
		'x', 'y', 'z',
	}
	assert.Equal(t, want, payload)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	payload := encode(t, []Entry{
		{Path: "one", Content: []byte("1111")},
		{Path: "two", Content: []byte("22")},
	})

	t.Run("trailing bytes", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(append(bytes.Clone(payload), 0), 2)
		require.ErrorIs(t, err, format.ErrSizeMismatch)
	})

	t.Run("fewer entries than payload", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(payload, 1)
		require.ErrorIs(t, err, format.ErrSizeMismatch)
	})

	t.Run("more entries than payload", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(payload, 3)
		require.ErrorIs(t, err, format.ErrTruncated)
	})

	t.Run("content overruns payload", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(payload[:len(payload)-1], 2)
		require.ErrorIs(t, err, format.ErrTruncated)
	})
}

func TestEncodeRejectsInvalidPath(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Encode(cursor.NewWriter(&buf), []Entry{{Path: "bad\xff", Content: nil}})
	require.ErrorIs(t, err, format.ErrTextDecode)
}
