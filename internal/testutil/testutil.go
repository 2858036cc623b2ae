// Package testutil builds archives and directory trees for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// Magic is the standard header constant.
const Magic uint64 = 0x9E2A83C1

// RawEntry is a file table entry written verbatim.
type RawEntry struct {
	Path    string
	Content []byte
	// UTF16 stores Path with a negative length prefix as UTF-16LE.
	UTF16 bool
}

// RawArchive assembles archive bytes without any validation, so tests can
// produce malformed input. Zero values select consistent defaults.
type RawArchive struct {
	Magic     uint64
	ChunkSize uint64
	Entries   []RawEntry

	// FooterStrings and the numbers make up the footer.
	FooterStrings []string
	Num1, Num2    uint32

	// Total32, Total64 and FileCount override the header fields when set.
	Total32   *uint32
	Total64   *uint64
	FileCount *uint32

	// Trailing is appended after the footer.
	Trailing []byte
}

// Payload returns the uncompressed file table.
func (a RawArchive) Payload() []byte {
	var buf []byte
	for _, e := range a.Entries {
		if e.UTF16 {
			buf = AppendUTF16(buf, e.Path)
		} else {
			buf = AppendUTF8(buf, e.Path)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Content))) //nolint:gosec // test data
		buf = append(buf, e.Content...)
	}
	return buf
}

// Bytes returns the encoded archive.
func (a RawArchive) Bytes() []byte {
	magic := a.Magic
	if magic == 0 {
		magic = Magic
	}
	chunkSize := a.ChunkSize
	if chunkSize == 0 {
		chunkSize = 128 << 10
	}
	payload := a.Payload()

	var chunks [][]byte
	var sizes []uint64
	for rest := payload; len(rest) > 0; {
		n := min(uint64(len(rest)), chunkSize)
		chunks = append(chunks, Deflate(rest[:n]))
		sizes = append(sizes, n)
		rest = rest[n:]
	}
	var totalComp uint64
	for _, c := range chunks {
		totalComp += uint64(len(c))
	}

	total32 := uint32(len(payload)) //nolint:gosec // test data
	if a.Total32 != nil {
		total32 = *a.Total32
	}
	total64 := uint64(len(payload))
	if a.Total64 != nil {
		total64 = *a.Total64
	}
	count := uint32(len(a.Entries)) //nolint:gosec // test data
	if a.FileCount != nil {
		count = *a.FileCount
	}

	le := binary.LittleEndian
	var out []byte
	out = le.AppendUint32(out, total32)
	out = le.AppendUint32(out, count)
	out = le.AppendUint64(out, magic)
	out = le.AppendUint64(out, chunkSize)
	out = le.AppendUint64(out, totalComp)
	out = le.AppendUint64(out, total64)
	for i, c := range chunks {
		out = le.AppendUint64(out, uint64(len(c)))
		out = le.AppendUint64(out, sizes[i])
	}
	for _, c := range chunks {
		out = append(out, c...)
	}
	out = le.AppendUint32(out, uint32(len(a.FooterStrings))) //nolint:gosec // test data
	for _, s := range a.FooterStrings {
		out = AppendUTF8(out, s)
	}
	out = le.AppendUint32(out, a.Num1)
	out = le.AppendUint32(out, a.Num2)
	return append(out, a.Trailing...)
}

// AppendUTF8 appends s with a positive length prefix and NUL terminator.
func AppendUTF8(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)+1)) //nolint:gosec // test data
	b = append(b, s...)
	return append(b, 0)
}

// AppendUTF16 appends s as UTF-16LE with a negative length prefix and a
// two-byte NUL terminator.
func AppendUTF16(b []byte, s string) []byte {
	units := utf16.Encode([]rune(s))
	n := int32(len(units) + 1) //nolint:gosec // test data
	b = binary.LittleEndian.AppendUint32(b, uint32(-n))
	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return append(b, 0, 0)
}

// Deflate compresses p as one zlib stream.
func Deflate(p []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(p); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// WriteTree creates files under dir from a map of slash-separated paths
// to contents.
func WriteTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(tb, os.WriteFile(p, []byte(content), 0o644))
	}
}

// ReadTree returns every regular file under dir keyed by slash-separated
// relative path.
func ReadTree(tb testing.TB, dir string) map[string]string {
	tb.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(tb, err)
	return out
}
