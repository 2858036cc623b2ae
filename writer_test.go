package oaktms

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2022, time.March, 1, 12, 30, 45, 0, time.UTC)

func sampleFiles() []File {
	return []File{
		{Path: "../../../OakGame/TMS/a.txt", Content: []byte("alpha")},
		{Path: "../../../OakGame/Content/b.txt", Content: bytes.Repeat([]byte("bravo "), 100)},
		{Path: "../../../OakGame/Config/empty.ini", Content: nil},
	}
}

func encodeBytes(t *testing.T, files []File, opts ...CreateOption) ([]byte, *Result) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]CreateOption{CreateWithTimestamp(fixedTime)}, opts...)
	res, err := Encode(context.Background(), &buf, files, opts...)
	require.NoError(t, err)
	return buf.Bytes(), res
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	data, res := encodeBytes(t, sampleFiles())
	assert.Equal(t, 3, res.FileCount)
	assert.Equal(t, int64(len(data)), res.Size)

	a, err := Read(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	h := a.Header()
	assert.Equal(t, Magic, h.Magic)
	assert.Equal(t, uint64(DefaultChunkSize), h.ChunkSize)
	assert.Equal(t, uint32(3), h.FileCount)
	assert.Equal(t, res.TotalUncompressedSize, uint64(h.TotalUncompressedSize))
	assert.Equal(t, res.TotalCompressedSize, h.TotalCompressedSize)
	assert.Equal(t, res.Chunks, a.Chunks())

	assert.Equal(t, "../../../", a.CommonPrefix())
	assert.Equal(t, []string{
		"OakGame/TMS/a.txt",
		"OakGame/Content/b.txt",
		"OakGame/Config/empty.ini",
	}, a.Paths())

	for i, f := range sampleFiles() {
		assert.Equal(t, f.Path, res.Paths[i])
		got := a.File(i)
		assert.Equal(t, f.Path, a.StoredPath(got.Path))
		assert.Equal(t, len(f.Content), len(got.Content))
		if len(f.Content) > 0 {
			assert.Equal(t, f.Content, got.Content)
		}
	}

	assert.Equal(t, Footer{
		Strings: []string{"03/01/22 12:30:45", "cbauer", "CBAUER-Q42"},
	}, a.Footer())
	assert.Equal(t, res.Footer, a.Footer())
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	files := sampleFiles()
	first, _ := encodeBytes(t, files, CreateWithChunkSize(64))
	second, _ := encodeBytes(t, files, CreateWithChunkSize(64))
	parallel, _ := encodeBytes(t, files, CreateWithChunkSize(64), CreateWithWorkers(4))

	assert.Equal(t, first, second)
	assert.Equal(t, first, parallel)
}

func TestEncodeChunking(t *testing.T) {
	t.Parallel()

	data, res := encodeBytes(t, sampleFiles(), CreateWithChunkSize(100))
	require.Greater(t, len(res.Chunks), 1)

	var total uint64
	for i, c := range res.Chunks {
		if i < len(res.Chunks)-1 {
			assert.Equal(t, uint64(100), c.UncompressedSize)
		} else {
			assert.LessOrEqual(t, c.UncompressedSize, uint64(100))
			assert.Positive(t, c.UncompressedSize)
		}
		total += c.UncompressedSize
	}
	assert.Equal(t, res.TotalUncompressedSize, total)
	assert.Equal(t, digest.FromBytes(data), res.Digest)

	a, err := Read(context.Background(), bytes.NewReader(data), ReadWithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a.Header().ChunkSize)
	assert.Equal(t, res.Chunks, a.Chunks())
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []File
		opts  []CreateOption
		want  error
	}{
		{name: "no files", files: nil, want: ErrNoFiles},
		{name: "zero chunk size", files: sampleFiles(), opts: []CreateOption{CreateWithChunkSize(0)}, want: ErrChunkSize},
		{name: "invalid path text", files: []File{{Path: "bad\xff", Content: []byte("x")}}, want: ErrTextDecode},
		{name: "invalid footer text", files: sampleFiles(), opts: []CreateOption{CreateWithFooterTags("\xfe")}, want: ErrTextDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := Encode(context.Background(), &buf, tt.files, tt.opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeBadLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Encode(context.Background(), &buf, sampleFiles(), CreateWithLevel(42))
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestEncodeFooterOptions(t *testing.T) {
	t.Parallel()

	data, _ := encodeBytes(t, sampleFiles(),
		CreateWithFooterTags("one", "twö"),
		CreateWithFooterNumbers(7, 9),
		CreateWithMagic(0x1234),
	)
	a, err := Read(context.Background(), bytes.NewReader(data), ReadWithExpectedMagic(0x1234))
	require.NoError(t, err)
	assert.Equal(t, Footer{
		Strings: []string{"03/01/22 12:30:45", "one", "twö"},
		Num1:    7,
		Num2:    9,
	}, a.Footer())
}

func TestEncodeFooterPassthrough(t *testing.T) {
	t.Parallel()

	footer := Footer{Strings: []string{"", "custom"}, Num1: 1, Num2: 2}
	original, _ := encodeBytes(t, sampleFiles(), CreateWithFooter(footer))

	a, err := Read(context.Background(), bytes.NewReader(original))
	require.NoError(t, err)
	assert.Equal(t, footer, a.Footer())

	files := make([]File, 0, a.Len())
	for path, content := range a.Files() {
		files = append(files, File{Path: a.StoredPath(path), Content: content})
	}
	var buf bytes.Buffer
	_, err = Encode(context.Background(), &buf, files, CreateWithFooter(a.Footer()))
	require.NoError(t, err)
	assert.Equal(t, original, buf.Bytes())
}

func TestEncodeDefaultTimestamp(t *testing.T) {
	t.Parallel()

	cfg := newCreateConfig(nil)
	var buf bytes.Buffer
	res, err := encode(context.Background(), &buf, sampleFiles(), &cfg, func() time.Time { return fixedTime })
	require.NoError(t, err)
	assert.Equal(t, []string{"03/01/22 12:30:45", "cbauer", "CBAUER-Q42"}, res.Footer.Strings)
}

func TestEncodeProgress(t *testing.T) {
	t.Parallel()

	var stages []ProgressStage
	_, _ = encodeBytes(t, sampleFiles(), CreateWithChunkSize(64), CreateWithProgress(func(ev ProgressEvent) {
		stages = append(stages, ev.Stage)
	}))
	require.NotEmpty(t, stages)
	assert.Equal(t, StageCompressing, stages[0])
	assert.Equal(t, StageWriting, stages[len(stages)-1])
}
