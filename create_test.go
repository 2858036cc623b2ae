package oaktms

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/oaktms/internal/testutil"
)

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"OakGame/Content/b.txt":          "bravo",
		"OakGame/TMS/a.txt":              "alpha",
		"OakGame/Config/DefaultGame.ini": "[Game]\nx=1\n",
	})
	return dir
}

func TestCreate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res, err := Create(context.Background(), sampleTree(t), &buf, CreateWithTimestamp(fixedTime))
	require.NoError(t, err)
	assert.Equal(t, 3, res.FileCount)

	a, err := readBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "../../../", a.CommonPrefix())
	assert.Equal(t, []string{
		"OakGame/TMS/a.txt",
		"OakGame/Config/DefaultGame.ini",
		"OakGame/Content/b.txt",
	}, a.Paths())
	assert.Equal(t, "../../../OakGame/TMS/a.txt", a.StoredPath(a.Paths()[0]))
}

func TestCreateDeterministic(t *testing.T) {
	t.Parallel()

	dir := sampleTree(t)
	var first, second bytes.Buffer
	_, err := Create(context.Background(), dir, &first, CreateWithTimestamp(fixedTime))
	require.NoError(t, err)
	_, err = Create(context.Background(), dir, &second, CreateWithTimestamp(fixedTime), CreateWithWorkers(4), CreateWithChunkSize(8))
	require.NoError(t, err)

	var third bytes.Buffer
	_, err = Create(context.Background(), dir, &third, CreateWithTimestamp(fixedTime), CreateWithChunkSize(8))
	require.NoError(t, err)

	assert.NotEqual(t, first.Bytes(), second.Bytes())
	assert.Equal(t, third.Bytes(), second.Bytes())
}

func TestCreatePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix     string
		wantPrefix string
		wantFirst  string
	}{
		{prefix: "", wantPrefix: "", wantFirst: "OakGame/TMS/a.txt"},
		{prefix: "..", wantPrefix: "../", wantFirst: "OakGame/TMS/a.txt"},
		{prefix: `..\..\`, wantPrefix: "../../", wantFirst: "OakGame/TMS/a.txt"},
		{prefix: "base", wantPrefix: "", wantFirst: "base/OakGame/TMS/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := Create(context.Background(), sampleTree(t), &buf, CreateWithPrefix(tt.prefix))
			require.NoError(t, err)
			a, err := readBytes(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, a.CommonPrefix())
			assert.Equal(t, tt.wantFirst, a.Paths()[0])
		})
	}
}

func TestCreatePrefixEndingInOakGame(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"Content/b.txt": "bravo",
		"TMS/a.txt":     "alpha",
	})
	var buf bytes.Buffer
	_, err := Create(context.Background(), dir, &buf, CreateWithPrefix("../OakGame"))
	require.NoError(t, err)
	a, err := readBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"OakGame/TMS/a.txt", "OakGame/Content/b.txt"}, a.Paths())
}

func TestJoinPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, rel, want string
	}{
		{"../../..", "a.txt", "../../../a.txt"},
		{"../../../", "a.txt", "../../../a.txt"},
		{"", "dir/a.txt", "dir/a.txt"},
		{`..\..`, "a.txt", "../../a.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPrefix(tt.prefix, tt.rel))
	}
}

func TestCreateNoFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty", "nested"), 0o755))

	var buf bytes.Buffer
	_, err := Create(context.Background(), dir, &buf)
	require.ErrorIs(t, err, ErrNoFiles)
	assert.Zero(t, buf.Len())
}

func TestCreateMissingDir(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Create(context.Background(), filepath.Join(t.TempDir(), "missing"), &buf)
	require.Error(t, err)
	assert.Equal(t, KindFilesystemError, KindOf(err))
}

func TestCreateProgress(t *testing.T) {
	t.Parallel()

	var enumerated []string
	var buf bytes.Buffer
	_, err := Create(context.Background(), sampleTree(t), &buf, CreateWithProgress(func(ev ProgressEvent) {
		if ev.Stage == StageEnumerating {
			enumerated = append(enumerated, ev.Path)
		}
	}))
	require.NoError(t, err)
	assert.Len(t, enumerated, 3)
}

func TestCreateFile(t *testing.T) {
	t.Parallel()

	dir := sampleTree(t)
	out := filepath.Join(t.TempDir(), "nested", "OakTMS.cfg")

	res, err := CreateFile(context.Background(), dir, out, CreateWithTimestamp(fixedTime))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Size, int64(len(data)))
	assert.Equal(t, digest.FromBytes(data), res.Digest)

	var buf bytes.Buffer
	_, err = Create(context.Background(), dir, &buf, CreateWithTimestamp(fixedTime))
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data)
}

func TestCreateFileReplacesExisting(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "OakTMS.cfg")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	_, err := CreateFile(context.Background(), sampleTree(t), out)
	require.NoError(t, err)

	a, err := Open(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
}

func TestCreateFileFailureLeavesNothing(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	out := filepath.Join(outDir, "OakTMS.cfg")

	_, err := CreateFile(context.Background(), sampleTree(t), out, CreateWithLevel(42))
	require.Error(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateFileInsideSource(t *testing.T) {
	t.Parallel()

	dir := sampleTree(t)
	out := filepath.Join(dir, "OakTMS.cfg")

	res, err := CreateFile(context.Background(), dir, out)
	require.NoError(t, err)
	assert.Equal(t, 3, res.FileCount)
}
