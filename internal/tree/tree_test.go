package tree

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/oaktms/internal/testutil"
)

func openRoot(t *testing.T, dir string) *os.Root {
	t.Helper()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { root.Close() })
	return root
}

func TestCollectOrdersTMSFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"OakGame/Content/b.txt": "b",
		"OakGame/TMS/a.txt":     "a",
		"OakGame/Config/c.ini":  "c",
		"root.txt":              "r",
	})

	var visited []string
	entries, err := Collect(context.Background(), openRoot(t, dir), nil, func(path string, size, count int) {
		visited = append(visited, path)
		assert.Equal(t, 1, size)
		assert.Equal(t, len(visited), count)
	})
	require.NoError(t, err)

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{
		"OakGame/TMS/a.txt",
		"OakGame/Config/c.ini",
		"OakGame/Content/b.txt",
		"root.txt",
	}, paths)
	assert.Len(t, visited, 4)
	assert.Equal(t, []byte("a"), entries[0].Content)
}

func TestCollectSkipsSymlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"real.txt": "data"})
	require.NoError(t, os.Symlink("real.txt", filepath.Join(dir, "link.txt")))

	entries, err := Collect(context.Background(), openRoot(t, dir), nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "real.txt", entries[0].Path)
}

func TestCollectEmptyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"empty.txt": ""})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "emptydir"), 0o755))

	entries, err := Collect(context.Background(), openRoot(t, dir), nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Content)
}

func TestCollectCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, openRoot(t, dir), nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}
