//go:build integration

package integration

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2021, time.October, 5, 8, 0, 0, 0, time.UTC)

// createTestTree generates count files under dir, spread across
// OakGame/TMS and several content directories. Every third file is
// random data so that both compressible and incompressible chunks occur.
func createTestTree(tb testing.TB, dir string, count, size int) map[string][]byte {
	tb.Helper()
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // reproducible test data
	files := make(map[string][]byte, count)
	for i := range count {
		rel := fmt.Sprintf("OakGame/Content/Dir%02d/File%04d.json", i%7, i)
		if i%5 == 0 {
			rel = fmt.Sprintf("OakGame/TMS/Hotfix%04d.json", i)
		}
		content := make([]byte, size+i%97)
		if i%3 == 0 {
			_, _ = rng.Read(content)
		} else {
			for j := range content {
				content[j] = byte('A' + (i+j)%26)
			}
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(tb, os.WriteFile(path, content, 0o644))
		files[rel] = content
	}
	return files
}

// readTestTree returns every regular file under dir keyed by relative path.
func readTestTree(tb testing.TB, dir string) map[string][]byte {
	tb.Helper()
	files := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	require.NoError(tb, err)
	return files
}
