//go:build !unix

package tree

import (
	"io/fs"
	"os"
)

// openNoFollow opens a file without following symlinks.
// Returns errSymlink if the path is a symbolic link.
func openNoFollow(root *os.Root, name string) (*os.File, error) {
	info, err := root.Lstat(name)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, errSymlink
	}
	return root.Open(name)
}
