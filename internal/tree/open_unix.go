//go:build unix

package tree

import (
	"errors"
	"os"
	"syscall"
)

// openNoFollow opens a file without following symlinks.
// Returns errSymlink if the path is a symbolic link.
func openNoFollow(root *os.Root, name string) (*os.File, error) {
	f, err := root.OpenFile(name, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, syscall.ELOOP) {
			return nil, errSymlink
		}
		return nil, err
	}
	return f, nil
}
