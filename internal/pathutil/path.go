// Package pathutil normalizes the slash-separated paths stored in TMS
// archives before anything is written to disk.
//
// Archives store paths relative to an external root with leading ".."
// segments, e.g. "../../../OakGame/Content/...". The shared leading run of
// ".." segments is stripped; any traversal left afterwards is rejected.
package pathutil

import (
	"fmt"
	"strings"

	"github.com/meigma/oaktms/internal/format"
)

const parent = ".."

// CommonParentPrefix returns the leading run of ".." segments shared by
// every path, joined with "/" and ending in "/". It returns "" when the
// paths share no leading "..".
func CommonParentPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	common := strings.Split(paths[0], format.Separator)
	for _, p := range paths[1:] {
		segs := strings.Split(p, format.Separator)
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
	}

	run := 0
	for run < len(common) && common[run] == parent {
		run++
	}
	if run == 0 {
		return ""
	}
	return strings.Repeat(parent+format.Separator, run)
}

// StripPrefix removes prefix from every path and rejects results that
// could still leave the extraction root.
func StripPrefix(paths []string, prefix string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		stripped, ok := strings.CutPrefix(p, prefix)
		if !ok {
			return nil, fmt.Errorf("%w: %q does not start with %q", format.ErrPathSafety, p, prefix)
		}
		if err := CheckSafe(stripped); err != nil {
			return nil, err
		}
		out[i] = stripped
	}
	return out, nil
}

// CheckSafe rejects a stripped path that is absolute or still contains a
// parent-directory segment.
func CheckSafe(p string) error {
	if strings.Contains(p, parent+format.Separator) {
		return fmt.Errorf("%w: relative path not allowed in stripped filename %q", format.ErrPathSafety, p)
	}
	if strings.HasPrefix(p, format.Separator) {
		return fmt.Errorf("%w: absolute path %q", format.ErrPathSafety, p)
	}
	for _, seg := range strings.Split(p, format.Separator) {
		if seg == parent {
			return fmt.Errorf("%w: relative path not allowed in stripped filename %q", format.ErrPathSafety, p)
		}
	}
	return nil
}

// Normalize computes the common ".." prefix of paths, strips it, and
// validates the results. The returned paths keep the input order.
func Normalize(paths []string) (prefix string, stripped []string, err error) {
	prefix = CommonParentPrefix(paths)
	stripped, err = StripPrefix(paths, prefix)
	if err != nil {
		return "", nil, err
	}
	return prefix, stripped, nil
}
