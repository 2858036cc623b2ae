// Package sortorder reproduces the directory ordering of archives built by
// the game's own tooling.
//
// Paths sort lexically by bytes, except that the first segment-aligned
// "OakGame/TMS/" sorts as if a tab preceded "TMS". Tab sorts below every
// printable character, so OakGame/TMS comes before OakGame/Content.
package sortorder

import (
	"slices"
	"strings"
)

// Marker segments.
const (
	MarkerParent = "OakGame"
	MarkerChild  = "TMS"
)

const (
	marker = MarkerParent + "/" + MarkerChild + "/"
	lift   = "\t"
)

// Key returns the string p is ordered by.
func Key(p string) string {
	i := markerIndex(p)
	if i < 0 {
		return p
	}
	at := i + len(MarkerParent) + 1
	return p[:at] + lift + p[at:]
}

// markerIndex finds the first occurrence of the marker that begins at a
// segment boundary.
func markerIndex(p string) int {
	for off := 0; off < len(p); {
		i := strings.Index(p[off:], marker)
		if i < 0 {
			return -1
		}
		i += off
		if i == 0 || p[i-1] == '/' {
			return i
		}
		off = i + 1
	}
	return -1
}

// Compare orders a and b by Key, falling back to the raw paths when two
// keys collide so the order stays total.
func Compare(a, b string) int {
	if c := strings.Compare(Key(a), Key(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Sort orders paths in place.
func Sort(paths []string) {
	slices.SortStableFunc(paths, Compare)
}

// SortFunc orders items in place by the path returned from path.
func SortFunc[T any](items []T, path func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(path(a), path(b))
	})
}
