// Package locres reads localization string tables (.locres files) for
// display.
//
// A table is a fixed header followed by namespaces of keys. Each key
// refers to an entry in a flat string table stored after the namespaces,
// or carries its text inline.
package locres

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/meigma/oaktms/internal/cursor"
)

// HeaderSize is the size of the fixed header preceding the namespaces.
const HeaderSize = 0x19

var (
	// ErrBadIndex is returned when a key refers past the end of the string table.
	ErrBadIndex = errors.New("locres: string index out of range")

	// ErrNotFound is returned by Lookup when no key matches.
	ErrNotFound = errors.New("locres: key not found")
)

// Header is the fixed file header.
type Header struct {
	Magic             [16]byte
	Version           uint8
	StringTableOffset int64
}

// Key is one localized entry.
type Key struct {
	Name       string
	SourceHash uint32

	// Index refers into Table.Strings. It is -1 when the text is inline.
	Index int32

	// Inline holds the text when Index is -1.
	Inline string
}

// Text returns the key's text, resolving its index against t.
func (k Key) Text(t *Table) (string, error) {
	if k.Index < 0 {
		return k.Inline, nil
	}
	if int(k.Index) >= len(t.Strings) {
		return "", fmt.Errorf("%w: key %q uses index %d of %d strings", ErrBadIndex, k.Name, k.Index, len(t.Strings))
	}
	return t.Strings[k.Index], nil
}

// Namespace groups keys.
type Namespace struct {
	Name string
	Keys []Key
}

// Table is a decoded .locres file.
type Table struct {
	Header     Header
	Namespaces []Namespace
	Strings    []string
}

// Open reads the table at path.
func Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a table from r.
func Parse(r io.Reader) (*Table, error) {
	c := cursor.NewReader(bufio.NewReader(r))
	var t Table

	magic, err := c.Bytes(uint64(len(t.Header.Magic)))
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	copy(t.Header.Magic[:], magic)
	if t.Header.Version, err = c.Uint8(); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if t.Header.StringTableOffset, err = c.Int64(); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	nsCount, err := c.Uint32()
	if err != nil {
		return nil, fmt.Errorf("namespace count: %w", err)
	}
	t.Namespaces = make([]Namespace, 0, min(nsCount, 1024))
	for i := range nsCount {
		ns, err := parseNamespace(c)
		if err != nil {
			return nil, fmt.Errorf("namespace %d: %w", i, err)
		}
		t.Namespaces = append(t.Namespaces, ns)
	}

	strCount, err := c.Uint32()
	if err != nil {
		return nil, fmt.Errorf("string count: %w", err)
	}
	t.Strings = make([]string, 0, min(strCount, 1<<16))
	for i := range strCount {
		s, err := c.String()
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		t.Strings = append(t.Strings, s)
	}
	return &t, nil
}

func parseNamespace(c *cursor.Reader) (Namespace, error) {
	var ns Namespace
	var err error
	if ns.Name, err = c.String(); err != nil {
		return ns, fmt.Errorf("name: %w", err)
	}
	n, err := c.Uint32()
	if err != nil {
		return ns, fmt.Errorf("key count: %w", err)
	}
	ns.Keys = make([]Key, 0, min(n, 1<<16))
	for i := range n {
		k, err := parseKey(c)
		if err != nil {
			return ns, fmt.Errorf("key %d: %w", i, err)
		}
		ns.Keys = append(ns.Keys, k)
	}
	return ns, nil
}

func parseKey(c *cursor.Reader) (Key, error) {
	var k Key
	var err error
	if k.Name, err = c.String(); err != nil {
		return k, err
	}
	if k.SourceHash, err = c.Uint32(); err != nil {
		return k, err
	}
	if k.Index, err = c.Int32(); err != nil {
		return k, err
	}
	if k.Index < 0 {
		if k.Inline, err = c.String(); err != nil {
			return k, err
		}
		k.Index = -1
	}
	return k, nil
}

// Lookup returns the text of key in namespace.
func (t *Table) Lookup(namespace, key string) (string, error) {
	for _, ns := range t.Namespaces {
		if ns.Name != namespace {
			continue
		}
		for _, k := range ns.Keys {
			if k.Name == key {
				return k.Text(t)
			}
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, key)
}

// Render writes every namespace as a titled block listing each key and
// its text, separated by blank lines.
func (t *Table) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, ns := range t.Namespaces {
		label := `Namespace "` + ns.Name + `"`
		fmt.Fprintf(bw, "%s\n%s\n\n", label, strings.Repeat("=", utf8.RuneCountInString(label)))
		for _, k := range ns.Keys {
			text, err := k.Text(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, "%s\n%s\n\n", k.Name, text)
		}
	}
	return bw.Flush()
}
