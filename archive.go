package oaktms

import (
	"io/fs"
	"iter"
	"slices"

	"github.com/meigma/oaktms/internal/chunk"
	"github.com/meigma/oaktms/internal/format"
)

const (
	// Magic is the header constant of every known archive.
	Magic = format.Magic

	// DefaultChunkSize is the uncompressed chunk size used when packing.
	DefaultChunkSize = format.DefaultChunkSize

	// DefaultPrefix is prepended to every path when packing.
	DefaultPrefix = format.DefaultPrefix

	// DefaultMaxSize is the default limit on the uncompressed payload (1 GiB).
	DefaultMaxSize = chunk.DefaultMaxSize
)

// Header holds the fixed fields at the start of an archive.
type Header struct {
	// TotalUncompressedSize is the payload size. It is stored twice, once
	// as a uint32 and once as a uint64; the two must agree.
	TotalUncompressedSize uint32 `yaml:"total_uncompressed_size"`

	// FileCount is the number of entries in the payload file table.
	FileCount uint32 `yaml:"file_count"`

	// Magic is the format constant (0x9E2A83C1 for known archives).
	Magic uint64 `yaml:"magic"`

	// ChunkSize is the nominal uncompressed chunk size used by the writer.
	ChunkSize uint64 `yaml:"chunk_size"`

	// TotalCompressedSize is the sum of all compressed chunk sizes.
	TotalCompressedSize uint64 `yaml:"total_compressed_size"`
}

// Chunk describes one compressed chunk of the payload.
type Chunk = chunk.Descriptor

// File is one stored file.
type File struct {
	Path    string
	Content []byte
}

// Footer holds the trailing tag strings and numbers. Its contents are
// opaque and preserved verbatim.
type Footer struct {
	Strings []string `yaml:"strings"`
	Num1    uint32   `yaml:"num1"`
	Num2    uint32   `yaml:"num2"`
}

// Archive is a fully decoded TMS archive.
//
// File paths are normalized: the shared leading run of ".." segments is
// removed and kept in CommonPrefix. An Archive is immutable after Read
// returns it and safe for concurrent use.
type Archive struct {
	header Header
	chunks []Chunk
	footer Footer
	prefix string
	files  []File
	index  map[string]int
}

func newArchive(h Header, chunks []Chunk, footer Footer, prefix string, files []File) *Archive {
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f.Path] = i
	}
	return &Archive{
		header: h,
		chunks: chunks,
		footer: footer,
		prefix: prefix,
		files:  files,
		index:  index,
	}
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

// Chunks returns a copy of the chunk descriptors in stored order.
func (a *Archive) Chunks() []Chunk {
	return slices.Clone(a.chunks)
}

// Footer returns a copy of the footer.
func (a *Archive) Footer() Footer {
	f := a.footer
	f.Strings = slices.Clone(f.Strings)
	return f
}

// CommonPrefix returns the ".." prefix stripped from every stored path,
// e.g. "../../../", or "" when there was none.
func (a *Archive) CommonPrefix() string {
	return a.prefix
}

// Len returns the number of files.
func (a *Archive) Len() int {
	return len(a.files)
}

// Paths returns the normalized file paths in stored order.
func (a *Archive) Paths() []string {
	paths := make([]string, len(a.files))
	for i, f := range a.files {
		paths[i] = f.Path
	}
	return paths
}

// File returns the i-th file in stored order.
// The returned content must not be modified.
func (a *Archive) File(i int) File {
	return a.files[i]
}

// Files iterates over files in stored order, yielding path and content.
// The yielded content must not be modified.
func (a *Archive) Files() iter.Seq2[string, []byte] {
	return func(yield func(string, []byte) bool) {
		for _, f := range a.files {
			if !yield(f.Path, f.Content) {
				return
			}
		}
	}
}

// ReadFile returns a copy of the content stored at the normalized path.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	i, ok := a.index[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(a.files[i].Content), nil
}

// StoredPath returns path with the common prefix restored, as it appears
// in the archive.
func (a *Archive) StoredPath(path string) string {
	return a.prefix + path
}
