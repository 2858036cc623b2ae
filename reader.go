package oaktms

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/meigma/oaktms/internal/chunk"
	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/filetable"
	"github.com/meigma/oaktms/internal/pathutil"
)

// Open reads and decodes the archive at path.
func Open(ctx context.Context, path string, opts ...ReadOption) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Read(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Read decodes a complete archive from r.
//
// The input is consumed in a single forward pass: header, chunk table,
// compressed chunks, footer. The input must end exactly after the footer.
// The payload is then inflated, its file table decoded and the stored paths
// normalized. Any failure returns a nil Archive and an error wrapping one
// of the package sentinels, prefixed with the step that failed.
func Read(ctx context.Context, r io.Reader, opts ...ReadOption) (*Archive, error) {
	cfg := defaultReadConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rd := &archiveReader{
		cfg: cfg,
		log: cfg.logger,
		cur: cursor.NewReader(bufio.NewReader(r)),
	}
	if rd.log == nil {
		rd.log = slog.New(slog.DiscardHandler)
	}
	return rd.read(ctx)
}

// archiveReader holds the state carried between decoding steps.
type archiveReader struct {
	cfg readConfig
	log *slog.Logger
	cur *cursor.Reader

	header  Header
	chunks  []Chunk
	payload []byte
	footer  Footer
	entries []filetable.Entry
	prefix  string
	files   []File
}

type readStep struct {
	name string
	run  func(context.Context) error
}

func (rd *archiveReader) read(ctx context.Context) (*Archive, error) {
	steps := []readStep{
		{"read header", rd.readHeader},
		{"read chunk table", rd.readChunkTable},
		{"read chunks", rd.readChunks},
		{"read footer", rd.readFooter},
		{"check end of input", rd.checkEOF},
		{"decode file table", rd.decodeFileTable},
		{"normalize paths", rd.normalizePaths},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.run(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	rd.log.Debug("archive decoded", "files", len(rd.files), "prefix", rd.prefix)
	return newArchive(rd.header, rd.chunks, rd.footer, rd.prefix, rd.files), nil
}

func (rd *archiveReader) readHeader(context.Context) error {
	c := rd.cur
	total32, err := c.Uint32()
	if err != nil {
		return fmt.Errorf("total uncompressed size: %w", err)
	}
	count, err := c.Uint32()
	if err != nil {
		return fmt.Errorf("file count: %w", err)
	}
	magic, err := c.Uint64()
	if err != nil {
		return fmt.Errorf("magic: %w", err)
	}
	if magic != rd.cfg.magic {
		return fmt.Errorf("%w: got %#x, want %#x", ErrMagicMismatch, magic, rd.cfg.magic)
	}
	chunkSize, err := c.Uint64()
	if err != nil {
		return fmt.Errorf("chunk size: %w", err)
	}
	totalComp, err := c.Uint64()
	if err != nil {
		return fmt.Errorf("total compressed size: %w", err)
	}
	total64, err := c.Uint64()
	if err != nil {
		return fmt.Errorf("repeated uncompressed size: %w", err)
	}
	if total64 != uint64(total32) {
		return fmt.Errorf("%w: uncompressed size %d repeated as %d", ErrSizeMismatch, total32, total64)
	}
	if rd.cfg.maxSize > 0 && total64 > rd.cfg.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, total64, rd.cfg.maxSize)
	}

	rd.header = Header{
		TotalUncompressedSize: total32,
		FileCount:             count,
		Magic:                 magic,
		ChunkSize:             chunkSize,
		TotalCompressedSize:   totalComp,
	}
	rd.log.Debug("header",
		"total_uncompressed", total32,
		"files", count,
		"magic", fmt.Sprintf("%#x", magic),
		"chunk_size", chunkSize,
		"total_compressed", totalComp)
	return nil
}

func (rd *archiveReader) readChunkTable(context.Context) error {
	chunks, err := chunk.DecodeTable(rd.cur, rd.header.TotalCompressedSize, uint64(rd.header.TotalUncompressedSize))
	if err != nil {
		return err
	}
	for i, c := range chunks {
		rd.log.Debug("chunk", "index", i, "compressed", c.CompressedSize, "uncompressed", c.UncompressedSize)
	}
	rd.chunks = chunks
	return nil
}

func (rd *archiveReader) readChunks(ctx context.Context) error {
	total := uint64(rd.header.TotalUncompressedSize)
	rd.cfg.progress.report(ProgressEvent{Stage: StageDecompressing, BytesTotal: total})

	dec := chunk.NewDecompressor(rd.cfg.workers, rd.cfg.maxSize)
	payload, err := dec.Decompress(ctx, rd.cur, rd.chunks)
	if err != nil {
		return err
	}
	rd.payload = payload
	rd.cfg.progress.report(ProgressEvent{Stage: StageDecompressing, BytesDone: total, BytesTotal: total})
	return nil
}

func (rd *archiveReader) readFooter(context.Context) error {
	c := rd.cur
	n, err := c.Uint32()
	if err != nil {
		return fmt.Errorf("string count: %w", err)
	}
	strs := make([]string, 0, min(n, 64))
	for i := range n {
		s, err := c.String()
		if err != nil {
			return fmt.Errorf("string %d: %w", i, err)
		}
		rd.log.Debug("footer string", "index", i, "value", s)
		strs = append(strs, s)
	}
	num1, err := c.Uint32()
	if err != nil {
		return fmt.Errorf("num1: %w", err)
	}
	num2, err := c.Uint32()
	if err != nil {
		return fmt.Errorf("num2: %w", err)
	}
	rd.log.Debug("footer numbers", "num1", num1, "num2", num2)
	rd.footer = Footer{Strings: strs, Num1: num1, Num2: num2}
	return nil
}

func (rd *archiveReader) checkEOF(context.Context) error {
	eof, err := rd.cur.AtEOF()
	if err != nil {
		return err
	}
	if !eof {
		return fmt.Errorf("%w: trailing bytes after footer at offset %d", ErrSizeMismatch, rd.cur.Offset()-1)
	}
	return nil
}

func (rd *archiveReader) decodeFileTable(context.Context) error {
	entries, err := filetable.Decode(rd.payload, rd.header.FileCount)
	if err != nil {
		return err
	}
	rd.entries = entries
	return nil
}

func (rd *archiveReader) normalizePaths(context.Context) error {
	stored := make([]string, len(rd.entries))
	for i, e := range rd.entries {
		stored[i] = e.Path
	}
	prefix, paths, err := pathutil.Normalize(stored)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(paths))
	files := make([]File, len(paths))
	for i, p := range paths {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, p)
		}
		seen[p] = struct{}{}
		files[i] = File{Path: p, Content: rd.entries[i].Content}
		rd.log.Debug("file", "path", p, "size", len(rd.entries[i].Content))
	}
	rd.prefix = prefix
	rd.files = files
	return nil
}
