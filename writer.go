package oaktms

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/oaktms/internal/chunk"
	"github.com/meigma/oaktms/internal/cursor"
	"github.com/meigma/oaktms/internal/filetable"
	"github.com/meigma/oaktms/internal/sizing"
)

// Result describes an archive written by Encode, Create or CreateFile.
type Result struct {
	// FileCount is the number of files stored.
	FileCount int

	// TotalUncompressedSize is the payload size.
	TotalUncompressedSize uint64

	// TotalCompressedSize is the sum of the compressed chunk sizes.
	TotalCompressedSize uint64

	// Paths holds the stored file paths in written order.
	Paths []string

	// Chunks holds the chunk descriptors in written order.
	Chunks []Chunk

	// Footer is the footer that was written.
	Footer Footer

	// Size is the number of archive bytes written.
	Size int64

	// Digest is the sha256 digest of the written archive.
	Digest digest.Digest
}

// Encode writes an archive holding files, in the given order, to w.
//
// Paths are stored exactly as given; Create and CreateFile sort and prefix
// them first. Output is a function of files and options only: identical
// input produces identical bytes regardless of the worker count, provided
// the footer timestamp is fixed with CreateWithTimestamp or CreateWithFooter.
func Encode(ctx context.Context, w io.Writer, files []File, opts ...CreateOption) (*Result, error) {
	cfg := newCreateConfig(opts)
	return encode(ctx, w, files, &cfg, time.Now)
}

func encode(ctx context.Context, w io.Writer, files []File, cfg *createConfig, now func() time.Time) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if cfg.chunkSize == 0 {
		return nil, ErrChunkSize
	}
	fileCount, err := sizing.ToUint32(len(files), ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("%d files: %w", len(files), err)
	}
	log := cfg.log()

	payload, err := buildPayload(files)
	if err != nil {
		return nil, fmt.Errorf("build file table: %w", err)
	}
	total32, err := sizing.ToUint32(len(payload), ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("payload of %d bytes: %w", len(payload), err)
	}
	total := uint64(total32)

	cfg.progress.report(ProgressEvent{Stage: StageCompressing, BytesTotal: total, FilesTotal: len(files)})
	comp, err := chunk.NewCompressor(cfg.level, cfg.workers)
	if err != nil {
		return nil, err
	}
	compressed, err := comp.Compress(ctx, payload, cfg.chunkSize)
	if err != nil {
		return nil, err
	}
	descs := make([]Chunk, len(compressed))
	for i, c := range compressed {
		descs[i] = c.Descriptor
		log.Debug("chunk", "index", i, "compressed", c.CompressedSize, "uncompressed", c.UncompressedSize)
	}
	totalComp, _, ok := chunk.Sum(descs)
	if !ok {
		return nil, fmt.Errorf("%w: compressed size", ErrSizeOverflow)
	}
	cfg.progress.report(ProgressEvent{Stage: StageCompressing, BytesDone: total, BytesTotal: total, FilesTotal: len(files)})

	footer := cfg.footerFor(now)
	footerCount, err := sizing.ToUint32(len(footer.Strings), ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("%d footer strings: %w", len(footer.Strings), err)
	}

	hasher := sha256.New()
	bw := bufio.NewWriter(w)
	cw := cursor.NewWriter(io.MultiWriter(bw, hasher))

	cw.Uint32(total32)
	cw.Uint32(fileCount)
	cw.Uint64(cfg.magic)
	cw.Uint64(cfg.chunkSize)
	cw.Uint64(totalComp)
	cw.Uint64(total)
	chunk.EncodeTable(cw, descs)
	var written uint64
	for _, c := range compressed {
		cw.Bytes(c.Data)
		written += c.CompressedSize
		cfg.progress.report(ProgressEvent{Stage: StageWriting, BytesDone: written, BytesTotal: totalComp})
	}
	cw.Uint32(footerCount)
	for _, s := range footer.Strings {
		cw.String(s)
	}
	cw.Uint32(footer.Num1)
	cw.Uint32(footer.Num2)
	if err := cw.Err(); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	res := &Result{
		FileCount:             len(files),
		TotalUncompressedSize: total,
		TotalCompressedSize:   totalComp,
		Paths:                 storedPaths(files),
		Chunks:                descs,
		Footer:                footer,
		Size:                  cw.Offset(),
		Digest:                digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(hasher.Sum(nil))),
	}
	log.Info("archive written",
		"files", res.FileCount,
		"chunks", len(descs),
		"uncompressed", total,
		"compressed", totalComp,
		"digest", res.Digest.String())
	return res, nil
}

func storedPaths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// buildPayload serializes the file table. The payload size must fit the
// uint32 header field.
func buildPayload(files []File) ([]byte, error) {
	entries := make([]filetable.Entry, len(files))
	for i, f := range files {
		entries[i] = filetable.Entry{Path: f.Path, Content: f.Content}
	}
	size := filetable.EncodedLen(entries)
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrSizeOverflow, size)
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := filetable.Encode(cursor.NewWriter(buf), entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
