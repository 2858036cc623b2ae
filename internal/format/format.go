// Package format holds the constants and sentinel errors shared by the
// TMS codec packages.
package format

// Magic is the header constant carried by every TMS archive.
const Magic uint64 = 0x9E2A83C1

// DefaultChunkSize is the nominal uncompressed size of each payload chunk.
const DefaultChunkSize = 128 << 10

// DefaultPrefix is prepended to archive paths when packing a directory.
const DefaultPrefix = "../../.."

// Separator is the only path separator used inside an archive.
const Separator = "/"
