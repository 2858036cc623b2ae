// Package chunk implements the chunk descriptor table and the chunked
// zlib payload codec of TMS archives.
//
// A payload is split into contiguous slices of at most the archive's chunk
// size. Each slice is compressed independently; the descriptor table lists
// (compressed, uncompressed) size pairs in payload order. The table carries
// no count: a reader stops once the compressed sizes add up to the total
// declared in the archive header.
package chunk
