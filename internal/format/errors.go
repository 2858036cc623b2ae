package format

import "errors"

// Sentinel errors for TMS operations.
var (
	// ErrTruncated is returned when a read runs past the available bytes.
	ErrTruncated = errors.New("tms: truncated input")

	// ErrMagicMismatch is returned when the header constant is wrong.
	ErrMagicMismatch = errors.New("tms: magic mismatch")

	// ErrSizeMismatch is returned when declared and observed sizes disagree.
	ErrSizeMismatch = errors.New("tms: size accounting mismatch")

	// ErrDecompression is returned when a chunk does not inflate to its
	// declared size.
	ErrDecompression = errors.New("tms: decompression failed")

	// ErrTextDecode is returned for invalid UTF-8 or UTF-16 string fields.
	ErrTextDecode = errors.New("tms: invalid text")

	// ErrPathSafety is returned when a normalized path could escape the
	// extraction directory.
	ErrPathSafety = errors.New("tms: unsafe path")

	// ErrDuplicatePath is returned when two entries normalize to the same path.
	ErrDuplicatePath = errors.New("tms: duplicate path")

	// ErrSizeOverflow is returned when a value does not fit its wire field.
	ErrSizeOverflow = errors.New("tms: size overflow")

	// ErrTooLarge is returned when an archive exceeds the configured size limit.
	ErrTooLarge = errors.New("tms: archive too large")
)
