package oaktms

import (
	"errors"
	"io/fs"
	"os"

	"github.com/meigma/oaktms/internal/chunk"
	"github.com/meigma/oaktms/internal/format"
)

// Sentinel errors re-exported from internal/format.
var (
	// ErrTruncated is returned when the input ends before a field is complete.
	ErrTruncated = format.ErrTruncated

	// ErrMagicMismatch is returned when the header constant is not the expected magic.
	ErrMagicMismatch = format.ErrMagicMismatch

	// ErrSizeMismatch is returned when declared and observed sizes disagree.
	ErrSizeMismatch = format.ErrSizeMismatch

	// ErrDecompression is returned when a chunk fails to inflate to its declared size.
	ErrDecompression = format.ErrDecompression

	// ErrTextDecode is returned for invalid UTF-8 or UTF-16 string fields.
	ErrTextDecode = format.ErrTextDecode

	// ErrPathSafety is returned when a stored path could escape the extraction directory.
	ErrPathSafety = format.ErrPathSafety

	// ErrDuplicatePath is returned when two entries normalize to the same path.
	ErrDuplicatePath = format.ErrDuplicatePath

	// ErrSizeOverflow is returned when a value does not fit its field.
	ErrSizeOverflow = format.ErrSizeOverflow

	// ErrTooLarge is returned when an archive exceeds the configured size limit.
	ErrTooLarge = format.ErrTooLarge

	// ErrChunkSize is returned when a chunk size of zero is configured.
	ErrChunkSize = chunk.ErrChunkSize
)

// Sentinel errors specific to the oaktms package.
var (
	// ErrNoFiles is returned when packing a directory without regular files.
	ErrNoFiles = errors.New("tms: no files to pack")

	// ErrAborted is returned when an overwrite prompt aborts extraction.
	ErrAborted = errors.New("tms: extraction aborted")
)

// Kind classifies an error for reporting.
type Kind uint8

const (
	// KindUnknown is any error not matched by another kind.
	KindUnknown Kind = iota

	// KindTruncatedInput means the input ended before a field was complete.
	KindTruncatedInput

	// KindMagicMismatch means the header constant was not the expected one.
	KindMagicMismatch

	// KindSizeAccountingMismatch means declared and actual sizes disagree,
	// overflow, or exceed the configured limit.
	KindSizeAccountingMismatch

	// KindDecompressionFailure means a chunk failed to inflate to its
	// declared size.
	KindDecompressionFailure

	// KindTextDecodeFailure means a stored string was not valid text.
	KindTextDecodeFailure

	// KindPathSafetyViolation means a stored path could escape the
	// extraction root or is duplicated.
	KindPathSafetyViolation

	// KindFilesystemError means reading or writing the filesystem failed.
	KindFilesystemError

	// KindInvalidInput means the caller supplied unusable input, such as
	// an empty directory or a zero chunk size.
	KindInvalidInput

	// KindAborted means the user aborted the operation.
	KindAborted
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTruncatedInput:
		return "TruncatedInput"
	case KindMagicMismatch:
		return "MagicMismatch"
	case KindSizeAccountingMismatch:
		return "SizeAccountingMismatch"
	case KindDecompressionFailure:
		return "DecompressionFailure"
	case KindTextDecodeFailure:
		return "TextDecodeFailure"
	case KindPathSafetyViolation:
		return "PathSafetyViolation"
	case KindFilesystemError:
		return "FilesystemError"
	case KindInvalidInput:
		return "InvalidInput"
	case KindAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrTruncated):
		return KindTruncatedInput
	case errors.Is(err, ErrMagicMismatch):
		return KindMagicMismatch
	case errors.Is(err, ErrSizeMismatch), errors.Is(err, ErrSizeOverflow), errors.Is(err, ErrTooLarge):
		return KindSizeAccountingMismatch
	case errors.Is(err, ErrDecompression):
		return KindDecompressionFailure
	case errors.Is(err, ErrTextDecode):
		return KindTextDecodeFailure
	case errors.Is(err, ErrPathSafety), errors.Is(err, ErrDuplicatePath):
		return KindPathSafetyViolation
	case errors.Is(err, ErrAborted):
		return KindAborted
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrChunkSize):
		return KindInvalidInput
	}
	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
	)
	if errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &syscallErr) {
		return KindFilesystemError
	}
	return KindUnknown
}
