package oaktms

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{errors.New("other"), KindUnknown},
		{fmt.Errorf("read header: %w", ErrTruncated), KindTruncatedInput},
		{ErrMagicMismatch, KindMagicMismatch},
		{ErrSizeMismatch, KindSizeAccountingMismatch},
		{ErrTooLarge, KindSizeAccountingMismatch},
		{ErrSizeOverflow, KindSizeAccountingMismatch},
		{ErrDecompression, KindDecompressionFailure},
		{ErrTextDecode, KindTextDecodeFailure},
		{ErrPathSafety, KindPathSafetyViolation},
		{ErrDuplicatePath, KindPathSafetyViolation},
		{ErrAborted, KindAborted},
		{ErrNoFiles, KindInvalidInput},
		{ErrChunkSize, KindInvalidInput},
		{fmt.Errorf("extract: %w", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}), KindFilesystemError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "error %v", tt.err)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TruncatedInput", KindTruncatedInput.String())
	assert.Equal(t, "PathSafetyViolation", KindPathSafetyViolation.String())
	assert.Equal(t, "Unknown", Kind(200).String())
	assert.Equal(t, "decompressing", StageDecompressing.String())
	assert.Equal(t, "overwrite-all", OverwriteAll.String())
}
