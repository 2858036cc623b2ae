package oaktms

// ProgressEvent represents a progress update during reading, writing or
// extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// BytesDone is the number of bytes completed in the current operation.
	BytesDone uint64

	// BytesTotal is the total bytes for the current operation.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageEnumerating indicates the source directory is being walked.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates payload chunks are being compressed.
	StageCompressing

	// StageWriting indicates the archive file is being written.
	StageWriting

	// StageDecompressing indicates payload chunks are being inflated.
	StageDecompressing

	// StageExtracting indicates files are being written to disk.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageCompressing:
		return "compressing"
	case StageWriting:
		return "writing"
	case StageDecompressing:
		return "decompressing"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
type ProgressFunc func(ProgressEvent)

func (fn ProgressFunc) report(ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}
