package oaktms

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/meigma/oaktms/internal/sink"
)

// ExtractStats reports what Extract did.
type ExtractStats struct {
	// Written is the number of files written.
	Written int

	// Bytes is the total content size of written files.
	Bytes uint64

	// Skipped is the number of existing files left in place.
	Skipped int
}

// Extract writes every file under destDir, creating directories as needed.
//
// Writes are confined to destDir. Each file is written to a temporary file
// and renamed into place unless ExtractWithDirectWrites is set. Existing
// files are skipped unless ExtractWithOverwrite is set or the prompt set
// with ExtractWithPrompt decides otherwise. If the prompt returns Abort,
// Extract stops and returns ErrAborted along with the stats so far.
func (a *Archive) Extract(ctx context.Context, destDir string, opts ...ExtractOption) (ExtractStats, error) {
	var cfg extractConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var stats ExtractStats
	sinkOpts := []sink.Option{sink.WithDirectWrites(cfg.directWrite)}
	if cfg.fileMode != 0 {
		sinkOpts = append(sinkOpts, sink.WithFileMode(cfg.fileMode))
	}
	s, err := sink.Open(destDir, sinkOpts...)
	if err != nil {
		return stats, err
	}
	defer s.Close()

	overwriteAll := cfg.overwrite
	for i, f := range a.files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		dest := filepath.Join(s.Dir(), filepath.FromSlash(f.Path))

		if !overwriteAll {
			exists, err := s.Exists(f.Path)
			if err != nil {
				return stats, fmt.Errorf("check %s: %w", dest, err)
			}
			if exists {
				decision := Skip
				if cfg.prompt != nil {
					if decision, err = cfg.prompt(f.Path, dest); err != nil {
						return stats, err
					}
				}
				switch decision {
				case Overwrite:
				case OverwriteAll:
					overwriteAll = true
				case Abort:
					return stats, ErrAborted
				default:
					log.Debug("skipping existing file", "path", dest)
					stats.Skipped++
					continue
				}
			}
		}

		if err := s.WriteFile(f.Path, f.Content); err != nil {
			return stats, err
		}
		stats.Written++
		stats.Bytes += uint64(len(f.Content))
		log.Debug("extracted", "path", dest, "size", len(f.Content))
		cfg.progress.report(ProgressEvent{
			Stage:      StageExtracting,
			Path:       f.Path,
			BytesDone:  stats.Bytes,
			FilesDone:  i + 1,
			FilesTotal: len(a.files),
		})
	}
	log.Info("extraction complete", "dir", destDir, "written", stats.Written, "skipped", stats.Skipped)
	return stats, nil
}
