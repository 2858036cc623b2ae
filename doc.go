// Package oaktms reads and writes TMS archives, the chunked zlib containers
// the game uses to ship hotfix configuration and localization files.
//
// An archive is a small header, a table of (compressed, uncompressed) chunk
// sizes, the zlib chunks themselves and a footer of opaque tag strings and
// numbers. The chunks inflate to a single payload holding a flat table of
// (path, content) entries.
//
// Read an archive and extract it:
//
//	a, err := oaktms.Open(ctx, "OakTMS-prod.cfg")
//	if err != nil {
//	    return err
//	}
//	stats, err := a.Extract(ctx, "OakTMS-prod")
//
// Pack a directory:
//
//	res, err := oaktms.CreateFile(ctx, "OakTMS-prod", "OakTMS-prod.cfg",
//	    oaktms.CreateWithTimestamp(time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)),
//	)
//
// Stored paths carry a shared run of leading ".." segments. Reading strips
// that run and rejects any path that could still escape the extraction
// directory. Writing sorts files so that OakGame/TMS precedes its sibling
// directories, and produces byte-identical output for identical input and
// options.
package oaktms
