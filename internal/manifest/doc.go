// Package manifest reads and writes encodings.json, the file that carries
// detection results to the transcode phase.
//
// The wire shape is
//
//	{ "encodings": [ { "path": "...", "encoding": "..." }, ... ] }
//
// written with two-space indentation so operators can review and correct
// labels by hand between phases. Read validates every entry and reports
// problems as *ParseError; a missing file is ErrMissing.
package manifest
