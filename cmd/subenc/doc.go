// Package main hosts the subenc CLI entrypoint and command graph.
//
// subenc normalizes the text encoding of a tree of subtitle files in two
// separate phases. "subenc detect" guesses each file's encoding and records
// the guesses in a JSON manifest at the root. "subenc transcode" reads that
// manifest and rewrites every non-UTF-8 file as UTF-8. The manifest can be
// reviewed and corrected by hand between the two.
//
// Commands resolve configuration once, then hand the work to the internal
// packages; this package only wires them together and prints the report.
package main
