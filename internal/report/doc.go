// Package report renders the operator-facing output of the detect and
// transcode phases: progress feedback while files are processed, summary
// tables, and capped error samples.
//
// Summaries go to the Printer's Out writer; error samples and progress go to
// Err so that stdout stays parseable when redirected.
package report
