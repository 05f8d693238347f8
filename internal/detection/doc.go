// Package detection runs the encoding detector over candidate files in
// parallel and partitions the outcomes into manifest entries and per-file
// read failures. A file that cannot be read never stops the scan.
package detection
