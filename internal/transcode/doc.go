// Package transcode rewrites subtitle files listed in a manifest as UTF-8.
//
// Engine handles one entry: entries already labelled UTF-8 are skipped without
// touching the disk; everything else is read fresh, decoded with the manifest
// label (lossy, BOM wins), and written back in one piece. Runner fans the
// engine out over a whole manifest and folds the results into a Tally. No
// entry's failure affects any other entry.
package transcode
