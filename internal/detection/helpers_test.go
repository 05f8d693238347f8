package detection_test

import "subenc/internal/manifest"

func manifestEntry(label string) manifest.Entry {
	return manifest.Entry{Path: label + ".srt", Encoding: label}
}
