package transcode

// Result is the outcome for one manifest entry: Skipped, Transcoded, or Failed.
type Result interface {
	result()
}

// Skipped means the entry was already labelled UTF-8; nothing was read or
// written.
type Skipped struct {
	Path string
}

// Transcoded means the file was rewritten as UTF-8.
type Transcoded struct {
	Path     string
	From     string
	BytesIn  int
	BytesOut int
	// Replaced is set when malformed input was replaced with U+FFFD.
	Replaced bool
}

// Failed carries the per-entry error. The file is untouched unless the error
// came from the write itself.
type Failed struct {
	Path string
	Err  error
}

func (Skipped) result()    {}
func (Transcoded) result() {}
func (Failed) result()     {}
