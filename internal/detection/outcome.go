package detection

import "subenc/internal/manifest"

// Outcome is the result of examining one file: Detected or IOError.
type Outcome interface {
	outcome()
}

// Detected carries the guessed encoding for a readable file.
type Detected struct {
	Entry manifest.Entry
}

// IOError records a file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (Detected) outcome() {}
func (IOError) outcome()  {}
