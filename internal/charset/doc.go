// Package charset guesses the byte encoding of subtitle text and converts it
// to UTF-8.
//
// Detect is a pure function over a complete file buffer. Lookup resolves a
// manifest label to a decoder, accepting WHATWG labels first and IANA names
// second. Decode applies the label with a lossy policy: malformed input turns
// into U+FFFD instead of failing, and a byte order mark overrides the label.
//
// RepairName is the one helper that works on file names rather than file
// content.
package charset
