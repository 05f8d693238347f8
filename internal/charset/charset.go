package charset

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Target is the canonical label every file is converted to.
const Target = "UTF-8"

// fallbackLabel is returned when no detector candidate resolves to a decoder.
const fallbackLabel = "windows-1252"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	replacementChar = []byte(string(utf8.RuneError))
)

// detector names that neither index knows under the same spelling.
var detectorAliases = map[string]string{
	"gb-18030": "gb18030",
}

// UnknownLabelError reports a label no decoder is registered for.
type UnknownLabelError struct {
	Label string
}

// Error reads "Unknown encoding: <label>", the wording operators see in the
// transcode error sample.
func (e *UnknownLabelError) Error() string {
	return "Unknown encoding: " + e.Label
}

// IsTarget reports whether label names the target encoding.
func IsTarget(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), Target)
}

// Detect returns the best-guess encoding label for data. The same input
// always yields the same label.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return Target
	case bytes.HasPrefix(data, bomUTF16LE):
		return "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		return "utf-16be"
	}
	if utf8.Valid(data) {
		return Target
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return fallbackLabel
	}
	// The detector runs its recognizers concurrently and sorts with an
	// unstable sort, so ties are broken here.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Charset < results[j].Charset
	})
	for _, result := range results {
		if IsTarget(result.Charset) {
			continue
		}
		if _, name, err := Lookup(result.Charset); err == nil {
			return name
		}
	}
	return fallbackLabel
}

// Lookup resolves label to an encoding and its canonical name.
func Lookup(label string) (encoding.Encoding, string, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return nil, "", &UnknownLabelError{Label: label}
	}
	if alias, ok := detectorAliases[strings.ToLower(name)]; ok {
		name = alias
	}

	if enc, err := htmlindex.Get(name); err == nil && enc != encoding.Replacement {
		canonical, err := htmlindex.Name(enc)
		if err != nil {
			canonical = name
		}
		if IsTarget(canonical) {
			canonical = Target
		}
		return enc, canonical, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil || enc == encoding.Replacement {
		return nil, "", &UnknownLabelError{Label: label}
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return enc, canonical, nil
}

// Decode converts data from label to UTF-8. A leading byte order mark wins
// over label and is stripped. Malformed sequences are replaced with U+FFFD;
// replaced reports whether the output contains any.
func Decode(label string, data []byte) (text []byte, replaced bool, err error) {
	enc, _, err := Lookup(label)
	if err != nil {
		return nil, false, err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", label, err)
	}
	return out, bytes.Contains(out, replacementChar), nil
}
