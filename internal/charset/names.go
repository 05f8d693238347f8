package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// RepairName undoes the mojibake left when an archive tool stored GBK file
// names and they were read back as code page 437, e.g. "╓╨╬─.srt" becomes
// "中文.srt". It reports false when name is plain ASCII, cannot be mapped
// back to CP437 bytes, is not valid GBK, or would come out unchanged.
func RepairName(name string) (string, bool) {
	if isASCII(name) {
		return name, false
	}
	raw, err := charmap.CodePage437.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return name, false
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil || bytes.Contains(decoded, replacementChar) || !utf8.Valid(decoded) {
		return name, false
	}
	fixed := string(decoded)
	if fixed == name || fixed == "" {
		return name, false
	}
	return fixed, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
