package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"subenc/internal/fileutil"
)

// ErrMissing is returned by Read when the manifest file does not exist.
var ErrMissing = errors.New("manifest not found")

// Entry is one detection result.
type Entry struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
}

// Manifest is the ordered list of detection results.
type Manifest struct {
	Encodings []Entry `json:"encodings"`
}

// Duplicate describes an entry dropped by Dedupe.
type Duplicate struct {
	Index int
	Entry Entry
	Kept  Entry
}

// ParseError reports malformed manifest content. Index is the offending entry,
// or -1 when the problem is with the document as a whole.
type ParseError struct {
	Path  string
	Index int
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	where := e.Path
	if e.Index >= 0 {
		where = fmt.Sprintf("%s: entry %d", e.Path, e.Index)
	}
	if e.Err != nil {
		return fmt.Sprintf("parse manifest %s: %s: %v", where, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse manifest %s: %s", where, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

type wireManifest struct {
	Encodings *[]wireEntry `json:"encodings"`
}

type wireEntry struct {
	Path     *string `json:"path"`
	Encoding *string `json:"encoding"`
}

// Read loads and validates the manifest at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes manifest bytes. name is used in error messages only.
func Parse(name string, data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var wire wireManifest
	if err := dec.Decode(&wire); err != nil {
		return nil, &ParseError{Path: name, Index: -1, Msg: "invalid JSON", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Path: name, Index: -1, Msg: "unexpected content after the manifest object"}
	}
	if wire.Encodings == nil {
		return nil, &ParseError{Path: name, Index: -1, Msg: `missing "encodings" array`}
	}

	m := &Manifest{Encodings: make([]Entry, 0, len(*wire.Encodings))}
	for i, entry := range *wire.Encodings {
		if entry.Path == nil || *entry.Path == "" {
			return nil, &ParseError{Path: name, Index: i, Msg: `missing "path"`}
		}
		if entry.Encoding == nil || *entry.Encoding == "" {
			return nil, &ParseError{Path: name, Index: i, Msg: `missing "encoding"`}
		}
		m.Encodings = append(m.Encodings, Entry{Path: *entry.Path, Encoding: *entry.Encoding})
	}
	return m, nil
}

// Write stores m at path as indented JSON, replacing any previous manifest
// atomically.
func Write(path string, m *Manifest) error {
	out := Manifest{Encodings: []Entry{}}
	if m != nil && m.Encodings != nil {
		out.Encodings = m.Encodings
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// RelativePath returns path relative to root when it lies beneath root, and
// path unchanged otherwise.
func RelativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Resolve returns the filesystem path for an entry path. Relative paths are
// taken relative to root.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// Dedupe removes entries whose resolved path was already seen, keeping the
// first occurrence, and returns what it dropped.
func (m *Manifest) Dedupe(root string) []Duplicate {
	if m == nil {
		return nil
	}
	seen := make(map[string]int, len(m.Encodings))
	kept := m.Encodings[:0]
	var dropped []Duplicate
	for i, entry := range m.Encodings {
		key := Resolve(root, entry.Path)
		if first, ok := seen[key]; ok {
			dropped = append(dropped, Duplicate{Index: i, Entry: entry, Kept: kept[first]})
			continue
		}
		seen[key] = len(kept)
		kept = append(kept, entry)
	}
	m.Encodings = kept
	return dropped
}

// MarkConverted relabels the entries whose resolved path is in paths with
// label and returns how many entries changed.
func (m *Manifest) MarkConverted(root string, paths []string, label string) int {
	if m == nil || len(paths) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[Resolve(root, p)] = struct{}{}
	}
	changed := 0
	for i := range m.Encodings {
		if _, ok := set[Resolve(root, m.Encodings[i].Path)]; !ok {
			continue
		}
		if m.Encodings[i].Encoding != label {
			m.Encodings[i].Encoding = label
			changed++
		}
	}
	return changed
}

// Rename rewrites entry paths after files were moved. renames maps old
// filesystem paths to new ones; matching entries keep the relative or
// absolute form they had. It returns how many entries changed.
func (m *Manifest) Rename(root string, renames map[string]string) int {
	if m == nil || len(renames) == 0 {
		return 0
	}
	moved := make(map[string]string, len(renames))
	for from, to := range renames {
		moved[Resolve(root, from)] = Resolve(root, to)
	}
	changed := 0
	for i, entry := range m.Encodings {
		to, ok := moved[Resolve(root, entry.Path)]
		if !ok {
			continue
		}
		if filepath.IsAbs(entry.Path) {
			m.Encodings[i].Path = to
		} else {
			m.Encodings[i].Path = RelativePath(root, to)
		}
		changed++
	}
	return changed
}
