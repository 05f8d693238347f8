package transcode

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"subenc/internal/charset"
	"subenc/internal/manifest"
	"subenc/internal/testsupport"
)

type memFS struct {
	mu       sync.Mutex
	files    map[string][]byte
	reads    map[string]int
	writes   map[string]int
	readErr  map[string]error
	writeErr map[string]error
}

func newMemFS() *memFS {
	return &memFS{
		files:    map[string][]byte{},
		reads:    map[string]int{},
		writes:   map[string]int{},
		readErr:  map[string]error{},
		writeErr: map[string]error{},
	}
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[path]++
	if err := m.readErr[path]; err != nil {
		return nil, err
	}
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[path]++
	if err := m.writeErr[path]; err != nil {
		return err
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

const root = "/subs"

func TestTranscodeSkipsTargetWithoutIO(t *testing.T) {
	mem := newMemFS()
	engine := NewEngine(root, mem, nil)

	for _, label := range []string{"UTF-8", "utf-8"} {
		res := engine.Transcode(context.Background(), manifest.Entry{Path: "a.srt", Encoding: label})
		skipped, ok := res.(Skipped)
		if !ok {
			t.Fatalf("%s: expected Skipped, got %#v", label, res)
		}
		if skipped.Path != "a.srt" {
			t.Fatalf("unexpected path %q", skipped.Path)
		}
	}
	if len(mem.reads) != 0 || len(mem.writes) != 0 {
		t.Fatalf("expected no I/O, got reads=%v writes=%v", mem.reads, mem.writes)
	}
}

func TestTranscodeRewritesLegacyBytes(t *testing.T) {
	mem := newMemFS()
	path := filepath.Join(root, "b.srt")
	original := testsupport.CP1251(t, testsupport.RussianSample)
	mem.files[path] = original

	res := NewEngine(root, mem, nil).Transcode(context.Background(), manifest.Entry{Path: "b.srt", Encoding: "windows-1251"})
	done, ok := res.(Transcoded)
	if !ok {
		t.Fatalf("expected Transcoded, got %#v", res)
	}
	if done.Replaced {
		t.Fatal("did not expect replacement")
	}
	if done.BytesIn != len(original) || done.BytesOut != len(testsupport.RussianSample) {
		t.Fatalf("unexpected byte counts %#v", done)
	}
	if string(mem.files[path]) != testsupport.RussianSample {
		t.Fatalf("unexpected rewritten content %q", mem.files[path])
	}
	if mem.reads[path] != 1 || mem.writes[path] != 1 {
		t.Fatalf("expected one read and one write, got %d/%d", mem.reads[path], mem.writes[path])
	}
}

func TestTranscodeUnknownEncodingLeavesFile(t *testing.T) {
	mem := newMemFS()
	path := filepath.Join(root, "x.srt")
	mem.files[path] = []byte{0xC0, 0xC1}

	res := NewEngine(root, mem, nil).Transcode(context.Background(), manifest.Entry{Path: "x.srt", Encoding: "FOO"})
	failed, ok := res.(Failed)
	if !ok {
		t.Fatalf("expected Failed, got %#v", res)
	}
	if failed.Path != "x.srt" {
		t.Fatalf("failure must report the manifest path, got %q", failed.Path)
	}
	var unknown *charset.UnknownLabelError
	if !errors.As(failed.Err, &unknown) || failed.Err.Error() != "Unknown encoding: FOO" {
		t.Fatalf("unexpected error %v", failed.Err)
	}
	if mem.writes[path] != 0 {
		t.Fatal("file must not be written for an unknown encoding")
	}
	if string(mem.files[path]) != string([]byte{0xC0, 0xC1}) {
		t.Fatal("file content changed")
	}
}

func TestTranscodeReadAndWriteFailures(t *testing.T) {
	mem := newMemFS()
	readPath := filepath.Join(root, "r.srt")
	writePath := filepath.Join(root, "w.srt")
	mem.readErr[readPath] = fs.ErrPermission
	mem.files[writePath] = []byte{0xE0}
	mem.writeErr[writePath] = errors.New("disk full")
	engine := NewEngine(root, mem, nil)

	res := engine.Transcode(context.Background(), manifest.Entry{Path: "r.srt", Encoding: "windows-1251"})
	failed, ok := res.(Failed)
	if !ok || !errors.Is(failed.Err, fs.ErrPermission) || !strings.HasPrefix(failed.Err.Error(), "read file:") {
		t.Fatalf("expected read failure, got %#v", res)
	}

	res = engine.Transcode(context.Background(), manifest.Entry{Path: "w.srt", Encoding: "windows-1251"})
	failed, ok = res.(Failed)
	if !ok || !strings.HasPrefix(failed.Err.Error(), "write file:") {
		t.Fatalf("expected write failure, got %#v", res)
	}
}

func TestTranscodeReplacementStillCounts(t *testing.T) {
	mem := newMemFS()
	path := filepath.Join(root, "j.srt")
	mem.files[path] = []byte{'o', 'k', 0x82}

	res := NewEngine(root, mem, nil).Transcode(context.Background(), manifest.Entry{Path: "j.srt", Encoding: "shift_jis"})
	done, ok := res.(Transcoded)
	if !ok {
		t.Fatalf("expected Transcoded, got %#v", res)
	}
	if !done.Replaced {
		t.Fatal("expected replacement to be reported")
	}
	if !utf8.Valid(mem.files[path]) {
		t.Fatal("output is not valid UTF-8")
	}
}

func TestTranscodeAbsoluteEntryPath(t *testing.T) {
	mem := newMemFS()
	path := "/elsewhere/c.srt"
	mem.files[path] = []byte{0xE9}

	res := NewEngine(root, mem, nil).Transcode(context.Background(), manifest.Entry{Path: path, Encoding: "windows-1252"})
	if _, ok := res.(Transcoded); !ok {
		t.Fatalf("expected Transcoded, got %#v", res)
	}
	if string(mem.files[path]) != "é" {
		t.Fatalf("unexpected content %q", mem.files[path])
	}
}
