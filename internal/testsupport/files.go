package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// RussianSample is Cyrillic subtitle text long enough for charset detection.
const RussianSample = "1\n00:00:01,000 --> 00:00:04,000\nПривет! Съешь же ещё этих мягких французских булок, да выпей чаю.\n\n" +
	"2\n00:00:05,000 --> 00:00:08,000\nВ чащах юга жил бы цитрус? Да, но фальшивый экземпляр!\n"

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CP1251 encodes s as windows-1251 bytes.
func CP1251(t testing.TB, s string) []byte {
	t.Helper()

	out, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode windows-1251: %v", err)
	}
	return out
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
