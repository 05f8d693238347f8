package transcode

import (
	"os"

	"subenc/internal/fileutil"
)

// FileSystem is the file access the engine needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFileSystem returns the local filesystem. With atomic set, writes go to a
// temp file that is renamed over the original; otherwise the original is
// truncated and rewritten in place.
func OSFileSystem(atomic bool) FileSystem {
	return osFS{atomic: atomic}
}

type osFS struct {
	atomic bool
}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f osFS) WriteFile(path string, data []byte) error {
	if f.atomic {
		return fileutil.WriteFileAtomic(path, data)
	}
	return fileutil.WriteFileInPlace(path, data)
}
