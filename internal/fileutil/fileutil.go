// Package fileutil holds the file replacement primitives used when rewriting
// subtitles and the manifest.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultMode os.FileMode = 0o644

// WriteFileAtomic replaces path with data by writing a temp file in the same
// directory and renaming it over the original. Readers see either the old
// bytes or the new bytes, never a mix. An existing file keeps its
// permission bits. When path is a symlink the link stays in place and its
// target is replaced.
func WriteFileAtomic(path string, data []byte) error {
	path, err := resolveLink(path)
	if err != nil {
		return err
	}
	mode, err := existingMode(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteFileInPlace truncates path and writes data into the same inode. A
// failure part way through can leave the file truncated.
func WriteFileInPlace(path string, data []byte) error {
	mode, err := existingMode(path)
	if err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// resolveLink returns the file path refers to once all symlinks are followed.
// A path that does not exist yet is returned unchanged.
func resolveLink(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, fs.ErrNotExist):
		return path, nil
	default:
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
}

func existingMode(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().Perm(), nil
	case errors.Is(err, fs.ErrNotExist):
		return defaultMode, nil
	default:
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
}
