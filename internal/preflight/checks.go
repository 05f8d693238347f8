package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// CheckRoot verifies the subtitle root. Both phases write inside it (the
// manifest, or the rewritten files and their temp siblings), so needWrite is
// normally true.
func CheckRoot(path string, needWrite bool) Result {
	return CheckDirectoryAccess("Root directory", path, needWrite)
}

// CheckDirectoryAccess verifies that the directory exists and can be listed,
// and written to when needWrite is set.
func CheckDirectoryAccess(name, path string, needWrite bool) Result {
	res := Result{Name: name, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Missing = true
			res.Detail = fmt.Sprintf("%s (error: does not exist)", path)
			return res
		}
		res.Detail = fmt.Sprintf("%s (error: stat: %v)", path, err)
		return res
	}
	if !info.IsDir() {
		res.Detail = fmt.Sprintf("%s (error: is not a directory)", path)
		return res
	}

	mode := uint32(unix.R_OK | unix.X_OK)
	access := "read ok"
	if needWrite {
		mode |= unix.W_OK
		access = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		res.Detail = fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)
		return res
	}
	res.Passed = true
	res.Detail = fmt.Sprintf("%s (%s)", path, access)
	return res
}
