// Package runlock keeps two subenc runs from working on the same root at the
// same time. The lock is an advisory flock on a file inside the root.
package runlock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the root.
const FileName = ".subenc.lock"

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another subenc run is already working on this root")

// Lock is a held run lock.
type Lock struct {
	lock *flock.Flock
}

// Acquire takes the lock for root without blocking.
func Acquire(root string) (*Lock, error) {
	path := filepath.Join(root, FileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return &Lock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.lock.Path()
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
