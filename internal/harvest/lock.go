package harvest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the export directory while a run is active.
const LockFileName = ".panograb.lock"

// ErrLocked indicates another run is writing into the same export directory.
var ErrLocked = errors.New("export directory is in use by another run")

// Lock guards an export directory against concurrent runs.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the export directory lock without blocking.
func AcquireLock(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &Lock{lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
