package daemon

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another copycat process holds the instance lock.
var ErrLocked = errors.New("another copycat instance is running")

// AcquireLock takes the instance lock at path without blocking. The daemon
// holds it for its lifetime; maintenance commands that mutate the backup
// store hold it while they run.
func AcquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}

// LockHeld reports whether some process currently holds the lock at path.
func LockHeld(path string) bool {
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = probe.Unlock()
		return false
	}
	return true
}
