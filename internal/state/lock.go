package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = "state.lock"

// ErrLocked is returned when another process holds the state lock
var ErrLocked = errors.New("another stackpr process is running in this repository")

// Lock is an acquired exclusive lock on the state directory
type Lock struct {
	fl *flock.Flock
}

// Lock acquires the exclusive state lock without blocking. It returns ErrLocked if
// another process holds it. The lock is released by Unlock or when the process exits.
func (s *Store) Lock() (*Lock, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	fl := flock.New(filepath.Join(s.dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire state lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &Lock{fl: fl}, nil
}

// Unlock releases the lock. It is safe to call more than once.
func (l *Lock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
