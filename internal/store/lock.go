package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock is an exclusive advisory lock on the data directory. It serialises
// read-modify-write sequences of overlapping runs.
type Lock struct {
	f *os.File
}

// AcquireLock blocks until the data directory lock is held.
func AcquireLock(dataDir string) (*Lock, error) {
	path := filepath.Join(dataDir, LockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if err := unlockFile(f); err != nil {
		f.Close()
		return fmt.Errorf("unlocking %s: %w", f.Name(), err)
	}
	return f.Close()
}
