package build

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an exclusive advisory lock on a path. It serializes
// concurrent build jobs targeting the same artifact: the second
// builder blocks here, then finds a fresh stamp and skips the
// toolchain.
type fileLock struct {
	f *os.File
}

// acquireLock blocks until the exclusive lock on path is held.
func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() {
	// Closing drops the flock; the explicit unlock just makes the
	// handoff immediate.
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	_ = l.f.Close()
}
