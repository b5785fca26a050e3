// Package lockfile provides the advisory per-project lock held for the
// duration of every working run.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/grovetools/rnsgit/errors"
)

// Lock is a held lock file. Release it when the run finishes.
type Lock struct {
	path string
	pid  int
}

// Acquire creates path holding the current PID. If the file already names
// a live process the project is locked; a lock left by a dead process is
// taken over.
func Acquire(path string) (*Lock, error) {
	pid := os.Getpid()
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(pid))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %v %v", werr, cerr)
			}
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		holder, rerr := Read(path)
		if rerr == nil && IsProcessAlive(holder) {
			return nil, errors.Locked(path, holder)
		}
		// Stale or unreadable lock, clean up and retry once
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}
	holder, _ := Read(path)
	return nil, errors.Locked(path, holder)
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if pid, err := Read(l.path); err == nil && pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read returns the PID recorded in the lock file.
func Read(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// IsHeld reports whether path names a live process.
func IsHeld(path string) (bool, int, error) {
	pid, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return IsProcessAlive(pid), pid, nil
}

// IsProcessAlive checks if a process with the given PID is still running.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	// FindProcess never fails on Unix
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 only checks for existence. EPERM means it exists under
	// another user.
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
