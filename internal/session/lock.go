package session

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock serializes hook processes for one project. The agent runtime spawns
// one process per hook call; without the lock two overlapping calls could
// interleave their touched-set reads and writes.
type Lock struct {
	file *os.File
}

// AcquireLock creates and locks <stateDir>/locks/session.lock, blocking
// until the lock is free.
func AcquireLock(stateDir string) (*Lock, error) {
	locksDir := filepath.Join(stateDir, "locks")
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create locks dir: %w", err)
	}
	lockPath := filepath.Join(locksDir, "session.lock")
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("lock session.lock: %w", err)
	}
	return &Lock{file: file}, nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
