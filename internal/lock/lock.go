// Package lock provides the cross-process lock held while an index is
// built.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/wordex/internal/errors"
)

// FileLock is an exclusive lock on <dir>/<name>.lock.
// Works on all platforms (Unix, Linux, macOS, Windows).
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// ForIndex returns the lock guarding the index files named name in dir.
func ForIndex(dir, name string) *FileLock {
	lockPath := filepath.Join(dir, name+".lock")
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires the lock, blocking until it is available.
func (l *FileLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Acquire takes the lock without blocking, or fails with ERR_206 when it
// is held elsewhere. With wait set it retries with backoff until ctx ends
// or the retries run out.
func (l *FileLock) Acquire(ctx context.Context, wait bool) error {
	attempt := func() error {
		ok, err := l.TryLock()
		if err != nil {
			return errors.IOError("cannot create lock file", err).WithDetail("path", l.path)
		}
		if !ok {
			return errors.New(errors.ErrCodeIndexLocked, "another build holds the index lock", nil).
				WithDetail("path", l.path).
				WithSuggestion("Wait for the other build to finish, or pass --wait")
		}
		return nil
	}
	if !wait {
		return attempt()
	}
	cfg := errors.DefaultRetryConfig()
	cfg.MaxRetries = 20
	cfg.MaxDelay = 2 * time.Second
	return errors.Retry(ctx, cfg, attempt)
}

// Unlock releases the lock. Calling it on an unlocked FileLock is a no-op.
// The lock file itself is left in place.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string { return l.path }

// IsLocked reports whether this FileLock holds the lock.
func (l *FileLock) IsLocked() bool { return l.locked }

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
