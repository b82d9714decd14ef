package lock

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aman-CERP/wordex/internal/errors"
)

func TestFileLock_LockUnlock(t *testing.T) {
	dir := t.TempDir()
	l := ForIndex(dir, "corpus")

	if err := l.Lock(); err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	if _, err := os.Stat(l.Path()); os.IsNotExist(err) {
		t.Error("lock file was not created")
	}
	if filepath.Base(l.Path()) != "corpus.lock" {
		t.Errorf("Path() = %q, want corpus.lock", l.Path())
	}
	if !l.IsLocked() {
		t.Error("IsLocked() should be true after Lock()")
	}

	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Errorf("second Unlock() should not error: %v", err)
	}
}

func TestFileLock_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	l := ForIndex(dir, "corpus")

	ok, err := l.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer func() { _ = l.Unlock() }()
}

func TestFileLock_TryLock_AlreadyLocked(t *testing.T) {
	dir := t.TempDir()
	first := ForIndex(dir, "corpus")
	second := ForIndex(dir, "corpus")

	if err := first.Lock(); err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer func() { _ = first.Unlock() }()

	ok, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock() failed: %v", err)
	}
	if ok {
		t.Error("TryLock() should fail while another holder has the lock")
	}
}

func TestFileLock_Acquire(t *testing.T) {
	dir := t.TempDir()
	first := ForIndex(dir, "corpus")
	second := ForIndex(dir, "corpus")

	if err := first.Acquire(context.Background(), false); err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	err := second.Acquire(context.Background(), false)
	if errors.GetCode(err) != errors.ErrCodeIndexLocked {
		t.Fatalf("Acquire() on held lock = %v, want %s", err, errors.ErrCodeIndexLocked)
	}
	if !errors.IsRetryable(err) {
		t.Error("a held lock should be retryable")
	}

	// Waiting succeeds once the holder lets go.
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}
	if err := second.Acquire(context.Background(), true); err != nil {
		t.Fatalf("Acquire(wait) failed: %v", err)
	}
	_ = second.Unlock()
}

func TestFileLock_AcquireCancelled(t *testing.T) {
	dir := t.TempDir()
	holder := ForIndex(dir, "corpus")
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ForIndex(dir, "corpus").Acquire(ctx, true); err == nil {
		t.Error("Acquire() with a cancelled context should fail")
	}
}
