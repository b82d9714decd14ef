package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reports changes to a fixed set of files.
type FileWatcher struct {
	opts      Options
	paths     []string
	watched   map[string]bool
	debouncer *Debouncer
	events    chan []FileEvent
	errors    chan error
	stopCh    chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	polling bool
}

// New creates a watcher for paths. The files need not exist yet.
func New(opts Options, paths ...string) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}
	opts = opts.WithDefaults()

	w := &FileWatcher{
		opts:      opts,
		watched:   make(map[string]bool, len(paths)),
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, 1),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		if !w.watched[abs] {
			w.watched[abs] = true
			w.paths = append(w.paths, abs)
		}
	}
	slices.Sort(w.paths)
	return w, nil
}

// Paths returns the absolute paths being watched.
func (w *FileWatcher) Paths() []string { return slices.Clone(w.paths) }

// Events returns debounced batches. The channel is closed after Stop.
func (w *FileWatcher) Events() <-chan []FileEvent { return w.events }

// Errors returns non-fatal watch errors. It is never closed.
func (w *FileWatcher) Errors() <-chan error { return w.errors }

// Polling reports whether the watcher fell back to polling.
func (w *FileWatcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Run watches until ctx is done or Stop is called. It returns ctx.Err()
// when cancelled and nil after Stop.
func (w *FileWatcher) Run(ctx context.Context) error {
	go w.forward()
	defer w.Stop()

	if !w.opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			return w.runNotify(ctx, fsw)
		}
		slog.Warn("fsnotify_unavailable", slog.String("error", err.Error()))
	}
	return w.runPolling(ctx)
}

// Stop ends Run and closes Events. Safe to call multiple times.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.debouncer.Stop()
	})
}

func (w *FileWatcher) forward() {
	defer close(w.events)
	for batch := range w.debouncer.Output() {
		select {
		case w.events <- batch:
		case <-w.stopCh:
		}
	}
}

func (w *FileWatcher) runNotify(ctx context.Context, fsw *fsnotify.Watcher) error {
	defer func() { _ = fsw.Close() }()

	dirs := make(map[string]bool)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	slog.Debug("watcher_started", slog.String("mode", "fsnotify"), slog.Int("files", len(w.paths)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleNotify(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *FileWatcher) handleNotify(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.watched[path] {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpDelete
	default:
		return
	}
	w.debouncer.Add(FileEvent{Path: path, Operation: op, Timestamp: time.Now()})
}

type snapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (w *FileWatcher) stat() map[string]snapshot {
	state := make(map[string]snapshot, len(w.paths))
	for _, p := range w.paths {
		info, err := os.Stat(p)
		switch {
		case err == nil:
			state[p] = snapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
		case !errors.Is(err, os.ErrNotExist):
			w.emitError(err)
		}
	}
	return state
}

func (w *FileWatcher) runPolling(ctx context.Context) error {
	w.mu.Lock()
	w.polling = true
	w.mu.Unlock()
	slog.Debug("watcher_started", slog.String("mode", "polling"), slog.Int("files", len(w.paths)))

	prev := w.stat()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
		}

		cur := w.stat()
		now := time.Now()
		for _, p := range w.paths {
			before, after := prev[p], cur[p]
			switch {
			case !before.exists && after.exists:
				w.debouncer.Add(FileEvent{Path: p, Operation: OpCreate, Timestamp: now})
			case before.exists && !after.exists:
				w.debouncer.Add(FileEvent{Path: p, Operation: OpDelete, Timestamp: now})
			case after.exists && (!before.modTime.Equal(after.modTime) || before.size != after.size):
				w.debouncer.Add(FileEvent{Path: p, Operation: OpModify, Timestamp: now})
			}
		}
		prev = cur
	}
}

func (w *FileWatcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher_error_dropped", slog.String("error", err.Error()))
	}
}
