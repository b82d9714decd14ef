package watcher

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Debouncer merges the events of each path until no event has arrived for
// one window, then emits them as a batch sorted by path:
//   - CREATE then MODIFY stays CREATE
//   - CREATE then DELETE cancels out
//   - DELETE then CREATE becomes MODIFY
//   - otherwise the latest operation wins
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]FileEvent
	first   map[string]Operation
	output  chan []FileEvent
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]FileEvent),
		first:   make(map[string]Operation),
		output:  make(chan []FileEvent, 10),
	}
}

// Add queues an event and restarts the window.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	first, seen := d.first[event.Path]
	switch {
	case !seen:
		d.first[event.Path] = event.Operation
		d.pending[event.Path] = event
	case first == OpCreate && event.Operation == OpModify:
		// still a new file
	case first == OpCreate && event.Operation == OpDelete:
		delete(d.first, event.Path)
		delete(d.pending, event.Path)
	case first == OpDelete && event.Operation == OpCreate:
		event.Operation = OpModify
		d.pending[event.Path] = event
	default:
		d.pending[event.Path] = event
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]FileEvent, 0, len(d.pending))
	for _, e := range d.pending {
		batch = append(batch, e)
	}
	slices.SortFunc(batch, func(a, b FileEvent) int { return cmp.Compare(a.Path, b.Path) })
	clear(d.pending)
	clear(d.first)

	select {
	case d.output <- batch:
	default:
		slog.Warn("debouncer_output_full", slog.Int("batch_size", len(batch)))
	}
}

// Output returns the channel of batches. It is closed by Stop.
func (d *Debouncer) Output() <-chan []FileEvent {
	return d.output
}

// Stop discards pending events and closes the output channel. Safe to call
// multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
