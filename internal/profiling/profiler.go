// Package profiling writes pprof CPU and heap profiles and execution traces
// for a single command run.
package profiling

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Paths names the profile files to write. Empty paths are skipped.
type Paths struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profile was requested.
func (p Paths) Enabled() bool {
	return p.CPU != "" || p.Heap != "" || p.Trace != ""
}

// Run is an active profiling session.
type Run struct {
	paths     Paths
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and tracing as requested. Stop must be called
// to flush them and to write the heap profile.
func Start(paths Paths) (*Run, error) {
	r := &Run{paths: paths}

	if paths.CPU != "" {
		f, err := os.Create(paths.CPU)
		if err != nil {
			return nil, fmt.Errorf("create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start CPU profile: %w", err)
		}
		r.cpuFile = f
	}

	if paths.Trace != "" {
		f, err := os.Create(paths.Trace)
		if err != nil {
			_ = r.Stop()
			return nil, fmt.Errorf("create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = r.Stop()
			return nil, fmt.Errorf("start trace: %w", err)
		}
		r.traceFile = f
	}
	return r, nil
}

// Stop ends CPU profiling and tracing and writes the heap profile. It is
// safe to call more than once.
func (r *Run) Stop() error {
	var errs []error
	if r.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, r.cpuFile.Close())
		r.cpuFile = nil
	}
	if r.traceFile != nil {
		trace.Stop()
		errs = append(errs, r.traceFile.Close())
		r.traceFile = nil
	}
	if r.paths.Heap != "" {
		errs = append(errs, WriteHeap(r.paths.Heap))
		r.paths.Heap = ""
	}
	return errors.Join(errs...)
}

// WriteHeap writes a heap profile after forcing a collection.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}

// LogMemory logs current heap usage under event.
func LogMemory(logger *slog.Logger, event string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	logger.Debug(event,
		slog.String("heap_alloc", FormatBytes(m.HeapAlloc)),
		slog.String("heap_sys", FormatBytes(m.HeapSys)),
		slog.Uint64("num_gc", uint64(m.NumGC)))
}

// FormatBytes formats bytes into human-readable form.
func FormatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
