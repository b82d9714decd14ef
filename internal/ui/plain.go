package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs plain text progress (for CI/pipes). Only stage
// changes, every tenth of a stage and its last step are printed.
type PlainRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	stage    Stage
	started  bool
	lastStep int
	errors   int
	warnings int
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || event.Stage != r.stage {
		r.started = true
		r.stage = event.Stage
		r.lastStep = -1
	}

	msg := event.Message
	if msg == "" {
		msg = event.CurrentFile
	}

	if event.Total <= 0 {
		if msg != "" {
			_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
		}
		return
	}

	// Tenths of the stage, so large builds print a bounded number of lines.
	step := event.Current * 10 / event.Total
	if step == r.lastStep && event.Current != event.Total && event.Current != 0 {
		return
	}
	r.lastStep = step

	line := fmt.Sprintf("[%s] %d/%d %s", event.Stage.Icon(), event.Current, event.Total, event.Stage.Unit())
	if msg != "" {
		line += " - " + msg
	}
	_, _ = fmt.Fprintln(r.out, line)
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
		r.warnings++
	} else {
		r.errors++
	}

	if event.File != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.File, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d documents, %d pages, %d words indexed in %s",
		stats.Documents, stats.Pages, stats.Words, stats.Duration.Round(100*time.Millisecond))
	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}
	_, _ = fmt.Fprintln(r.out)

	if stats.Stages.Total() == 0 {
		return
	}
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
	if stats.Stages.Extract > 0 {
		_, _ = fmt.Fprintf(r.out, "  Extract:    %s\n", stats.Stages.Extract.Round(time.Millisecond))
	}
	_, _ = fmt.Fprintf(r.out, "  Dictionary: %s\n", stats.Stages.Dictionary.Round(time.Millisecond))
	_, _ = fmt.Fprintf(r.out, "  Encode:     %s\n", stats.Stages.Encode.Round(time.Millisecond))
	_, _ = fmt.Fprintf(r.out, "  Transpose:  %s\n", stats.Stages.Transpose.Round(time.Millisecond))
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
