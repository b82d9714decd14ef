// Package ui provides terminal UI components for build progress and index
// status display.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is a step of extracting and building an index.
type Stage int

const (
	// StageExtract reads documents into the page grid.
	StageExtract Stage = iota
	// StageDictionary writes the sorted word list.
	StageDictionary
	// StageEncode maps every page to its word numbers.
	StageEncode
	// StageTranspose turns page rows into per-word page lists.
	StageTranspose
	// StageComplete indicates the build is complete.
	StageComplete
)

// Stages lists the working stages in pipeline order.
var Stages = []Stage{StageExtract, StageDictionary, StageEncode, StageTranspose}

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageExtract:
		return "Extract"
	case StageDictionary:
		return "Dictionary"
	case StageEncode:
		return "Encode"
	case StageTranspose:
		return "Transpose"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage tag for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageExtract:
		return "EXTRACT"
	case StageDictionary:
		return "DICT"
	case StageEncode:
		return "ENCODE"
	case StageTranspose:
		return "XPOSE"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// Unit names what a stage counts.
func (s Stage) Unit() string {
	switch s {
	case StageExtract:
		return "documents"
	case StageDictionary, StageTranspose:
		return "words"
	default:
		return "pages"
	}
}

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Stage       Stage
	Current     int
	Total       int
	CurrentFile string
	Message     string
}

// ErrorEvent represents an error during processing.
type ErrorEvent struct {
	File   string
	Err    error
	IsWarn bool
}

// StageTimings tracks duration for each stage.
type StageTimings struct {
	Extract    time.Duration
	Dictionary time.Duration
	Encode     time.Duration
	Transpose  time.Duration
}

// Total sums the stage durations.
func (t StageTimings) Total() time.Duration {
	return t.Extract + t.Dictionary + t.Encode + t.Transpose
}

// CompletionStats contains final build statistics.
type CompletionStats struct {
	Index     string
	Documents int
	Pages     int
	Words     int
	Duration  time.Duration
	Errors    int
	Warnings  int
	Stages    StageTimings
}

// Renderer defines the interface for progress display.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress updates progress display.
	UpdateProgress(event ProgressEvent)

	// AddError adds an error to display.
	AddError(event ErrorEvent)

	// Complete marks rendering as complete with summary.
	Complete(stats CompletionStats)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	IndexName  string // shown in the TUI header
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithIndexName sets the index name shown in the header.
func WithIndexName(name string) ConfigOption {
	return func(c *Config) {
		c.IndexName = name
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer picks a TUI renderer for interactive terminals and a plain
// text renderer for CI, pipes or when plain output is forced.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
