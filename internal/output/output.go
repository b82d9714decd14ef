// Package output provides consistent CLI output formatting with colors.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out      io.Writer
	useColor bool

	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
}

// New creates a Writer that colors its output only when out is a terminal.
func New(out io.Writer) *Writer {
	return NewWithColor(out, isTerminal(out))
}

// NewWithColor creates a Writer with color explicitly on or off.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	w := &Writer{out: out, useColor: useColor}
	if useColor {
		w.success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		w.warning = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		w.failure = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		w.label = lipgloss.NewStyle().Bold(true)
	}
	return w
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer { return w.out }

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.render(w.success, "✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.render(w.warning, "!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.render(w.failure, "✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Plain prints msg unadorned, followed by a newline.
func (w *Writer) Plain(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Plainf prints a formatted unadorned line.
func (w *Writer) Plainf(format string, args ...any) {
	w.Plain(fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned "key: value" line.
func (w *Writer) KeyValue(key string, value any) {
	_, _ = fmt.Fprintf(w.out, "  %s %v\n", w.render(w.label, fmt.Sprintf("%-14s", key+":")), value)
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

func (w *Writer) render(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}
