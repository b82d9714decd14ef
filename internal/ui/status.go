package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo describes a built index for `wordex info`.
type StatusInfo struct {
	Name       string    `json:"name"`
	Documents  int       `json:"documents"`
	Pages      int64     `json:"pages"`
	Words      int       `json:"words"`
	ShortPages bool      `json:"short_pages"`
	BuiltAt    time.Time `json:"built_at"`

	// File sizes in bytes, keyed by extension.
	Files     map[string]int64 `json:"files"`
	TotalSize int64            `json:"total_size"`

	// History is nil when no history has been recorded.
	History *HistoryInfo `json:"history,omitempty"`
}

// HistoryInfo summarises the query history.
type HistoryInfo struct {
	Statements  int64     `json:"statements"`
	ZeroResults int64     `json:"zero_results"`
	Errors      int64     `json:"errors"`
	LastQuery   time.Time `json:"last_query"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

// Render writes the status as text.
func (r *StatusRenderer) Render(info StatusInfo, fileOrder []string) {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index: "+info.Name))

	width := "32-bit"
	if info.ShortPages {
		width = "16-bit"
	}
	_, _ = fmt.Fprintf(r.out, "  Documents:  %d\n", info.Documents)
	_, _ = fmt.Fprintf(r.out, "  Pages:      %d (%s page numbers)\n", info.Pages, width)
	_, _ = fmt.Fprintf(r.out, "  Words:      %d\n", info.Words)
	if !info.BuiltAt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Built:      %s\n", formatTime(info.BuiltAt))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Files:")
	for _, ext := range fileOrder {
		if size, ok := info.Files[ext]; ok {
			_, _ = fmt.Fprintf(r.out, "    %-8s %s\n", ext, FormatBytes(size))
		}
	}
	_, _ = fmt.Fprintf(r.out, "    %-8s %s\n", "total", FormatBytes(info.TotalSize))

	if h := info.History; h != nil {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  History:")
		_, _ = fmt.Fprintf(r.out, "    Statements:   %d\n", h.Statements)
		_, _ = fmt.Fprintf(r.out, "    Zero results: %s\n", r.count(h.ZeroResults, r.styles.Warning.Render))
		_, _ = fmt.Fprintf(r.out, "    Errors:       %s\n", r.count(h.Errors, r.styles.Error.Render))
		if !h.LastQuery.IsZero() {
			_, _ = fmt.Fprintf(r.out, "    Last query:   %s\n", formatTime(h.LastQuery))
		}
	}
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) count(n int64, style func(...string) string) string {
	s := fmt.Sprint(n)
	if n > 0 {
		return style(s)
	}
	return s
}

// formatTime formats a time relative to now.
func formatTime(t time.Time) string {
	diff := time.Since(t)
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
