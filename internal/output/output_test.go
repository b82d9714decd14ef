package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Icons(t *testing.T) {
	tests := []struct {
		name  string
		print func(w *Writer)
		want  string
	}{
		{name: "status", print: func(w *Writer) { w.Status(">", "Extracting") }, want: "> Extracting\n"},
		{name: "status without icon", print: func(w *Writer) { w.Status("", "indented") }, want: "   indented\n"},
		{name: "success", print: func(w *Writer) { w.Successf("Indexed %d pages", 3) }, want: "✓ Indexed 3 pages\n"},
		{name: "warning", print: func(w *Writer) { w.Warning("atLeast3 is the same as and()") }, want: "! atLeast3 is the same as and()\n"},
		{name: "error", print: func(w *Writer) { w.Errorf("line %d failed", 2) }, want: "✗ line 2 failed\n"},
		{name: "plain", print: func(w *Writer) { w.Plain("No pages match this criteria.") }, want: "No pages match this criteria.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a writer on a buffer, which is never a terminal
			buf := &bytes.Buffer{}
			w := New(buf)

			// When: printing
			tt.print(w)

			// Then: output is uncolored
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_KeyValue_Aligns(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, false)

	w.KeyValue("Pages", 12)
	w.KeyValue("Words", 340)

	assert.Equal(t, "  Pages:         12\n  Words:         340\n", buf.String())
}

func TestWriter_Code_Indents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("a & b\nc | d")

	assert.Equal(t, "\n  a & b\n  c | d\n\n", buf.String())
	assert.Same(t, buf, w.Out())
}
