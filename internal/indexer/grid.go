package indexer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Aman-CERP/wordex/internal/gridio"
)

// GridHeader opens a .grid stream: the page count and path of every
// document, in document order.
type GridHeader struct {
	PageCounts []int32
	Paths      []string
}

// TotalPages returns the number of page records that follow the header.
func (h GridHeader) TotalPages() int64 {
	var n int64
	for _, c := range h.PageCounts {
		n += int64(c)
	}
	return n
}

func (h GridHeader) validate() error {
	if len(h.PageCounts) != len(h.Paths) {
		return fmt.Errorf("%d page counts for %d documents", len(h.PageCounts), len(h.Paths))
	}
	for i, c := range h.PageCounts {
		if c < 0 {
			return fmt.Errorf("document %d has negative page count %d", i+1, c)
		}
	}
	if h.TotalPages() > 1<<31-1 {
		return fmt.Errorf("%d pages exceed the page number range", h.TotalPages())
	}
	return nil
}

// GridWriter writes a .grid stream. Exactly TotalPages records must be
// written before Close.
type GridWriter struct {
	w         *gridio.Writer
	remaining int64
}

// NewGridWriter writes the header to w.
func NewGridWriter(w io.Writer, h GridHeader) (*GridWriter, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	gw := &GridWriter{w: gridio.NewWriter(w), remaining: h.TotalPages()}
	if err := gw.w.WriteIntArray(h.PageCounts); err != nil {
		return nil, err
	}
	if err := gw.w.WriteStringArray(h.Paths); err != nil {
		return nil, err
	}
	return gw, nil
}

// WritePage writes one page record. Documents are numbered from 1.
func (g *GridWriter) WritePage(document, localPage int32, words []string) error {
	if g.remaining == 0 {
		return errors.New("grid: more pages than the header declares")
	}
	g.remaining--
	if err := g.w.WriteInt(document); err != nil {
		return err
	}
	if err := g.w.WriteInt(localPage); err != nil {
		return err
	}
	return g.w.WriteStringArray(words)
}

// Close flushes the stream and checks that every declared page was written.
func (g *GridWriter) Close() error {
	if err := g.w.Flush(); err != nil {
		return err
	}
	if g.remaining != 0 {
		return fmt.Errorf("grid: %d declared pages were not written", g.remaining)
	}
	return nil
}

// GridSource reads a .grid stream as a PageSource. Pages are numbered 1,
// 2, 3... in stream order.
type GridSource struct {
	Header GridHeader

	r         *gridio.Reader
	closer    io.Closer
	remaining int64
	number    int32
}

// NewGridSource reads the header from r.
func NewGridSource(r io.Reader) (*GridSource, error) {
	gr := gridio.NewReader(r)
	counts, err := gr.ReadIntArray()
	if err != nil {
		return nil, fmt.Errorf("read grid page counts: %w", err)
	}
	paths, err := gr.ReadStringArray()
	if err != nil {
		return nil, fmt.Errorf("read grid paths: %w", err)
	}
	h := GridHeader{PageCounts: counts, Paths: paths}
	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gridio.ErrFormat, err)
	}
	return &GridSource{Header: h, r: gr, remaining: h.TotalPages()}, nil
}

// OpenGrid opens the grid file at path. Close releases it.
func OpenGrid(path string) (*GridSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewGridSource(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// Next returns the next page, or io.EOF after the last declared page.
func (g *GridSource) Next() (Page, error) {
	if g.remaining == 0 {
		return Page{}, io.EOF
	}
	doc, err := g.r.ReadInt()
	if err != nil {
		return Page{}, truncated(err)
	}
	local, err := g.r.ReadInt()
	if err != nil {
		return Page{}, truncated(err)
	}
	words, err := g.r.ReadStringArray()
	if err != nil {
		return Page{}, truncated(err)
	}
	g.remaining--
	g.number++
	return Page{Number: g.number, Words: words, Document: doc, LocalPage: local}, nil
}

// Close closes the underlying file when the source was opened by path.
func (g *GridSource) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read grid page: %w", err)
}
