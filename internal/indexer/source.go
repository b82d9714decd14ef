package indexer

import (
	"fmt"
	"io"
)

// Page is the bag of words found on one page. Number is the global page
// number, starting at 1.
type Page struct {
	Number int32
	Words  []string

	// Document and LocalPage locate the page in its source document when
	// known. The builder does not use them.
	Document  int32
	LocalPage int32
}

// PageSource is an ordered stream of pages. Page numbers never decrease;
// consecutive pages with the same number are merged. Next returns io.EOF
// after the last page.
type PageSource interface {
	Next() (Page, error)
}

// SliceSource serves pages from memory.
type SliceSource struct {
	pages []Page
	pos   int
}

// NewSliceSource returns a source over pages.
func NewSliceSource(pages []Page) *SliceSource {
	return &SliceSource{pages: pages}
}

// Sequential numbers bags of words as pages 1, 2, 3...
func Sequential(bags ...[]string) *SliceSource {
	pages := make([]Page, len(bags))
	for i, words := range bags {
		pages[i] = Page{Number: int32(i + 1), Words: words}
	}
	return NewSliceSource(pages)
}

func (s *SliceSource) Next() (Page, error) {
	if s.pos >= len(s.pages) {
		return Page{}, io.EOF
	}
	p := s.pages[s.pos]
	s.pos++
	return p, nil
}

// OrderError reports a page number lower than its predecessor, or below 1.
type OrderError struct {
	Previous, Got int32
}

func (e *OrderError) Error() string {
	if e.Got < 1 {
		return fmt.Sprintf("page number %d is not positive", e.Got)
	}
	return fmt.Sprintf("page number %d follows page %d", e.Got, e.Previous)
}
