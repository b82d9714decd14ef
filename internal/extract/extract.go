// Package extract splits text documents into pages of words and writes
// them as the page stream an index is built from.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSeparator is the form feed that ends a page in plain text.
const DefaultPageSeparator = "\f"

// Config controls extraction.
type Config struct {
	PageSeparator string

	// Workers bounds concurrent document reads. Zero means NumCPU.
	Workers int

	KeepNumbers bool
}

// Document is the words of every page of one file.
type Document struct {
	// Index is the position of the document in the input, from 0.
	Index int
	Path  string
	Pages [][]string
}

// Extractor reads documents concurrently and hands them back in input
// order.
type Extractor struct {
	sep      []byte
	workers  int
	analyzer *Analyzer
}

// New creates an extractor.
func New(cfg Config) *Extractor {
	sep := cfg.PageSeparator
	if sep == "" {
		sep = DefaultPageSeparator
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{
		sep:      []byte(sep),
		workers:  workers,
		analyzer: NewAnalyzer(cfg.KeepNumbers),
	}
}

// SplitPages splits text at the page separator. A final empty page, left
// by a trailing separator, is dropped. Empty text is one empty page.
func (e *Extractor) SplitPages(text []byte) [][]byte {
	pages := bytes.Split(text, e.sep)
	if n := len(pages); n > 1 && len(bytes.TrimSpace(pages[n-1])) == 0 {
		pages = pages[:n-1]
	}
	return pages
}

// ReadDocument reads and analyses one file.
func (e *Extractor) ReadDocument(path string) (Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	raw := e.SplitPages(text)
	doc := Document{Path: path, Pages: make([][]string, len(raw))}
	for i, page := range raw {
		doc.Pages[i] = e.analyzer.Words(page)
	}
	return doc, nil
}

// CountPages returns the page count of every file.
func (e *Extractor) CountPages(ctx context.Context, paths []string) ([]int32, error) {
	counts := make([]int32, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			counts[i] = int32(len(e.SplitPages(text)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Extract reads paths with up to Workers documents in flight and calls
// emit for each document in input order. emit runs on the calling
// goroutine. The first error stops the extraction.
func (e *Extractor) Extract(ctx context.Context, paths []string, emit func(Document) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]chan Document, len(paths))
	for i := range slots {
		slots[i] = make(chan Document, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	waited := make(chan error, 1)
	go func() {
		for i, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				doc, err := e.ReadDocument(path)
				if err != nil {
					return err
				}
				doc.Index = i
				slots[i] <- doc
				return nil
			})
		}
		waited <- g.Wait()
	}()

	finish := func(err error) error {
		cancel()
		if werr := <-waited; err == nil {
			err = werr
		}
		return err
	}

	done := waited
	for i := range paths {
		var doc Document
		select {
		case doc = <-slots[i]:
		case err := <-done:
			if err != nil {
				return err
			}
			// Every worker finished, so the slot is filled.
			done = nil
			doc = <-slots[i]
		case <-ctx.Done():
			return finish(ctx.Err())
		}
		if err := emit(doc); err != nil {
			if done == nil {
				return err
			}
			return finish(err)
		}
	}
	if done == nil {
		return nil
	}
	return finish(nil)
}
