package wordex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Aman-CERP/wordex/internal/finder"
	"github.com/Aman-CERP/wordex/internal/history"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/query"
	"github.com/Aman-CERP/wordex/internal/script"
)

var (
	// ErrNotBuilt is returned by Open when the index files are missing.
	ErrNotBuilt = index.ErrNotFound

	// ErrCorrupt is returned by Open when the index files cannot be decoded.
	ErrCorrupt = index.ErrCorrupt

	// ErrUnresolved wraps search errors for words that are neither indexed
	// nor defined.
	ErrUnresolved = query.ErrUnresolved

	// ErrNotExpression is returned by Search for statements that produce no
	// pages, such as assignments.
	ErrNotExpression = finder.ErrNotExpression

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("index is closed")
)

// Searcher evaluates query expressions.
//
// Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, expr string) (*Result, error)
}

// Result is the outcome of one search.
type Result struct {
	// Pages are the matching global page numbers in ascending order.
	Pages []int32

	// Documents groups Pages by document, numbered from the first page of
	// each document.
	Documents []DocumentMatch
}

// Len is the number of matching pages.
func (r *Result) Len() int { return len(r.Pages) }

// DocumentMatch is the matches inside one document.
type DocumentMatch struct {
	// Document is numbered from 1 in build order.
	Document int
	Path     string
	Pages    []int32
}

// Document describes one indexed document.
type Document struct {
	Path string

	// First and Last are the global pages of the document. Both are zero
	// for a document without pages.
	First, Last int32
	Pages       int32
}

type options struct {
	cacheSize int
	history   bool
	logger    *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithCacheSize sets how many decoded posting lists are kept in memory.
// Zero or less disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithHistory records every search in the index's history database.
func WithHistory(enabled bool) Option {
	return func(o *options) {
		o.history = enabled
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Index is an open word index.
type Index struct {
	reader  *index.Reader
	session *finder.Session
	store   *history.Store
	closed  atomic.Bool
}

var _ Searcher = (*Index)(nil)

// Open opens the index at base, a path without extension such as
// "out/corpus". A trailing index extension is accepted and ignored.
func Open(base string, opts ...Option) (*Index, error) {
	o := options{cacheSize: 256, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	files := filesFor(base)
	reader, err := index.Open(files, o.cacheSize)
	if err != nil {
		return nil, err
	}

	sessionOpts := finder.Options{Logger: o.logger}
	idx := &Index{reader: reader}
	if o.history {
		store, err := history.Open(files.History())
		if err != nil {
			return nil, err
		}
		idx.store = store
		sessionOpts.History = store
	}
	idx.session = finder.New(reader, io.Discard, sessionOpts)
	return idx, nil
}

// filesFor splits base into the directory and index name.
func filesFor(base string) indexer.Files {
	dir, name := filepath.Split(filepath.Clean(base))
	if ext := filepath.Ext(name); isIndexExt(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	if dir == "" {
		dir = "."
	}
	return indexer.FilesFor(filepath.Clean(dir), name)
}

func isIndexExt(ext string) bool {
	switch ext {
	case indexer.ExtConw, indexer.ExtConi, indexer.ExtGrid, indexer.ExtCong, indexer.ExtWords:
		return true
	}
	return false
}

// Name is the index name without directory or extension.
func (x *Index) Name() string { return x.reader.Name() }

// TotalPages is the number of pages in the index.
func (x *Index) TotalPages() int64 { return x.reader.TotalPages() }

// Search evaluates expr and returns the matching pages.
//
// Variables defined with Define are visible. Words must be given in their
// indexed form, as listed by Words.
func (x *Index) Search(ctx context.Context, expr string) (*Result, error) {
	if err := x.check(ctx); err != nil {
		return nil, err
	}
	pages, err := x.session.Evaluate(expr)
	if err != nil {
		return nil, err
	}

	res := &Result{Pages: pages.Values()}
	for _, h := range finder.GroupByDocument(x.reader.Documents(), pages) {
		res.Documents = append(res.Documents, DocumentMatch{
			Document: h.Document,
			Path:     h.Path,
			Pages:    h.Pages,
		})
	}
	return res, nil
}

// Define binds name to the pages of expr for later searches. A name can be
// bound once and must not be an indexed word.
func (x *Index) Define(ctx context.Context, name, expr string) error {
	if err := x.check(ctx); err != nil {
		return err
	}
	return x.session.Execute(script.DefaultFormat.LiteralIfNeeded(name) + " = " + expr)
}

// Words lists the indexed words starting with prefix, in order. An empty
// prefix lists every word.
func (x *Index) Words(prefix string) []string {
	return x.reader.WithPrefix(prefix)
}

// Documents lists the indexed documents in build order.
func (x *Index) Documents() []Document {
	ranges := x.reader.Documents()
	docs := make([]Document, len(ranges))
	for i, d := range ranges {
		docs[i] = Document{Path: d.Path, First: d.First, Last: d.Last, Pages: d.Pages}
	}
	return docs
}

// Close releases the history database. Searches after Close fail with
// ErrClosed.
func (x *Index) Close() error {
	if x.closed.Swap(true) || x.store == nil {
		return nil
	}
	return x.store.Close()
}

func (x *Index) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if x.closed.Load() {
		return ErrClosed
	}
	return nil
}
