package wordex

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Aman-CERP/wordex/internal/config"
	"github.com/Aman-CERP/wordex/internal/dictionary"
	"github.com/Aman-CERP/wordex/internal/extract"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/lock"
)

// ErrNoDocuments is returned by Build when the sources hold no document
// with an accepted extension.
var ErrNoDocuments = errors.New("no documents to index")

// BuildStats summarises a finished build.
type BuildStats struct {
	Documents int
	Pages     int64
	Words     int

	// ShortPages reports that page numbers were stored in 16 bits.
	ShortPages bool
	Duration   time.Duration
}

type buildOptions struct {
	cfg    config.IndexConfig
	ext    config.ExtractConfig
	wait   bool
	logger *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithExtensions sets the file extensions collected from directories.
func WithExtensions(exts ...string) BuildOption {
	return func(o *buildOptions) {
		o.ext.Extensions = exts
	}
}

// WithExclude adds ignore patterns in .gitignore syntax.
func WithExclude(patterns ...string) BuildOption {
	return func(o *buildOptions) {
		o.ext.Exclude = append(o.ext.Exclude, patterns...)
	}
}

// WithPageSeparator sets the text that ends a page.
func WithPageSeparator(sep string) BuildOption {
	return func(o *buildOptions) {
		o.ext.PageSeparator = sep
	}
}

// WithSkipWords replaces the built-in list of words never indexed.
func WithSkipWords(words ...string) BuildOption {
	return func(o *buildOptions) {
		o.cfg.SkipWords = words
	}
}

// WithMinWordLength drops words with fewer runes.
func WithMinWordLength(n int) BuildOption {
	return func(o *buildOptions) {
		o.cfg.MinWordLength = n
	}
}

// WithMaxWordLength truncates longer words.
func WithMaxWordLength(n int) BuildOption {
	return func(o *buildOptions) {
		o.cfg.MaxWordLength = n
	}
}

// WithKeepIntermediate keeps the .grid and .cong files.
func WithKeepIntermediate(keep bool) BuildOption {
	return func(o *buildOptions) {
		o.cfg.KeepIntermediate = keep
	}
}

// WithWait makes Build wait for another build of the same index to
// finish instead of failing.
func WithWait(wait bool) BuildOption {
	return func(o *buildOptions) {
		o.wait = wait
	}
}

// WithBuildLogger sets the logger. The default is slog.Default().
func WithBuildLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = l
	}
}

// Build indexes the documents under sources as the index at base. Sources
// may be files or directories. An existing index is replaced once the new
// one is complete.
func Build(ctx context.Context, base string, sources []string, opts ...BuildOption) (*BuildStats, error) {
	defaults := config.NewConfig()
	o := buildOptions{cfg: defaults.Index, ext: defaults.Extract, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	words, err := dictionary.New(o.cfg.SkipWords, o.cfg.MinWordLength, o.cfg.MaxWordLength)
	if err != nil {
		return nil, err
	}

	files := filesFor(base)
	lk := lock.ForIndex(files.Dir, files.Name)
	if err := lk.Acquire(ctx, o.wait); err != nil {
		return nil, err
	}
	defer func() { _ = lk.Unlock() }()

	paths, err := extract.Collect(ctx, sources, o.ext.Extensions, extract.NewIgnore(o.ext.Exclude...))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}

	ex := extract.New(extract.Config{
		PageSeparator: o.ext.PageSeparator,
		Workers:       o.ext.Workers,
		KeepNumbers:   o.ext.KeepNumbers,
	})
	summary, err := ex.WriteGrid(ctx, files, paths, extract.GridOptions{Words: words})
	if err != nil {
		return nil, err
	}

	res, err := indexer.New(files, indexer.Options{
		KeepIntermediate: o.cfg.KeepIntermediate,
		Logger:           o.logger,
	}).BuildFromGrid(ctx, words)
	if err != nil {
		return nil, err
	}

	return &BuildStats{
		Documents:  summary.Documents,
		Pages:      summary.Pages,
		Words:      res.Words,
		ShortPages: res.ShortPages,
		Duration:   summary.Duration + res.Duration,
	}, nil
}
