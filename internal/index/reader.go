// Package index reads a built word index.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/wordex/internal/gridio"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// DefaultCacheSize is the number of decoded posting lists kept when no
// size is configured.
const DefaultCacheSize = 256

var (
	// ErrNotFound means the index files do not exist.
	ErrNotFound = errors.New("index not found")

	// ErrCorrupt means the index files could not be decoded.
	ErrCorrupt = errors.New("corrupt index")
)

// Location places a global page in its document.
type Location struct {
	// Document is numbered from 1.
	Document  int
	Path      string
	LocalPage int32
}

// DocumentRange is the span of global pages one document occupies.
type DocumentRange struct {
	Path        string
	First, Last int32
	Pages       int32
}

// Reader gives read-only access to an index. Posting lists are decoded on
// demand and kept in an LRU cache. A Reader is safe for concurrent use.
type Reader struct {
	files      indexer.Files
	pageCounts []int32
	paths      []string
	words      []string

	coni       []byte
	offsets    []int
	shortPages bool

	cache *lru.Cache[int, sortedset.Sealed]
}

// Open loads the index files. cacheSize <= 0 disables the posting cache.
func Open(files indexer.Files, cacheSize int) (*Reader, error) {
	r := &Reader{files: files}
	if err := r.loadConw(); err != nil {
		return nil, err
	}
	if err := r.loadConi(); err != nil {
		return nil, err
	}
	if cacheSize > 0 {
		cache, err := lru.New[int, sortedset.Sealed](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create posting cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

func readIndexFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

func (r *Reader) loadConw() error {
	data, err := readIndexFile(r.files.Conw())
	if err != nil {
		return err
	}
	gr := gridio.NewReader(bytes.NewReader(data))
	if r.pageCounts, err = gr.ReadIntArray(); err != nil {
		return corrupt(indexer.ExtConw, err)
	}
	if r.paths, err = gr.ReadStringArray(); err != nil {
		return corrupt(indexer.ExtConw, err)
	}
	if r.words, err = gr.ReadStringArray(); err != nil {
		return corrupt(indexer.ExtConw, err)
	}
	if len(r.pageCounts) != len(r.paths) {
		return corrupt(indexer.ExtConw, fmt.Errorf("%d page counts for %d paths", len(r.pageCounts), len(r.paths)))
	}
	if !slices.IsSorted(r.words) {
		return corrupt(indexer.ExtConw, errors.New("dictionary is not sorted"))
	}
	return nil
}

// loadConi keeps the raw file and records where each posting array starts.
func (r *Reader) loadConi() error {
	data, err := readIndexFile(r.files.Coni())
	if err != nil {
		return err
	}
	gr := gridio.NewReader(bytes.NewReader(data))
	n, err := gr.ReadInt()
	if err != nil {
		return corrupt(indexer.ExtConi, fmt.Errorf("header: %w", err))
	}
	if int(n) != len(r.words) {
		return corrupt(indexer.ExtConi, fmt.Errorf("%d posting lists for %d words", n, len(r.words)))
	}
	if r.shortPages, err = gr.ReadBool(); err != nil {
		return corrupt(indexer.ExtConi, fmt.Errorf("width flag: %w", err))
	}

	width := gridio.IntSize
	if r.shortPages {
		width = gridio.ShortSize
	}
	r.offsets = make([]int, n)
	for i := range r.offsets {
		r.offsets[i] = int(gr.Offset())
		if _, err := gr.SkipArray(width); err != nil {
			return corrupt(indexer.ExtConi, fmt.Errorf("posting list %d: %w", i, err))
		}
	}
	if !gr.AtEOF() {
		return corrupt(indexer.ExtConi, fmt.Errorf("%d trailing bytes", int64(len(data))-gr.Offset()))
	}
	r.coni = data
	return nil
}

func corrupt(ext string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCorrupt, ext, err)
}

// Name returns the index name.
func (r *Reader) Name() string { return r.files.Name }

// Files returns the file set the reader was opened on.
func (r *Reader) Files() indexer.Files { return r.files }

// Words returns the sorted dictionary. The slice must not be modified.
func (r *Reader) Words() []string { return r.words }

// Paths returns the document paths. The slice must not be modified.
func (r *Reader) Paths() []string { return r.paths }

// PageCounts returns the page count per document. The slice must not be
// modified.
func (r *Reader) PageCounts() []int32 { return r.pageCounts }

// TotalPages returns the sum of the document page counts.
func (r *Reader) TotalPages() int64 {
	return indexer.GridHeader{PageCounts: r.pageCounts}.TotalPages()
}

// ShortPages reports whether page numbers are stored as int16.
func (r *Reader) ShortPages() bool { return r.shortPages }

// IndexOf returns the dictionary position of word.
func (r *Reader) IndexOf(word string) (int, bool) {
	return slices.BinarySearch(r.words, word)
}

// Lookup returns the pages of word. ok is false when the word is not in the
// dictionary.
func (r *Reader) Lookup(word string) (pages sortedset.Sealed, ok bool, err error) {
	i, found := r.IndexOf(word)
	if !found {
		return sortedset.Empty(), false, nil
	}
	pages, err = r.Postings(i)
	return pages, err == nil, err
}

// Postings decodes the pages of dictionary word i.
func (r *Reader) Postings(i int) (sortedset.Sealed, error) {
	if i < 0 || i >= len(r.offsets) {
		return sortedset.Sealed{}, fmt.Errorf("word index %d out of range [0,%d)", i, len(r.offsets))
	}
	if r.cache != nil {
		if s, ok := r.cache.Get(i); ok {
			return s, nil
		}
	}

	gr := gridio.NewReader(bytes.NewReader(r.coni[r.offsets[i]:]))
	var values []int32
	var err error
	if r.shortPages {
		values, err = gr.ReadShortArray()
	} else {
		values, err = gr.ReadIntArray()
	}
	if err != nil {
		return sortedset.Sealed{}, corrupt(indexer.ExtConi, err)
	}
	set, err := sortedset.FromSorted(values)
	if err != nil {
		return sortedset.Sealed{}, corrupt(indexer.ExtConi, fmt.Errorf("postings of %q: %w", r.words[i], err))
	}
	sealed := set.Seal()

	if r.cache != nil {
		r.cache.Add(i, sealed)
	}
	return sealed, nil
}

// PrefixRange returns the dictionary positions [lo, hi) of the words that
// start with prefix.
func (r *Reader) PrefixRange(prefix string) (lo, hi int) {
	lo = sort.SearchStrings(r.words, prefix)
	hi = lo + sort.Search(len(r.words)-lo, func(j int) bool {
		return !strings.HasPrefix(r.words[lo+j], prefix)
	})
	return lo, hi
}

// WithPrefix returns the dictionary words that start with prefix.
func (r *Reader) WithPrefix(prefix string) []string {
	lo, hi := r.PrefixRange(prefix)
	return slices.Clone(r.words[lo:hi])
}

// PrefixPostings returns the postings of every word starting with prefix.
func (r *Reader) PrefixPostings(prefix string) ([]sortedset.Sealed, error) {
	lo, hi := r.PrefixRange(prefix)
	sets := make([]sortedset.Sealed, 0, hi-lo)
	for i := lo; i < hi; i++ {
		s, err := r.Postings(i)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}

// Documents returns the global page range of every document. Pages are
// numbered consecutively from 1 across documents.
func (r *Reader) Documents() []DocumentRange {
	out := make([]DocumentRange, len(r.paths))
	next := int32(1)
	for i, path := range r.paths {
		n := r.pageCounts[i]
		out[i] = DocumentRange{Path: path, First: next, Last: next + n - 1, Pages: n}
		next += n
	}
	return out
}

// Locate maps a global page number to its document and local page.
func (r *Reader) Locate(page int32) (Location, bool) {
	if page < 1 {
		return Location{}, false
	}
	for i, d := range r.Documents() {
		if page <= d.Last && d.Pages > 0 {
			return Location{Document: i + 1, Path: d.Path, LocalPage: page - d.First + 1}, true
		}
	}
	return Location{}, false
}
