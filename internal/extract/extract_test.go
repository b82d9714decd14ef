package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/dictionary"
	"github.com/Aman-CERP/wordex/internal/indexer"
)

func writeDocs(t *testing.T, dir string, docs map[string]string) {
	t.Helper()
	for name, text := range docs {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	}
}

func TestExtractor_SplitPages(t *testing.T) {
	e := New(Config{})

	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"one page", 1},
		{"one\ftwo", 2},
		{"one\ftwo\f", 2},
		{"one\ftwo\f\n", 2},
		{"one\f\fthree", 3},
	}
	for _, tt := range tests {
		assert.Len(t, e.SplitPages([]byte(tt.text)), tt.want, "%q", tt.text)
	}

	custom := New(Config{PageSeparator: "----"})
	assert.Len(t, custom.SplitPages([]byte("a----b----c")), 3)
}

func TestExtractor_ReadDocument(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{"a.txt": "Cats and dogs\fDogs only"})

	doc, err := New(Config{}).ReadDocument(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cats", "and", "dogs"}, {"dogs", "only"}}, doc.Pages)

	_, err = New(Config{}).ReadDocument(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestExtractor_ExtractKeepsInputOrder(t *testing.T) {
	// Given: many documents and several workers
	dir := t.TempDir()
	var paths []string
	for i := range 40 {
		name := fmt.Sprintf("doc%02d.txt", i)
		writeDocs(t, dir, map[string]string{name: strings.Repeat(fmt.Sprintf("word%c ", 'a'+i%26), i+1)})
		paths = append(paths, filepath.Join(dir, name))
	}

	// When: extracting
	var got []int
	err := New(Config{Workers: 4}).Extract(context.Background(), paths, func(doc Document) error {
		got = append(got, doc.Index)
		assert.Equal(t, paths[doc.Index], doc.Path)
		return nil
	})

	// Then: documents arrive in input order
	require.NoError(t, err)
	want := make([]int, 40)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestExtractor_ExtractErrors(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	good := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}

	t.Run("read failure", func(t *testing.T) {
		paths := append(good[:1:1], filepath.Join(dir, "missing.txt"))
		err := New(Config{Workers: 2}).Extract(context.Background(), paths, func(Document) error { return nil })
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("emit failure", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := New(Config{Workers: 1}).Extract(context.Background(), good, func(Document) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := New(Config{}).Extract(ctx, good, func(Document) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCollect(t *testing.T) {
	// Given: a tree with text files, other files, a hidden directory and
	// an ignore file
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{
		"b.txt":         "b",
		"a.txt":         "a",
		"notes.md":      "md",
		"sub/c.TXT":     "c",
		"drafts/d.txt":  "d",
		".hidden/e.txt": "e",
		IgnoreFile:      "drafts/\n",
		"sub/skip.txt":  "s",
	})
	single := filepath.Join(dir, "notes.md")

	// When: collecting the directory, a single file and an extra pattern
	got, err := Collect(context.Background(), []string{dir, single}, []string{".txt"}, NewIgnore("skip.txt"))
	require.NoError(t, err)

	// Then: matching files come sorted, followed by the explicit file
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.TXT"),
		single,
	}, got)

	_, err = Collect(context.Background(), []string{filepath.Join(dir, "nope")}, []string{".txt"}, nil)
	assert.Error(t, err)
}

func TestWriteGrid(t *testing.T) {
	// Given: two documents of two pages and one page
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{
		"one.txt": "Apple pear\fpear",
		"two.txt": "the apple",
	})
	paths := []string{filepath.Join(dir, "one.txt"), filepath.Join(dir, "two.txt")}
	files := indexer.FilesFor(filepath.Join(dir, "out"), "corpus")
	wl, err := dictionary.New([]string{"the"}, 3, 25)
	require.NoError(t, err)

	// When: writing the grid
	summary, err := New(Config{Workers: 2}).WriteGrid(context.Background(), files, paths, GridOptions{Words: wl})
	require.NoError(t, err)

	// Then: the grid reads back page by page and the words were collected
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, int64(3), summary.Pages)
	assert.Equal(t, int64(5), summary.Words)
	assert.Equal(t, []string{"apple", "pear"}, wl.Words())

	src, err := indexer.OpenGrid(files.Grid())
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	assert.Equal(t, []int32{2, 1}, src.Header.PageCounts)
	assert.Equal(t, paths, src.Header.Paths)

	var pages []indexer.Page
	for {
		p, err := src.Next()
		if err != nil {
			break
		}
		pages = append(pages, p)
	}
	require.Len(t, pages, 3)
	assert.Equal(t, []string{"apple", "pear"}, pages[0].Words)
	assert.Equal(t, int32(2), pages[2].Document)
	assert.Equal(t, int32(3), pages[2].Number)

	_, err = os.Stat(files.Grid() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
