package indexer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/dictionary"
	"github.com/Aman-CERP/wordex/internal/gridio"
)

// readConi decodes a .coni file.
func readConi(t *testing.T, path string) (postings [][]int32, short bool) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	r := gridio.NewReader(bytes.NewReader(data))
	n, err := r.ReadInt()
	require.NoError(t, err)
	short, err = r.ReadBool()
	require.NoError(t, err)
	for range n {
		var pages []int32
		if short {
			pages, err = r.ReadShortArray()
		} else {
			pages, err = r.ReadIntArray()
		}
		require.NoError(t, err)
		postings = append(postings, pages)
	}
	return postings, short
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestBuild_ThreePages(t *testing.T) {
	// Given: pages {a,b}, {b}, {a} over the dictionary [a, b]
	files := FilesFor(t.TempDir(), "corpus")
	in := Input{
		PageCounts: []int32{3},
		Paths:      []string{"doc.txt"},
		Dictionary: []string{"a", "b"},
		Source:     Sequential([]string{"a", "b"}, []string{"b"}, []string{"a", "a"}),
	}

	// When: building the index
	res, err := New(files, Options{}).Build(context.Background(), in)
	require.NoError(t, err)

	// Then: a occurs on pages 1 and 3, b on pages 1 and 2
	postings, short := readConi(t, files.Coni())
	assert.True(t, short)
	assert.Equal(t, [][]int32{{1, 3}, {1, 2}}, postings)

	assert.Equal(t, 2, res.Words)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, int32(3), res.LastPage)
	assert.True(t, res.ShortWords)
	assert.True(t, res.ShortPages)

	assert.Equal(t, []string{"a", "b"}, readLines(t, files.Words()))
	assert.Equal(t, []string{
		"a" + strings.Repeat(" ", 26) + "1,3",
		"b" + strings.Repeat(" ", 26) + "1,2",
	}, readLines(t, files.Index()))

	_, err = os.Stat(files.Cong())
	assert.True(t, os.IsNotExist(err), ".cong is removed after the build")
	assert.True(t, files.Exists())
}

func TestBuild_ConwLayout(t *testing.T) {
	files := FilesFor(t.TempDir(), "corpus")
	in := Input{
		PageCounts: []int32{1, 2},
		Paths:      []string{"a.txt", "b.txt"},
		Dictionary: []string{"cat"},
		Source:     Sequential([]string{"cat"}),
	}
	_, err := New(files, Options{}).Build(context.Background(), in)
	require.NoError(t, err)

	data, err := os.ReadFile(files.Conw())
	require.NoError(t, err)
	r := gridio.NewReader(bytes.NewReader(data))

	counts, err := r.ReadIntArray()
	require.NoError(t, err)
	paths, err := r.ReadStringArray()
	require.NoError(t, err)
	words, err := r.ReadStringArray()
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2}, counts)
	assert.Equal(t, []string{"a.txt", "b.txt"}, paths)
	assert.Equal(t, []string{"cat"}, words)
}

func TestBuild_MergesRepeatedPageNumbers(t *testing.T) {
	files := FilesFor(t.TempDir(), "corpus")
	src := NewSliceSource([]Page{
		{Number: 1, Words: []string{"a"}},
		{Number: 1, Words: []string{"b", "a"}},
		{Number: 4, Words: []string{"a"}},
	})
	in := Input{PageCounts: []int32{4}, Paths: []string{"x"}, Dictionary: []string{"a", "b"}, Source: src}

	res, err := New(files, Options{}).Build(context.Background(), in)
	require.NoError(t, err)

	postings, _ := readConi(t, files.Coni())
	assert.Equal(t, [][]int32{{1, 4}, {1}}, postings)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, int32(4), res.LastPage)
}

func TestBuild_Normalize(t *testing.T) {
	// Given: a word list that lower-cases and skips "the"
	wl, err := dictionary.New([]string{"the"}, 3, 25)
	require.NoError(t, err)
	wl.ApplyAll([]string{"Quick", "fox"})

	files := FilesFor(t.TempDir(), "corpus")
	in := Input{
		PageCounts: []int32{2},
		Paths:      []string{"x"},
		Dictionary: wl.Words(),
		Normalize:  wl.Normalize,
		Source:     Sequential([]string{"The", "QUICK", "ox"}, []string{"fox", "the"}),
	}

	// When: building
	_, err = New(files, Options{}).Build(context.Background(), in)
	require.NoError(t, err)

	// Then: page words are matched in normalised form and dropped words
	// are ignored
	postings, _ := readConi(t, files.Coni())
	assert.Equal(t, [][]int32{{2}, {1}}, postings)
}

func TestBuild_Failures(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name: "word missing from dictionary",
			in: Input{
				PageCounts: []int32{1}, Paths: []string{"x"},
				Dictionary: []string{"a"},
				Source:     Sequential([]string{"a", "zebra"}),
			},
			wantErr: ErrMissingWord,
		},
		{
			name: "decreasing page numbers",
			in: Input{
				PageCounts: []int32{2}, Paths: []string{"x"},
				Dictionary: []string{"a"},
				Source: NewSliceSource([]Page{
					{Number: 2, Words: []string{"a"}},
					{Number: 1, Words: []string{"a"}},
				}),
			},
		},
		{
			name: "page number zero",
			in: Input{
				PageCounts: []int32{1}, Paths: []string{"x"},
				Dictionary: []string{"a"},
				Source:     NewSliceSource([]Page{{Number: 0}}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := FilesFor(t.TempDir(), "corpus")

			_, err := New(files, Options{}).Build(context.Background(), tt.in)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var orderErr *OrderError
				assert.ErrorAs(t, err, &orderErr)
			}
			for _, p := range files.Outputs() {
				_, statErr := os.Stat(p)
				assert.True(t, os.IsNotExist(statErr), "%s should be removed", filepath.Base(p))
			}
		})
	}
}

func TestBuild_InvalidInput(t *testing.T) {
	files := FilesFor(t.TempDir(), "corpus")
	b := New(files, Options{})

	_, err := b.Build(context.Background(), Input{
		PageCounts: []int32{1}, Paths: []string{"x"},
		Dictionary: []string{"b", "a"},
		Source:     Sequential(),
	})
	assert.ErrorContains(t, err, "not sorted")

	_, err = b.Build(context.Background(), Input{
		PageCounts: []int32{1, 2}, Paths: []string{"x"},
		Source: Sequential(),
	})
	assert.Error(t, err)

	_, err = b.Build(context.Background(), Input{PageCounts: []int32{1}, Paths: []string{"x"}})
	assert.ErrorContains(t, err, "no page source")
}

func TestBuild_Cancelled(t *testing.T) {
	files := FilesFor(t.TempDir(), "corpus")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(files, Options{}).Build(ctx, Input{
		PageCounts: []int32{1}, Paths: []string{"x"},
		Dictionary: []string{"a"},
		Source:     Sequential([]string{"a"}),
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, files.Exists())
}

func dictionaryOf(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%06d", i)
	}
	return words
}

func TestBuild_WordIndexWidth(t *testing.T) {
	tests := []struct {
		name      string
		words     int
		wantShort bool
	}{
		{"32767 words use 16-bit indices", MaxShort, true},
		{"32768 words use 32-bit indices", MaxShort + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a dictionary at the boundary and a page using its last word
			dict := dictionaryOf(tt.words)
			files := FilesFor(t.TempDir(), "corpus")
			in := Input{
				PageCounts: []int32{1}, Paths: []string{"x"},
				Dictionary: dict,
				Source:     Sequential([]string{dict[0], dict[len(dict)-1]}),
			}

			// When: building with intermediates kept
			res, err := New(files, Options{KeepIntermediate: true}).Build(context.Background(), in)
			require.NoError(t, err)

			// Then: the .cong width flag and the result agree
			cong, err := os.ReadFile(files.Cong())
			require.NoError(t, err)
			wantFlag := byte('f')
			if tt.wantShort {
				wantFlag = 't'
			}
			assert.Equal(t, wantFlag, cong[0])
			assert.Equal(t, tt.wantShort, res.ShortWords)

			postings, _ := readConi(t, files.Coni())
			assert.Equal(t, []int32{1}, postings[0])
			assert.Equal(t, []int32{1}, postings[len(postings)-1])
		})
	}
}

func TestBuild_PageNumberWidth(t *testing.T) {
	tests := []struct {
		name      string
		pages     int32
		last      int32
		wantShort bool
	}{
		{"32767 pages use 16-bit pages", MaxShort, 1, true},
		{"32768 pages use 32-bit pages", MaxShort + 1, 1, false},
		{"a page number above 32767 forces 32-bit", 1, MaxShort + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := FilesFor(t.TempDir(), "corpus")
			in := Input{
				PageCounts: []int32{tt.pages}, Paths: []string{"x"},
				Dictionary: []string{"a"},
				Source:     NewSliceSource([]Page{{Number: tt.last, Words: []string{"a"}}}),
			}

			res, err := New(files, Options{}).Build(context.Background(), in)
			require.NoError(t, err)

			postings, short := readConi(t, files.Coni())
			assert.Equal(t, tt.wantShort, short)
			assert.Equal(t, tt.wantShort, res.ShortPages)
			assert.Equal(t, [][]int32{{tt.last}}, postings)
		})
	}
}

func TestBuildFromGrid(t *testing.T) {
	// Given: a grid of two documents written by GridWriter
	files := FilesFor(t.TempDir(), "corpus")
	f, err := os.Create(files.Grid())
	require.NoError(t, err)
	gw, err := NewGridWriter(f, GridHeader{PageCounts: []int32{2, 1}, Paths: []string{"a.txt", "b.txt"}})
	require.NoError(t, err)
	require.NoError(t, gw.WritePage(1, 1, []string{"apple", "the", "pear"}))
	require.NoError(t, gw.WritePage(1, 2, []string{"pear"}))
	require.NoError(t, gw.WritePage(2, 1, []string{"Apple"}))
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	wl, err := dictionary.New([]string{"the"}, 3, 25)
	require.NoError(t, err)

	// When: building with an empty word list
	res, err := New(files, Options{}).BuildFromGrid(context.Background(), wl)
	require.NoError(t, err)

	// Then: the dictionary is scanned from the grid and pages run 1..3
	assert.Equal(t, []string{"apple", "pear"}, wl.Words())
	assert.Equal(t, 2, res.Words)
	postings, _ := readConi(t, files.Coni())
	assert.Equal(t, [][]int32{{1, 3}, {1, 2}}, postings)

	_, err = os.Stat(files.Grid())
	assert.True(t, os.IsNotExist(err), "grid is removed after a successful build")
}

func TestBuildFromGrid_KeepIntermediate(t *testing.T) {
	files := FilesFor(t.TempDir(), "corpus")
	f, err := os.Create(files.Grid())
	require.NoError(t, err)
	gw, err := NewGridWriter(f, GridHeader{PageCounts: []int32{1}, Paths: []string{"a.txt"}})
	require.NoError(t, err)
	require.NoError(t, gw.WritePage(1, 1, []string{"word"}))
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	wl, err := dictionary.New(nil, 3, 25)
	require.NoError(t, err)
	_, err = New(files, Options{KeepIntermediate: true}).BuildFromGrid(context.Background(), wl)
	require.NoError(t, err)

	for _, p := range []string{files.Grid(), files.Cong()} {
		_, err := os.Stat(p)
		assert.NoError(t, err, "%s is kept", filepath.Base(p))
	}
}

func TestLegibleLine(t *testing.T) {
	tests := []struct {
		name  string
		line  int
		word  string
		pages []int32
		want  string
	}{
		{"short word", 0, "cat", []int32{1, 5}, "cat" + strings.Repeat(" ", 24) + "1,5"},
		{"every fourth line uses underscores", 3, "cat", []int32{2}, "cat " + strings.Repeat("_", 22) + " 2"},
		{"word of 25 characters", 0, strings.Repeat("x", 25), []int32{7}, strings.Repeat("x", 25) + "  7"},
		{"truncated word of 26 characters", 3, strings.Repeat("x", 25) + "_", []int32{7}, strings.Repeat("x", 25) + "_ 7"},
		{"longer word", 0, strings.Repeat("y", 30), []int32{1}, strings.Repeat("y", 30) + " 1"},
		{"no pages", 0, "cat", nil, "cat" + strings.Repeat(" ", 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := legibleLine(tt.line, tt.word, tt.pages)
			assert.Equal(t, tt.want, got)
			if len(tt.pages) > 0 && len(tt.word) <= 26 {
				assert.Equal(t, legibleColumn, strings.IndexAny(got, "0123456789"))
			}
		})
	}
}
