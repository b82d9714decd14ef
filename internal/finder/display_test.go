package finder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

func TestFormatPages(t *testing.T) {
	ten := sortedset.Wrap([]int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	tests := []struct {
		name  string
		pages sortedset.Sealed
		limit int
		want  string
	}{
		{"none", sortedset.Empty(), 10, "No pages match this criteria."},
		{"one", sortedset.Wrap([]int32{42}), 10, "Exactly one match, at page 42."},
		{"two", sortedset.Wrap([]int32{4, 9}), 10, "There are 2 matching pages: 4, 9."},
		{"at the limit", ten, 10, "There are 10 matching pages: 1, 2, 3, 4, 5, 6, 7, 8, 9, 10."},
		{"over the limit", ten, 4, "There are 10 matching pages: 1, 2 . . . 9, 10."},
		{"odd limit", ten, 5, "There are 10 matching pages: 1, 2 . . . 9, 10."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPages(tt.pages, tt.limit))
		})
	}
}

func TestGroupByDocument(t *testing.T) {
	docs := []index.DocumentRange{
		{Path: "a.txt", First: 1, Last: 3, Pages: 3},
		{Path: "empty.txt", First: 4, Last: 3, Pages: 0},
		{Path: "b.txt", First: 4, Last: 5, Pages: 2},
		{Path: "c.txt", First: 6, Last: 9, Pages: 4},
	}

	tests := []struct {
		name  string
		pages []int32
		want  []DocumentHits
	}{
		{"none", nil, nil},
		{
			name:  "spread",
			pages: []int32{2, 3, 6, 9},
			want: []DocumentHits{
				{Document: 1, Path: "a.txt", Pages: []int32{2, 3}},
				{Document: 4, Path: "c.txt", Pages: []int32{1, 4}},
			},
		},
		{
			name:  "document boundary",
			pages: []int32{3, 4},
			want: []DocumentHits{
				{Document: 1, Path: "a.txt", Pages: []int32{3}},
				{Document: 3, Path: "b.txt", Pages: []int32{1}},
			},
		},
		{
			name:  "past the last document",
			pages: []int32{9, 12},
			want: []DocumentHits{
				{Document: 4, Path: "c.txt", Pages: []int32{4}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupByDocument(docs, sortedset.Wrap(tt.pages))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDocuments(t *testing.T) {
	hits := []DocumentHits{
		{Document: 1, Path: "a.txt", Pages: []int32{2, 3}},
		{Document: 4, Path: "c.txt", Pages: []int32{1}},
	}

	assert.Equal(t, "  1. a.txt: 2, 3\n  4. c.txt: 1\n", FormatDocuments(hits))
}
