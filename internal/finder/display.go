package finder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// FormatPages describes a result in one sentence. Results with more than
// limit pages show the first and last limit/2 pages around " . . . ".
func FormatPages(pages sortedset.Sealed, limit int) string {
	switch pages.Len() {
	case 0:
		return "No pages match this criteria."
	case 1:
		return fmt.Sprintf("Exactly one match, at page %d.", pages.At(0))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "There are %d matching pages: ", pages.Len())
	values := pages.Values()
	if len(values) <= limit {
		writePageList(&b, values)
	} else {
		half := limit / 2
		writePageList(&b, values[:half])
		b.WriteString(" . . . ")
		writePageList(&b, values[len(values)-half:])
	}
	b.WriteByte('.')
	return b.String()
}

func writePageList(b *strings.Builder, values []int32) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
}

// DocumentHits are the matches inside one document, as local page numbers.
type DocumentHits struct {
	Document int
	Path     string
	Pages    []int32
}

// GroupByDocument splits global pages by the document that holds them.
// Documents without matches are left out.
func GroupByDocument(docs []index.DocumentRange, pages sortedset.Sealed) []DocumentHits {
	var out []DocumentHits
	d := 0
	for p := range pages.All() {
		for d < len(docs) && (docs[d].Pages == 0 || p > docs[d].Last) {
			d++
		}
		if d == len(docs) {
			break
		}
		if p < docs[d].First {
			continue
		}
		if len(out) == 0 || out[len(out)-1].Document != d+1 {
			out = append(out, DocumentHits{Document: d + 1, Path: docs[d].Path})
		}
		last := &out[len(out)-1]
		last.Pages = append(last.Pages, p-docs[d].First+1)
	}
	return out
}

// FormatDocuments renders one line per document.
func FormatDocuments(hits []DocumentHits) string {
	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "  %d. %s: ", h.Document, h.Path)
		writePageList(&b, h.Pages)
		b.WriteByte('\n')
	}
	return b.String()
}
