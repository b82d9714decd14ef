package extract

import (
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Analyzer turns page text into lower-cased words. Text is segmented on
// Unicode word boundaries, then every segment is split into runs of
// letters, or of letters and digits when numbers are kept.
type Analyzer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(keepNumbers bool) *Analyzer {
	return &Analyzer{
		tokenizer: bleveunicode.NewUnicodeTokenizer(),
		filters: []analysis.TokenFilter{
			lowercase.NewLowerCaseFilter(),
			&wordFilter{keepNumbers: keepNumbers},
		},
	}
}

// Words returns the words of text in order of appearance.
func (a *Analyzer) Words(text []byte) []string {
	tokens := a.tokenizer.Tokenize(text)
	for _, f := range a.filters {
		tokens = f.Filter(tokens)
	}
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = string(tok.Term)
	}
	return words
}

// wordFilter splits terms at characters that cannot be part of a word,
// such as the apostrophe in "don't" or the point in "3.5".
type wordFilter struct {
	keepNumbers bool
}

func (f *wordFilter) keep(r rune) bool {
	return unicode.IsLetter(r) || (f.keepNumbers && unicode.IsDigit(r))
}

// Filter implements analysis.TokenFilter.
func (f *wordFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := make(analysis.TokenStream, 0, len(input))
	for _, tok := range input {
		term := tok.Term
		start := -1
		for i := 0; i <= len(term); {
			r, size := utf8.RuneError, 1
			if i < len(term) {
				r, size = utf8.DecodeRune(term[i:])
			}
			if i < len(term) && f.keep(r) {
				if start < 0 {
					start = i
				}
			} else if start >= 0 {
				out = append(out, &analysis.Token{
					Term:     term[start:i],
					Start:    tok.Start + start,
					End:      tok.Start + i,
					Position: len(out) + 1,
					Type:     analysis.AlphaNumeric,
				})
				start = -1
			}
			i += size
		}
	}
	return out
}
