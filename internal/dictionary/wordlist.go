// Package dictionary collects the words an index is built over.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

// TruncationMark is appended to words cut at the maximum length.
const TruncationMark = "_"

// WordList accumulates unique normalised words. Lengths are measured in
// runes. A WordList is not safe for concurrent use.
type WordList struct {
	minLength int
	maxLength int
	skip      map[string]struct{}
	words     map[string]struct{}
}

// New creates a word list. Skip words shorter than minLength can never be
// indexed and are not kept.
func New(skipWords []string, minLength, maxLength int) (*WordList, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("minimum word length must be at least 1, got %d", minLength)
	}
	if maxLength < minLength {
		return nil, fmt.Errorf("maximum word length %d is below minimum %d", maxLength, minLength)
	}
	w := &WordList{
		minLength: minLength,
		maxLength: maxLength,
		skip:      make(map[string]struct{}, len(skipWords)),
		words:     make(map[string]struct{}),
	}
	for _, s := range skipWords {
		s = strings.ToLower(strings.TrimSpace(s))
		if utf8.RuneCountInString(s) >= minLength {
			w.skip[s] = struct{}{}
		}
	}
	return w, nil
}

// Normalize returns the dictionary form of word, or false when the word
// would not be indexed.
func (w *WordList) Normalize(word string) (string, bool) {
	word = strings.ToLower(word)
	n := utf8.RuneCountInString(word)
	if n < w.minLength {
		return "", false
	}
	if _, skipped := w.skip[word]; skipped {
		return "", false
	}
	if n > w.maxLength {
		word = truncate(word, w.maxLength) + TruncationMark
	}
	return word, true
}

// Apply adds word and reports whether it was accepted.
func (w *WordList) Apply(word string) bool {
	norm, ok := w.Normalize(word)
	if ok {
		w.words[norm] = struct{}{}
	}
	return ok
}

// ApplyAll adds every word of a page.
func (w *WordList) ApplyAll(words []string) {
	for _, word := range words {
		w.Apply(word)
	}
}

// Has reports whether word, once normalised, has been added.
func (w *WordList) Has(word string) bool {
	norm, ok := w.Normalize(word)
	if !ok {
		return false
	}
	_, found := w.words[norm]
	return found
}

// Len returns the number of unique words.
func (w *WordList) Len() int { return len(w.words) }

// Words returns the dictionary sorted by byte order.
func (w *WordList) Words() []string {
	out := make([]string, 0, len(w.words))
	for word := range w.words {
		out = append(out, word)
	}
	slices.Sort(out)
	return out
}

// SkipWords returns the effective skip list, sorted.
func (w *WordList) SkipWords() []string {
	out := make([]string, 0, len(w.skip))
	for s := range w.skip {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func truncate(s string, runes int) string {
	i := 0
	for pos := range s {
		if i == runes {
			return s[:pos]
		}
		i++
	}
	return s
}

// ReadSkipWords reads one word per line. Blank lines and lines starting
// with '#' are ignored.
func ReadSkipWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read skip words: %w", err)
	}
	return words, nil
}

// LoadSkipFile reads a skip list from path.
func LoadSkipFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open skip list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadSkipWords(f)
}
