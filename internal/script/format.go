package script

import (
	"fmt"
	"strings"
	"unicode"
)

// Format defines the character classes the tokenizer works with.
type Format struct {
	// WordChars are accepted inside words in addition to letters and digits.
	WordChars string

	// IllegalChars may not appear outside string literals.
	IllegalChars string

	// IllegalLiteralChars may not appear inside string literals. Quoting
	// writes them as \uXXXX escapes.
	IllegalLiteralChars string

	// Comment starts a comment that runs to the end of the line. Empty
	// disables comments.
	Comment string
}

// DefaultFormat is the format used for query scripts.
var DefaultFormat = Format{
	WordChars: "_$'",
	Comment:   "//",
}

// Validate checks that the classes do not overlap in ways the tokenizer
// cannot resolve.
func (f Format) Validate() error {
	for _, r := range f.WordChars {
		if unicode.IsSpace(r) {
			return fmt.Errorf("word characters cannot include whitespace (%q)", r)
		}
	}
	for _, r := range f.Comment {
		if f.IsEmpty(r) || f.IsWord(r) {
			return fmt.Errorf("comment marker %q cannot contain word or space characters", f.Comment)
		}
	}
	return nil
}

// IsEmpty reports whether r separates tokens without producing one.
func (f Format) IsEmpty(r rune) bool { return unicode.IsSpace(r) }

// IsWord reports whether r belongs inside a word.
func (f Format) IsWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(f.WordChars, r)
}

// IsIllegal reports whether r is rejected outside literals.
func (f Format) IsIllegal(r rune) bool { return strings.ContainsRune(f.IllegalChars, r) }

// IsIllegalInLiteral reports whether r is rejected inside literals.
func (f Format) IsIllegalInLiteral(r rune) bool {
	return strings.ContainsRune(f.IllegalLiteralChars, r)
}

// commentAt reports whether the comment marker starts at byte offset i.
func (f Format) commentAt(line string, i int) bool {
	return f.Comment != "" && strings.HasPrefix(line[i:], f.Comment)
}

// NeedsLiteral reports whether word must be quoted to survive tokenizing.
func (f Format) NeedsLiteral(word string) bool {
	if word == "" {
		return true
	}
	for _, r := range word {
		if f.IsIllegal(r) || f.IsEmpty(r) || !f.IsWord(r) {
			return true
		}
	}
	return false
}

// Quote returns word as a string literal with escapes applied.
func (f Format) Quote(word string) string {
	var b strings.Builder
	b.Grow(len(word) + 2)
	b.WriteByte('"')
	for _, r := range word {
		if f.IsIllegalInLiteral(r) {
			fmt.Fprintf(&b, "\\u%04x", r)
			continue
		}
		switch r {
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// LiteralIfNeeded returns word unchanged when it can be written bare, and
// quoted otherwise.
func (f Format) LiteralIfNeeded(word string) string {
	if f.NeedsLiteral(word) {
		return f.Quote(word)
	}
	return word
}
