package finder

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Aman-CERP/wordex/internal/query"
	"github.com/Aman-CERP/wordex/internal/script"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// Function names.
const (
	fnList        = "list"
	fnPrint       = "print"
	fnInfo        = "info"
	fnProjectInfo = "printProjectInfo"
	fnSave        = "save"
	fnStartsWith  = "startsWith"
	fnPrefix      = "prefix"
	fnQuit        = "quit"
)

// Functions lists the names a Session provides.
var Functions = []string{fnList, fnPrint, fnInfo, fnSave, fnStartsWith, fnPrefix, fnQuit}

// ErrNoValue is returned when a function that only has side effects is
// used inside an expression.
var ErrNoValue = errors.New("function does not return a value")

const maxSaveFiles = 999

// FunctionReturnsValue reports whether name is evaluated rather than run.
func (s *Session) FunctionReturnsValue(name string) bool {
	return name == fnPrefix
}

// CallFunction evaluates a value-returning function.
func (s *Session) CallFunction(inv query.Invocation) (sortedset.Sealed, error) {
	switch inv.Name {
	case fnPrefix:
		return s.prefix(inv)
	case fnList, fnPrint, fnInfo, fnProjectInfo, fnSave, fnStartsWith, fnQuit:
		return sortedset.Sealed{}, fmt.Errorf("%w: %s()", ErrNoValue, inv.Name)
	default:
		return sortedset.Sealed{}, fmt.Errorf("%w: %s", query.ErrUnknownFunction, inv.Name)
	}
}

// RunFunction executes a function for its side effects.
func (s *Session) RunFunction(inv query.Invocation) error {
	switch inv.Name {
	case fnList:
		return s.list(inv)
	case fnPrint:
		s.print("PRINTING:\n")
		for _, a := range inv.Args {
			s.printf("\t%s\n", a.String())
		}
		return nil
	case fnInfo, fnProjectInfo:
		s.print(s.describeIndex())
		return nil
	case fnSave:
		path, n, err := s.save()
		if err != nil {
			return err
		}
		s.printf("Saved %d statements to %s\n", n, path)
		return nil
	case fnStartsWith:
		s.startsWith(inv)
		return nil
	case fnQuit:
		s.done = true
		return nil
	default:
		return fmt.Errorf("%w: %s", query.ErrUnknownFunction, inv.Name)
	}
}

func (s *Session) list(inv query.Invocation) error {
	if len(inv.Args) != 1 {
		return fmt.Errorf("invalid format for %s function: must have exactly 1 argument", fnList)
	}
	v, err := inv.Evaluate(0)
	if err != nil {
		return err
	}
	s.results = v.Len()
	s.print(v.Describe(math.MaxInt) + "\n")
	return nil
}

// prefixArgs returns the arguments as non-empty bare words.
func prefixArgs(inv query.Invocation) ([]string, error) {
	words := inv.WordArgs()
	if len(words) == 0 || len(words) != len(inv.Args) {
		return nil, fmt.Errorf("%s() takes one or more words", inv.Name)
	}
	return words, nil
}

// prefix unions the postings of every word that starts with one of the
// arguments.
func (s *Session) prefix(inv query.Invocation) (sortedset.Sealed, error) {
	prefixes, err := prefixArgs(inv)
	if err != nil {
		return sortedset.Sealed{}, err
	}
	var sets []sortedset.Sealed
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		postings, err := s.idx.PrefixPostings(p)
		if err != nil {
			return sortedset.Sealed{}, err
		}
		sets = append(sets, postings...)
	}
	return sortedset.UnionMany(sets), nil
}

func (s *Session) startsWith(inv query.Invocation) {
	var words []string
	for _, p := range inv.WordArgs() {
		if p != "" {
			words = append(words, s.idx.WithPrefix(p)...)
		}
	}
	slices.Sort(words)
	words = slices.Compact(words)

	if len(words) == 0 {
		s.print("STARTS WITH: Nothing in the word index starts with that.\n")
		return
	}
	for i, w := range words {
		words[i] = script.DefaultFormat.LiteralIfNeeded(w)
	}
	s.print("STARTS WITH: " + strings.Join(words, " | ") + "\n")
}

func (s *Session) describeIndex() string {
	var b strings.Builder
	docs := s.idx.Documents()
	fmt.Fprintf(&b, "Index %s: %d documents, %d pages, %d words\n",
		s.idx.Name(), len(docs), s.idx.TotalPages(), len(s.idx.Words()))
	for i, d := range docs {
		if d.Pages == 0 {
			fmt.Fprintf(&b, "  %d. %s (no pages)\n", i+1, d.Path)
			continue
		}
		fmt.Fprintf(&b, "  %d. %s: pages %d-%d (%d)\n", i+1, d.Path, d.First, d.Last, d.Pages)
	}
	return b.String()
}

// isSaveLine matches statements that call save().
func isSaveLine(line string) bool {
	rest, ok := strings.CutPrefix(line, fnSave)
	return ok && strings.HasPrefix(strings.TrimSpace(rest), "(")
}

// save writes the statements run so far to the first free consoleN.txt.
func (s *Session) save() (string, int, error) {
	var lines []string
	for _, line := range s.statements {
		if !isSaveLine(line) {
			lines = append(lines, line)
		}
	}

	dir := s.opts.SaveDir
	if dir == "" {
		dir = "."
	}
	for i := range maxSaveFiles {
		name := "console.txt"
		if i > 0 {
			name = "console" + strconv.Itoa(i) + ".txt"
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("save session: %w", err)
		}
		_, werr := f.WriteString(strings.Join(lines, "\n") + "\n")
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return "", 0, fmt.Errorf("save session: %w", werr)
		}
		return path, len(lines), nil
	}
	return "", 0, fmt.Errorf("save session: no free console file in %s", dir)
}
