package finder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/history"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/query"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// DefaultDisplayLimit is the number of pages shown before a result is
// abridged.
const DefaultDisplayLimit = 200

// Recorder stores executed statements.
type Recorder interface {
	Record(e history.Event) error
}

// Options configures a Session.
type Options struct {
	// DisplayLimit abridges results with more pages. Zero means
	// DefaultDisplayLimit.
	DisplayLimit int

	// Documents also prints matches grouped per document.
	Documents bool

	// Verbose echoes each statement in normalised form before running it.
	Verbose bool

	// KeepGoing makes Run continue after a failed statement.
	KeepGoing bool

	// Prompt is written before each line Run reads. Empty disables it.
	Prompt string

	// SaveDir is where save() writes. Empty means the working directory.
	SaveDir string

	// History records executed statements when set.
	History Recorder

	Logger *slog.Logger
}

// Session is a query.Context over one index. Statements execute one at a
// time; a Session is safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	idx  *index.Reader
	out  io.Writer
	opts Options

	vars       map[string]sortedset.Sealed
	statements []string
	done       bool

	// Per-statement tracking for history.
	words   []string
	results int
}

var _ query.Context = (*Session)(nil)

// New creates a session that reads idx and writes to out.
func New(idx *index.Reader, out io.Writer, opts Options) *Session {
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = DefaultDisplayLimit
	}
	if opts.DisplayLimit < 2 {
		opts.DisplayLimit = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		idx:  idx,
		out:  out,
		opts: opts,
		vars: make(map[string]sortedset.Sealed),
	}
}

// Done reports whether quit() has run.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Statements returns the lines executed so far, in order.
func (s *Session) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.statements)
}

// Variable returns the value bound to name.
func (s *Session) Variable(name string) (sortedset.Sealed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

// Execute parses and runs one line. Blank and comment lines do nothing.
// Failures are returned as coded wordex errors.
func (s *Session) Execute(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.words = s.words[:0]
	s.results = -1
	stmt, err := query.ParseLine(line)
	if err != nil {
		s.record(strings.TrimSpace(line), history.KindExpression, start, err)
		return mapError(err)
	}
	if stmt == nil {
		return nil
	}

	s.statements = append(s.statements, strings.TrimSpace(line))
	for _, w := range stmt.Warnings {
		s.printf("WARNING: %s\n", w)
	}
	if s.opts.Verbose {
		s.printf("> %s\n", stmt.Command.String())
	}

	err = query.NewEvaluator(s).Execute(stmt.Command)
	s.record(stmt.Command.String(), kindOf(stmt.Command), start, err)
	if err != nil {
		s.opts.Logger.Debug("statement_failed",
			slog.String("statement", stmt.Command.String()),
			slog.String("error", err.Error()))
		return mapError(err)
	}
	return nil
}

// ErrNotExpression is returned by Evaluate for a line that has no value,
// such as an assignment or a call to save().
var ErrNotExpression = errors.New("statement is not an expression")

// Evaluate parses line as an expression and returns its pages without
// displaying them. The statement is recorded like any other.
func (s *Session) Evaluate(line string) (sortedset.Sealed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.words = s.words[:0]
	s.results = -1
	stmt, err := query.ParseLine(line)
	if err == nil && stmt == nil {
		err = fmt.Errorf("%w: empty line", ErrNotExpression)
	}
	if err != nil {
		s.record(strings.TrimSpace(line), history.KindExpression, start, err)
		return sortedset.Sealed{}, mapError(err)
	}

	var expr query.Expr
	switch c := stmt.Command.(type) {
	case query.Expr:
		expr = c
	case *query.FunctionCall:
		if s.FunctionReturnsValue(c.Name) {
			expr = &query.Call{Name: c.Name, Args: c.Args}
		}
	}
	if expr == nil {
		err := fmt.Errorf("%w: %s", ErrNotExpression, stmt.Command)
		s.record(stmt.Command.String(), kindOf(stmt.Command), start, err)
		return sortedset.Sealed{}, mapError(err)
	}

	v, err := query.NewEvaluator(s).Eval(expr)
	if err == nil {
		s.results = v.Len()
	}
	s.record(stmt.Command.String(), history.KindExpression, start, err)
	if err != nil {
		return sortedset.Sealed{}, mapError(err)
	}
	return v, nil
}

// Run executes the lines of r until EOF, quit() or cancellation. Lines
// that are blank or start with // are skipped. A failed statement is
// reported with its line number; Run then stops with that error unless
// KeepGoing is set.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for {
		if s.opts.Prompt != "" {
			s.print(s.opts.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if err := s.Execute(line); err != nil {
			we, _ := werrors.As(err)
			we = we.WithDetail("line", fmt.Sprint(lineNo))
			s.print(werrors.FormatForCLI(we))
			if !s.opts.KeepGoing {
				return we
			}
		}
		if s.Done() {
			return nil
		}
	}
	return scanner.Err()
}

func (s *Session) record(statement string, kind history.Kind, start time.Time, err error) {
	if s.opts.History == nil {
		return
	}
	e := history.Event{
		Statement: statement,
		Kind:      kind,
		Words:     slices.Compact(slices.Sorted(slices.Values(s.words))),
		Results:   s.results,
		Latency:   time.Since(start),
		Time:      start,
	}
	if err != nil {
		e.Err = err.Error()
		e.Results = -1
	}
	if rerr := s.opts.History.Record(e); rerr != nil {
		s.opts.Logger.Warn("history_record_failed", slog.String("error", rerr.Error()))
	}
}

func kindOf(cmd query.Command) history.Kind {
	switch cmd.(type) {
	case *query.Assign:
		return history.KindAssign
	case *query.FunctionCall:
		return history.KindFunction
	default:
		return history.KindExpression
	}
}

// PagesFor resolves an indexed word first and a variable second.
func (s *Session) PagesFor(word string) (sortedset.Sealed, error) {
	if i, ok := s.idx.IndexOf(word); ok {
		s.words = append(s.words, word)
		return s.idx.Postings(i)
	}
	if v, ok := s.vars[word]; ok {
		return v, nil
	}
	return sortedset.Sealed{}, fmt.Errorf("%w: %s", query.ErrUnresolved, word)
}

// SetVariable binds name once. Indexed words cannot be shadowed.
func (s *Session) SetVariable(name string, value sortedset.Sealed) error {
	if _, ok := s.vars[name]; ok {
		return fmt.Errorf("%w: %s", query.ErrDuplicateName, name)
	}
	if _, ok := s.idx.IndexOf(name); ok {
		return fmt.Errorf("%w: %s is an indexed word", query.ErrDuplicateName, name)
	}
	s.vars[name] = value
	return nil
}

// DisplayResult prints the pages of an expression statement.
func (s *Session) DisplayResult(value sortedset.Sealed) {
	s.results = value.Len()
	s.print(FormatPages(value, s.opts.DisplayLimit) + "\n")
	if s.opts.Documents && !value.IsEmpty() {
		s.print(FormatDocuments(GroupByDocument(s.idx.Documents(), value)))
	}
}

func (s *Session) print(msg string) {
	_, _ = io.WriteString(s.out, msg)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
