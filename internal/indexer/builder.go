package indexer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Aman-CERP/wordex/internal/dictionary"
	"github.com/Aman-CERP/wordex/internal/gridio"
	"github.com/Aman-CERP/wordex/internal/ui"
)

// MaxShort is the largest count encoded with 16-bit values. Dictionaries
// of at most MaxShort words store word indices as int16; indexes of at
// most MaxShort pages store page numbers as int16.
const MaxShort = 32767

const progressEvery = 500

var (
	// ErrMissingWord means a page word was not found in the dictionary.
	// It signals an inconsistent dictionary, never bad input text.
	ErrMissingWord = errors.New("word missing from dictionary")

	// ErrCorrupt reports an intermediate file that does not match the
	// dictionary it was encoded against.
	ErrCorrupt = errors.New("corrupt intermediate file")
)

// Options configures a Builder.
type Options struct {
	// KeepIntermediate keeps the .grid and .cong files.
	KeepIntermediate bool

	// Renderer receives progress updates. Nil disables progress.
	Renderer ui.Renderer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Input is everything a build consumes.
type Input struct {
	PageCounts []int32
	Paths      []string

	// Dictionary must be sorted and free of duplicates.
	Dictionary []string

	// Normalize maps a page word to its dictionary form, or reports that
	// it is not indexed. Nil uses page words as they are.
	Normalize func(string) (string, bool)

	Source PageSource
}

// TotalPages is the sum of the document page counts.
func (in Input) TotalPages() int64 {
	return GridHeader{PageCounts: in.PageCounts}.TotalPages()
}

// PhaseTimings records how long each phase took.
type PhaseTimings struct {
	Dictionary time.Duration
	Encode     time.Duration
	Transpose  time.Duration
}

// Result summarises a finished build.
type Result struct {
	Words int

	// Pages is the number of page records encoded.
	Pages int

	// LastPage is the highest page number seen.
	LastPage int32

	ShortWords bool
	ShortPages bool
	Timings    PhaseTimings
	Duration   time.Duration
}

// Builder turns a page stream into an inverted index in three sequential
// phases: dictionary, encode and transpose.
type Builder struct {
	files  Files
	opts   Options
	logger *slog.Logger
}

// New creates a builder writing the index files.
func New(files Files, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{files: files, opts: opts, logger: logger}
}

// Build runs the three phases. On failure every partial output is removed.
func (b *Builder) Build(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.files.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rmErr := b.files.removeOutputs(); rmErr != nil {
			b.logger.Warn("build_cleanup_failed", slog.String("error", rmErr.Error()))
		}
		b.logger.Error("build_failed", slog.String("name", b.files.Name), slog.String("error", err.Error()))
	}()

	res = &Result{Words: len(in.Dictionary)}

	phaseStart := time.Now()
	if err := b.writeDictionary(in); err != nil {
		return nil, fmt.Errorf("dictionary phase: %w", err)
	}
	res.Timings.Dictionary = time.Since(phaseStart)
	b.phaseDone("dictionary", res.Timings.Dictionary, slog.Int("words", res.Words))

	phaseStart = time.Now()
	enc, err := b.encode(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("encode phase: %w", err)
	}
	res.Pages, res.LastPage, res.ShortWords = enc.pages, enc.lastPage, enc.short
	res.Timings.Encode = time.Since(phaseStart)
	b.phaseDone("encode", res.Timings.Encode, slog.Int("pages", res.Pages), slog.Bool("short_words", res.ShortWords))

	phaseStart = time.Now()
	res.ShortPages = max(in.TotalPages(), int64(enc.lastPage)) <= MaxShort
	if err := b.transpose(ctx, in.Dictionary, enc.tallies, res.ShortPages); err != nil {
		return nil, fmt.Errorf("transpose phase: %w", err)
	}
	res.Timings.Transpose = time.Since(phaseStart)
	b.phaseDone("transpose", res.Timings.Transpose, slog.Bool("short_pages", res.ShortPages))

	res.Duration = time.Since(start)
	b.progress(ui.ProgressEvent{Stage: ui.StageComplete, Current: res.Pages, Total: res.Pages})
	return res, nil
}

// BuildFromGrid builds from the .grid file. When words is empty the grid
// is scanned first to fill it. The grid is removed after a successful
// build unless KeepIntermediate is set.
func (b *Builder) BuildFromGrid(ctx context.Context, words *dictionary.WordList) (*Result, error) {
	if words.Len() == 0 {
		if err := b.scanGrid(ctx, words); err != nil {
			return nil, err
		}
	}

	src, err := OpenGrid(b.files.Grid())
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer func() { _ = src.Close() }()

	res, err := b.Build(ctx, Input{
		PageCounts: src.Header.PageCounts,
		Paths:      src.Header.Paths,
		Dictionary: words.Words(),
		Normalize:  words.Normalize,
		Source:     src,
	})
	if err != nil {
		return nil, err
	}
	if !b.opts.KeepIntermediate {
		_ = src.Close()
		if err := os.Remove(b.files.Grid()); err != nil {
			b.logger.Warn("grid_remove_failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func (b *Builder) scanGrid(ctx context.Context, words *dictionary.WordList) error {
	src, err := OpenGrid(b.files.Grid())
	if err != nil {
		return fmt.Errorf("open grid: %w", err)
	}
	defer func() { _ = src.Close() }()

	total := int(src.Header.TotalPages())
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		words.ApplyAll(page.Words)
		if n%progressEvery == 0 {
			b.progress(ui.ProgressEvent{Stage: ui.StageDictionary, Current: n, Total: total})
		}
	}
}

func validateInput(in Input) error {
	if err := (GridHeader{PageCounts: in.PageCounts, Paths: in.Paths}).validate(); err != nil {
		return err
	}
	if in.Source == nil {
		return errors.New("no page source")
	}
	for i := 1; i < len(in.Dictionary); i++ {
		if in.Dictionary[i] <= in.Dictionary[i-1] {
			return fmt.Errorf("dictionary is not sorted and unique at %q", in.Dictionary[i])
		}
	}
	return nil
}

// writeDictionary writes .conw and .words.
func (b *Builder) writeDictionary(in Input) error {
	b.progress(ui.ProgressEvent{Stage: ui.StageDictionary, Total: len(in.Dictionary), Message: "writing dictionary"})

	err := writeFile(b.files.Conw(), func(w io.Writer) error {
		gw := gridio.NewWriter(w)
		if err := gw.WriteIntArray(in.PageCounts); err != nil {
			return err
		}
		if err := gw.WriteStringArray(in.Paths); err != nil {
			return err
		}
		if err := gw.WriteStringArray(in.Dictionary); err != nil {
			return err
		}
		return gw.Flush()
	})
	if err != nil {
		return err
	}

	return writeFile(b.files.Words(), func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, word := range in.Dictionary {
			_, _ = bw.WriteString(word)
			_ = bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}

type encoded struct {
	tallies  []int32
	pages    int
	lastPage int32
	short    bool
}

// encode writes .cong: a width flag, then per page its number, its word
// count and its sorted unique dictionary indices.
func (b *Builder) encode(ctx context.Context, in Input) (*encoded, error) {
	dict := in.Dictionary
	enc := &encoded{tallies: make([]int32, len(dict)), short: len(dict) <= MaxShort}
	total := int(in.TotalPages())

	err := writeFile(b.files.Cong(), func(w io.Writer) error {
		gw := gridio.NewWriter(w)
		if err := gw.WriteBool(enc.short); err != nil {
			return err
		}
		writeIndex := gw.WriteInt
		if enc.short {
			writeIndex = gw.WriteShort
		}

		var current int32
		var indices []int32
		flush := func() error {
			if current == 0 {
				return nil
			}
			slices.Sort(indices)
			indices = slices.Compact(indices)
			if err := gw.WriteInt(current); err != nil {
				return err
			}
			if err := gw.WriteInt(int32(len(indices))); err != nil {
				return err
			}
			for _, idx := range indices {
				enc.tallies[idx]++
				if err := writeIndex(idx); err != nil {
					return err
				}
			}
			enc.pages++
			if enc.pages%progressEvery == 0 {
				b.progress(ui.ProgressEvent{Stage: ui.StageEncode, Current: enc.pages, Total: total})
			}
			indices = indices[:0]
			return nil
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, err := in.Source.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read page: %w", err)
			}
			if page.Number < 1 || page.Number < current {
				return &OrderError{Previous: current, Got: page.Number}
			}
			if page.Number != current {
				if err := flush(); err != nil {
					return err
				}
				current = page.Number
			}
			for _, word := range page.Words {
				if in.Normalize != nil {
					var ok bool
					if word, ok = in.Normalize(word); !ok {
						continue
					}
				}
				idx, found := slices.BinarySearch(dict, word)
				if !found {
					return fmt.Errorf("%w: %q on page %d", ErrMissingWord, word, page.Number)
				}
				indices = append(indices, int32(idx))
			}
		}
		if err := flush(); err != nil {
			return err
		}
		enc.lastPage = current
		return gw.Flush()
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// transpose reads .cong back and scatters every (page, word) pair into
// posting arrays presized from the tallies. It writes .coni and .index
// and removes .cong.
func (b *Builder) transpose(ctx context.Context, dict []string, tallies []int32, shortPages bool) error {
	postings := make([][]int32, len(dict))
	for i, n := range tallies {
		postings[i] = make([]int32, 0, n)
	}

	if err := b.scatter(ctx, postings); err != nil {
		return err
	}

	err := writeFile(b.files.Coni(), func(w io.Writer) error {
		gw := gridio.NewWriter(w)
		if err := gw.WriteInt(int32(len(postings))); err != nil {
			return err
		}
		if err := gw.WriteBool(shortPages); err != nil {
			return err
		}
		writeArray := gw.WriteIntArray
		if shortPages {
			writeArray = gw.WriteShortArray
		}
		for i, pages := range postings {
			if err := writeArray(pages); err != nil {
				return err
			}
			if (i+1)%(progressEvery*20) == 0 {
				b.progress(ui.ProgressEvent{Stage: ui.StageTranspose, Current: i + 1, Total: len(postings)})
			}
		}
		return gw.Flush()
	})
	if err != nil {
		return err
	}

	if err := writeLegible(b.files.Index(), dict, postings); err != nil {
		return err
	}

	if !b.opts.KeepIntermediate {
		if err := os.Remove(b.files.Cong()); err != nil {
			return fmt.Errorf("remove %s: %w", ExtCong, err)
		}
	}
	return nil
}

func (b *Builder) scatter(ctx context.Context, postings [][]int32) error {
	f, err := os.Open(b.files.Cong())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	r := gridio.NewReader(f)
	short, err := r.ReadBool()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	readIndex := r.ReadInt
	if short {
		readIndex = r.ReadShort
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := r.ReadInt()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		count, err := r.ReadInt()
		if err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrCorrupt, page, err)
		}
		for range count {
			idx, err := readIndex()
			if err != nil {
				return fmt.Errorf("%w: page %d: %v", ErrCorrupt, page, err)
			}
			if idx < 0 || int(idx) >= len(postings) || len(postings[idx]) == cap(postings[idx]) {
				return fmt.Errorf("%w: word index %d on page %d", ErrCorrupt, idx, page)
			}
			postings[idx] = append(postings[idx], page)
		}
	}
}

// legibleColumn is where page lists start in the .index file.
const legibleColumn = 27

// legibleLine renders "word<fill>pages". Fill pads the word to
// legibleColumn and is underscores on every fourth line. Longer words
// are followed by a single space.
func legibleLine(i int, word string, pages []int32) string {
	var b strings.Builder
	b.WriteString(word)
	b.WriteByte(' ')
	if n := utf8.RuneCountInString(word); n+2 <= legibleColumn {
		fill := " "
		if (i+1)%4 == 0 {
			fill = "_"
		}
		b.WriteString(strings.Repeat(fill, legibleColumn-2-n))
		b.WriteByte(' ')
	}
	for j, p := range pages {
		if j > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(p)))
	}
	return b.String()
}

func writeLegible(path string, dict []string, postings [][]int32) error {
	return writeFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for i, word := range dict {
			_, _ = bw.WriteString(legibleLine(i, word, postings[i]))
			_ = bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}

func writeFile(path string, fill func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func (b *Builder) progress(event ui.ProgressEvent) {
	if b.opts.Renderer != nil {
		b.opts.Renderer.UpdateProgress(event)
	}
}

func (b *Builder) phaseDone(phase string, d time.Duration, attrs ...any) {
	args := append([]any{
		slog.String("name", b.files.Name),
		slog.String("phase", phase),
		slog.Int64("duration_ms", d.Milliseconds()),
	}, attrs...)
	b.logger.Info("build_phase_complete", args...)
}
