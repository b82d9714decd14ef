package index

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/sortedset"
)

// IssueType categorizes a problem found by Verify.
type IssueType int

const (
	// IssueUnreadablePostings is a posting list that does not decode to a
	// strictly ascending set.
	IssueUnreadablePostings IssueType = iota
	// IssuePageOutOfRange is a posting outside [1, total pages].
	IssuePageOutOfRange
	// IssueEmptyPostings is a dictionary word that occurs on no page.
	IssueEmptyPostings
	// IssueDuplicateWord is a word listed twice in the dictionary.
	IssueDuplicateWord
	// IssueWidthMismatch is a 16-bit index whose pages do not fit in 16 bits.
	IssueWidthMismatch
	// IssueMissingWord is a dictionary word absent from the .words file.
	IssueMissingWord
	// IssueOrphanWord is a .words entry absent from the dictionary.
	IssueOrphanWord
)

func (t IssueType) String() string {
	switch t {
	case IssueUnreadablePostings:
		return "unreadable_postings"
	case IssuePageOutOfRange:
		return "page_out_of_range"
	case IssueEmptyPostings:
		return "empty_postings"
	case IssueDuplicateWord:
		return "duplicate_word"
	case IssueWidthMismatch:
		return "width_mismatch"
	case IssueMissingWord:
		return "missing_word"
	case IssueOrphanWord:
		return "orphan_word"
	default:
		return "unknown"
	}
}

// Issue is one problem found in an index.
type Issue struct {
	Type    IssueType
	Word    string
	Details string
}

func (i Issue) String() string {
	if i.Word == "" {
		return fmt.Sprintf("%s: %s", i.Type, i.Details)
	}
	return fmt.Sprintf("%s: %q: %s", i.Type, i.Word, i.Details)
}

// VerifyResult is the outcome of Verify.
type VerifyResult struct {
	// Words is the number of posting lists checked.
	Words int
	// Postings is the total number of page references read.
	Postings int64
	Issues   []Issue
	Duration time.Duration
}

// OK reports whether no issue was found.
func (v *VerifyResult) OK() bool { return len(v.Issues) == 0 }

// Verify decodes every posting list and checks it against the document
// header. When the legible .words file exists it is
// compared with the dictionary.
func (r *Reader) Verify(ctx context.Context) (*VerifyResult, error) {
	start := time.Now()
	res := &VerifyResult{}
	total := r.TotalPages()

	if r.shortPages && total > indexer.MaxShort {
		res.Issues = append(res.Issues, Issue{
			Type:    IssueWidthMismatch,
			Details: fmt.Sprintf("%d pages stored as 16-bit numbers", total),
		})
	}

	for i, word := range r.words {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if i > 0 && r.words[i-1] == word {
			res.Issues = append(res.Issues, Issue{Type: IssueDuplicateWord, Word: word, Details: "listed twice"})
		}

		pages, err := r.decode(i)
		res.Words++
		if err != nil {
			res.Issues = append(res.Issues, Issue{Type: IssueUnreadablePostings, Word: word, Details: err.Error()})
			continue
		}
		res.Postings += int64(pages.Len())
		if pages.IsEmpty() {
			res.Issues = append(res.Issues, Issue{Type: IssueEmptyPostings, Word: word, Details: "no pages"})
			continue
		}
		if first, last := pages.At(0), pages.Last(); first < 1 || int64(last) > total {
			res.Issues = append(res.Issues, Issue{
				Type:    IssuePageOutOfRange,
				Word:    word,
				Details: fmt.Sprintf("pages %d..%d outside 1..%d", first, last, total),
			})
		}
	}

	issues, err := r.compareWordsFile()
	if err != nil {
		return nil, err
	}
	res.Issues = append(res.Issues, issues...)
	res.Duration = time.Since(start)

	if !res.OK() {
		slog.Warn("index_verify_failed",
			slog.String("index", r.Name()),
			slog.Int("issues", len(res.Issues)))
	}
	return res, nil
}

func (r *Reader) decode(i int) (sortedset.Sealed, error) {
	if r.cache == nil {
		return r.Postings(i)
	}
	// A cached list was validated when it was first decoded.
	if s, ok := r.cache.Peek(i); ok {
		return s, nil
	}
	return r.Postings(i)
}

// compareWordsFile reports words that appear in only one of the dictionary
// and the .words file. A missing .words file is not an issue.
func (r *Reader) compareWordsFile() ([]Issue, error) {
	f, err := os.Open(r.files.Words())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", indexer.ExtWords, err)
	}
	defer func() { _ = f.Close() }()

	listed := make(map[string]bool, len(r.words))
	var issues []Issue
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := scanner.Text()
		if word == "" {
			continue
		}
		listed[word] = true
		if _, ok := r.IndexOf(word); !ok {
			issues = append(issues, Issue{Type: IssueOrphanWord, Word: word, Details: "not in the dictionary"})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", indexer.ExtWords, err)
	}

	for _, word := range r.words {
		if !listed[word] {
			issues = append(issues, Issue{Type: IssueMissingWord, Word: word, Details: "missing from " + indexer.ExtWords})
		}
	}
	return issues, nil
}
