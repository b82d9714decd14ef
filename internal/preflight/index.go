package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/indexer"
)

// maxListedIssues bounds the issues copied into Details.
const maxListedIssues = 10

// CheckIndex opens the index and verifies every posting list. An index that
// has not been built yet is a warning.
func (c *Checker) CheckIndex(ctx context.Context, files indexer.Files) CheckResult {
	result := CheckResult{
		Name:     "index",
		Required: true,
	}

	if !files.Exists() {
		result.Status = StatusWarn
		result.Required = false
		result.Message = fmt.Sprintf("%s is not built yet", files.Name)
		return result
	}

	r, err := index.Open(files, 0)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}
	res, err := r.Verify(ctx)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("verification stopped: %v", err)
		return result
	}

	if !res.OK() {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%d issue(s) in %d words, rebuild the index", len(res.Issues), res.Words)
		var b strings.Builder
		for i, issue := range res.Issues {
			if i == maxListedIssues {
				fmt.Fprintf(&b, "... and %d more\n", len(res.Issues)-i)
				break
			}
			b.WriteString(issue.String())
			b.WriteByte('\n')
		}
		result.Details = strings.TrimSuffix(b.String(), "\n")
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d documents, %d pages, %d words verified",
		len(r.Paths()), r.TotalPages(), res.Words)
	return result
}
