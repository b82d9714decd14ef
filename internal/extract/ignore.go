package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFile lists patterns, one per line, for documents to leave out of
// extraction. The syntax follows .gitignore: '#' comments, '!' negation,
// a trailing '/' for directories, a leading '/' to anchor at the root,
// and the '*', '**' and '?' wildcards.
const IgnoreFile = ".wordexignore"

// Ignore matches slash-separated paths relative to the collection root.
// Later patterns override earlier ones.
type Ignore struct {
	rules []ignoreRule
}

type ignoreRule struct {
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
}

// NewIgnore compiles patterns. Blank lines and comments are skipped.
func NewIgnore(patterns ...string) *Ignore {
	m := &Ignore{}
	for _, p := range patterns {
		m.Add(p)
	}
	return m
}

// Add compiles one pattern.
func (m *Ignore) Add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}

	var r ignoreRule
	if strings.HasPrefix(pattern, "!") {
		r.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = pattern[1:]
	} else if strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") {
		r.anchored = true
	}
	if pattern == "" {
		return
	}
	r.regex = regexp.MustCompile("^" + globToRegex(pattern) + "$")
	m.rules = append(m.rules, r)
}

// AddFile reads patterns from path. A missing file adds nothing.
func (m *Ignore) AddFile(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ignore file: %w", err)
	}
	return nil
}

// Match reports whether path is ignored.
func (m *Ignore) Match(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	path = filepath.ToSlash(path)
	ignored := false
	for _, r := range m.rules {
		if r.match(path, isDir) {
			ignored = !r.negation
		}
	}
	return ignored
}

func (r ignoreRule) match(path string, isDir bool) bool {
	parts := strings.Split(path, "/")

	if r.anchored {
		if r.regex.MatchString(path) {
			return !r.dirOnly || isDir
		}
		if r.dirOnly {
			for i := 1; i < len(parts); i++ {
				if r.regex.MatchString(strings.Join(parts[:i], "/")) {
					return true
				}
			}
		}
		return false
	}

	for i, part := range parts {
		if !r.regex.MatchString(part) {
			continue
		}
		if r.dirOnly && i == len(parts)-1 {
			return isDir
		}
		return true
	}
	return r.regex.MatchString(path)
}

// globToRegex converts '*', '**' and '?' wildcards to a regular expression.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case c == '*' && strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case c == '*' && strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '\\' && i+1 < len(glob):
			i++
			b.WriteString(regexp.QuoteMeta(string(glob[i])))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
