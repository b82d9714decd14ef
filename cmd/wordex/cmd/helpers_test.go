package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a command writing while the test
// reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// project creates an isolated project directory, makes it the working
// directory and points the user config at an empty directory.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{"WORDEX_HISTORY", "WORDEX_DISPLAY_LIMIT", "WORDEX_LOG_LEVEL", "WORDEX_PLAIN"} {
		t.Setenv(name, "")
	}
	return dir
}

// writeCorpus writes two documents whose index is
//
//	cat      1,3,5
//	catalog  2
//	category 3
//	dog      1,4
//	eel      5
func writeCorpus(t *testing.T, dir string) string {
	t.Helper()
	docs := filepath.Join(dir, "docs")
	writeFile(t, filepath.Join(docs, "alpha.txt"), "The cat and the dog.\fA catalog.\f")
	writeFile(t, filepath.Join(docs, "beta.txt"), "Cat category\fDOG\fEel, cat!")
	return docs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// execute runs the CLI with args and stdin and returns everything written
// to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, stdin, &syncBuffer{}, args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin string, out *syncBuffer, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-file", filepath.Join(t.TempDir(), "wordex.log")}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// built creates a project with the corpus indexed as out/corpus.
func built(t *testing.T) string {
	t.Helper()
	dir := project(t)
	writeCorpus(t, dir)
	_, err := execute(t, "", "build", "--index", "out/corpus", "docs")
	require.NoError(t, err)
	return dir
}
