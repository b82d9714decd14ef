package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/watcher"
)

func TestQueryCmd_ReadsStdin(t *testing.T) {
	// Given: a built index
	built(t)

	// When: piping statements, one of them failing
	out, err := execute(t, "cat & dog\ncow\nx = cat | eel\nx - range(1,4)\nquit()\ncat\n", "query", "--index", "out/corpus")

	// Then: the session reports the error and keeps going until quit()
	require.NoError(t, err)
	assert.Contains(t, out, "Exactly one match, at page 1.\n")
	assert.Contains(t, out, "ERR_401_UNRESOLVED_WORD")
	assert.Contains(t, out, "line: 2")
	assert.Contains(t, out, "Exactly one match, at page 5.\n")
	assert.Equal(t, 2, strings.Count(out, "match"), "nothing runs after quit()")
	assert.NotContains(t, out, "> ", "no prompt when stdin is not a terminal")
}

func TestQueryCmd_Flags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{"documents", []string{"--documents"}, "dog\n", "  2. docs/beta.txt: 2\n"},
		{"verbose", []string{"--verbose"}, "cat&dog|eel\n", "> ( ( cat & dog ) | eel )\n"},
		{"display limit", []string{"--display-limit", "2"}, "cat\n", "There are 3 matching pages: 1 . . . 5.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built(t)
			args := append([]string{"query", "--index", "out/corpus"}, tt.args...)

			out, err := execute(t, tt.input, args...)

			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRunCmd_Script(t *testing.T) {
	// Given: a script with comments and blank lines
	dir := built(t)
	script := filepath.Join(dir, "queries.txt")
	writeFile(t, script, "// pages with cats\ncat\n\nstartsWith(cat)\n")

	// When: running it
	out, err := execute(t, "", "run", "--index", "out/corpus", script)

	// Then: every statement runs in order
	require.NoError(t, err)
	assert.Equal(t, "There are 3 matching pages: 1, 3, 5.\nSTARTS WITH: cat | catalog | category\n", out)
}

func TestRunCmd_StopsAtFirstError(t *testing.T) {
	dir := built(t)
	script := filepath.Join(dir, "queries.txt")
	writeFile(t, script, "cat\ncat &\neel\n")

	out, err := execute(t, "", "run", "--index", "out/corpus", script)

	// Then: the error is printed once, with its line, and eel never runs
	require.Error(t, err)
	var reported *reportedError
	assert.ErrorAs(t, err, &reported)
	assert.Equal(t, werrors.ErrCodeSyntax, werrors.GetCode(err))
	assert.Contains(t, out, "line: 2")
	assert.NotContains(t, out, "page 5")
}

func TestRunCmd_KeepGoing(t *testing.T) {
	dir := built(t)
	script := filepath.Join(dir, "queries.txt")
	writeFile(t, script, "cat &\neel\n")

	out, err := execute(t, "", "run", "--keep-going", "--index", "out/corpus", script)

	require.NoError(t, err)
	assert.Contains(t, out, "ERR_301_SYNTAX")
	assert.Contains(t, out, "Exactly one match, at page 5.")
}

func TestRunCmd_Stdin(t *testing.T) {
	built(t)

	out, err := execute(t, "eel\n", "run", "--index", "out/corpus", "-")

	require.NoError(t, err)
	assert.Equal(t, "Exactly one match, at page 5.\n", out)
}

func TestRunCmd_MissingScript(t *testing.T) {
	built(t)

	_, err := execute(t, "", "run", "--index", "out/corpus", "nope.txt")

	require.Error(t, err)
	assert.Equal(t, werrors.ErrCodeFileNotFound, werrors.GetCode(err))
}

func TestRunCmd_Watch(t *testing.T) {
	// Given: a script being watched
	saved := watchOptions
	watchOptions = watcher.Options{DebounceWindow: 30 * time.Millisecond, PollInterval: 20 * time.Millisecond, ForcePolling: true}
	t.Cleanup(func() { watchOptions = saved })

	dir := built(t)
	script := filepath.Join(dir, "queries.txt")
	writeFile(t, script, "cat\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		_, err := executeContext(ctx, t, "", out, "run", "--watch", "--index", "out/corpus", script)
		done <- err
	}()
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Watching") }, 5*time.Second, 10*time.Millisecond)

	// When: the script changes
	require.NoError(t, os.WriteFile(script, []byte("eel\n"), 0o644))

	// Then: it runs again with a fresh session
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Exactly one match, at page 5.")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "changed, running again")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRunCmd_WatchRejectsStdin(t *testing.T) {
	built(t)

	_, err := execute(t, "", "run", "--watch", "--index", "out/corpus", "-")

	assert.ErrorContains(t, err, "--watch needs a script file")
}
