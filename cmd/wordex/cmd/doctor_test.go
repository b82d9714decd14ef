package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCmd_BuiltIndex(t *testing.T) {
	// Given: a freshly built index
	built(t)

	// When: running the diagnostics
	out, err := execute(t, "", "doctor", "--index", "out/corpus")

	// Then: every check passes
	require.NoError(t, err)
	assert.Contains(t, out, "[PASS] index: 2 documents, 5 pages, 5 words verified")
	assert.Contains(t, out, "Status: READY")
}

func TestDoctorCmd_NotBuilt(t *testing.T) {
	project(t)

	out, err := execute(t, "", "doctor")

	require.NoError(t, err)
	assert.Contains(t, out, "[WARN] index: wordex is not built yet")
	assert.Contains(t, out, "Status: READY_WITH_WARNINGS")
}

func TestDoctorCmd_DamagedIndex(t *testing.T) {
	// Given: an index whose .words file lost a word
	dir := built(t)
	words := filepath.Join(dir, "out", "corpus.words")
	require.NoError(t, os.WriteFile(words, []byte("cat\ncatalog\ncategory\neel\n"), 0o644))

	// When: running the diagnostics verbosely
	out, err := execute(t, "", "doctor", "--index", "out/corpus", "-v")

	// Then: the command fails and names the word
	assert.EqualError(t, err, "system check failed")
	assert.Contains(t, out, "[FAIL] index: 1 issue(s)")
	assert.Contains(t, out, `missing_word: "dog"`)
}

func TestDoctorCmd_MissingSkipWordsFile(t *testing.T) {
	dir := project(t)
	writeFile(t, filepath.Join(dir, ".wordex.yaml"), "index:\n  skip_words_file: skip.txt\n")

	out, err := execute(t, "", "doctor")

	assert.Error(t, err)
	assert.Contains(t, out, "[FAIL] skip_words")
}

func TestDoctorCmd_JSON(t *testing.T) {
	built(t)

	out, err := execute(t, "", "doctor", "--index", "out/corpus", "--json")

	require.NoError(t, err)
	var report DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "ready", report.Status)
	names := make([]string, 0, len(report.Checks))
	for _, c := range report.Checks {
		names = append(names, c.Name)
		assert.Equal(t, "pass", c.Status, c.Name)
	}
	assert.Equal(t, []string{"disk_space", "write_permissions", "file_descriptors", "index"}, names)
}
