package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if filepath.Base(path) != "wordex.log" {
		t.Errorf("DefaultLogPath should end with wordex.log, got: %s", path)
	}
	if !strings.Contains(path, ".wordex") {
		t.Errorf("DefaultLogPath should live under .wordex, got: %s", path)
	}
}

func TestDefaultAndDebugConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.WriteToStderr {
		t.Error("default config should not write to stderr")
	}

	debug := DebugConfig()
	if debug.Level != "debug" || !debug.WriteToStderr {
		t.Errorf("unexpected debug config: %+v", debug)
	}
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 3})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Info("build_phase_complete", "phase", "dictionary")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"build_phase_complete"`) {
		t.Errorf("log should contain the event, got: %s", data)
	}
}

func TestSetup_EmptyPath(t *testing.T) {
	if _, _, err := Setup(Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"ERROR", "ERROR"},
		{"unknown", "INFO"},
	}
	for _, tc := range tests {
		if got := LevelFromString(tc.input).String(); got != tc.expected {
			t.Errorf("LevelFromString(%q) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestFindLogFile(t *testing.T) {
	if _, err := FindLogFile("/nonexistent/path/to/log.log"); err == nil {
		t.Error("expected error for missing explicit path")
	}

	path := filepath.Join(t.TempDir(), "x.log")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindLogFile(path)
	if err != nil || got != path {
		t.Errorf("FindLogFile(%q) = %q, %v", path, got, err)
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rot.log")
	w, err := NewRotatingWriter(path, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()
	w.SetImmediateSync(false)

	line := []byte(strings.Repeat("x", 1023) + "\n")
	// Four megabytes of lines force at least three rotations.
	for i := 0; i < 4*1024; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	for _, suffix := range []string{"", ".1", ".2"} {
		if _, err := os.Stat(path + suffix); err != nil {
			t.Errorf("expected %s to exist: %v", filepath.Base(path+suffix), err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("backups beyond maxFiles should be removed")
	}
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = fmt.Fprintf(w, "g%d-%d\n", g, i)
			}
		}(g)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Sync(); err != nil {
		t.Errorf("Sync after Close should be a no-op: %v", err)
	}

	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "\n"); n != 400 {
		t.Errorf("expected 400 lines, got %d", n)
	}
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordex.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestViewer_TailAndFilter(t *testing.T) {
	path := writeLog(t,
		`{"time":"2026-01-02T10:00:00Z","level":"DEBUG","msg":"one"}`,
		`{"time":"2026-01-02T10:00:01Z","level":"INFO","msg":"two"}`,
		`not json`,
		`{"time":"2026-01-02T10:00:02Z","level":"ERROR","msg":"statement_failed","line":3}`,
	)

	all, err := NewViewer(ViewerConfig{NoColor: true}, nil).Tail(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Msg != "two" || all[1].IsValid {
		t.Errorf("unexpected tail: %+v", all)
	}

	errorsOnly, err := NewViewer(ViewerConfig{Level: "error", NoColor: true}, nil).Tail(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(errorsOnly) != 1 || errorsOnly[0].Msg != "statement_failed" {
		t.Errorf("level filter failed: %+v", errorsOnly)
	}

	matched, _ := NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`"two"`)}, nil).Tail(path, 10)
	if len(matched) != 1 {
		t.Errorf("pattern filter failed: %+v", matched)
	}

	if _, err := NewViewer(ViewerConfig{}, nil).Tail(path+".missing", 10); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestViewer_FormatEntry(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, nil)
	entry := v.parseLine(`{"time":"2026-01-02T10:00:02.5Z","level":"WARN","msg":"slow","z":1,"a":"x"}`)

	got := v.FormatEntry(entry)

	want := "10:00:02.500 WARN  slow a=x z=1"
	if got != want {
		t.Errorf("FormatEntry = %q, want %q", got, want)
	}
	if raw := v.FormatEntry(v.parseLine("plain")); raw != "plain" {
		t.Errorf("invalid lines should print raw, got %q", raw)
	}
}

func TestViewer_Follow(t *testing.T) {
	path := writeLog(t, `{"level":"INFO","msg":"old"}`)
	v := NewViewer(ViewerConfig{NoColor: true}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries := make(chan LogEntry, 1)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()

	// Give Follow time to seek to the end before appending.
	time.Sleep(150 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"level":"INFO","msg":"new"}` + "\n")
	_ = f.Close()

	select {
	case e := <-entries:
		if e.Msg != "new" {
			t.Errorf("expected new entry, got %q", e.Msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for entry")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Follow returned %v", err)
	}
}
