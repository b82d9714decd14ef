package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/preflight"
)

func newDoctorCmd(a *app) *cobra.Command {
	var verbose, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the system and verify the index",
		Long: `Run diagnostics before building or querying an index.

Checks:
  - Free disk space in the index directory (16 MB, or three times the
    page stream when one exists)
  - Write permissions in the index directory
  - File descriptor limit (256 minimum)
  - The skip words file, when index.skip_words_file is set
  - Every posting list of the index, when it is built

Use --verbose to list the issues found in the index.`,
		Example: `  wordex doctor
  wordex doctor --index out/corpus --verbose
  wordex doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDoctor(cmd, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func (a *app) runDoctor(cmd *cobra.Command, verbose, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := a.config()
	if err != nil {
		return err
	}
	files, err := a.files()
	if err != nil {
		return err
	}
	target := preflight.Target{Files: files, SkipWordsFile: cfg.Index.SkipWordsFile}
	if p := target.SkipWordsFile; p != "" && !filepath.IsAbs(p) {
		target.SkipWordsFile = filepath.Join(a.root, p)
	}

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)
	results := checker.RunAll(ctx, target)

	if jsonOutput {
		if err := outputDoctorJSON(cmd, checker, results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return errors.New("system check failed")
	}
	return nil
}

// DoctorOutput is the JSON form of the doctor report.
type DoctorOutput struct {
	Status   string            `json:"status"`
	Checks   []DoctorCheckJSON `json:"checks"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

// DoctorCheckJSON is a single check result for JSON output.
type DoctorCheckJSON struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func outputDoctorJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult) error {
	out := DoctorOutput{
		Status: checker.SummaryStatus(results),
		Checks: make([]DoctorCheckJSON, len(results)),
	}

	for i, r := range results {
		out.Checks[i] = DoctorCheckJSON{
			Name:     r.Name,
			Status:   statusToString(r.Status),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		}

		if r.IsCritical() {
			out.Errors = append(out.Errors, r.Name+": "+r.Message)
		} else if r.Status != preflight.StatusPass {
			out.Warnings = append(out.Warnings, r.Name+": "+r.Message)
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func statusToString(s preflight.CheckStatus) string {
	switch s {
	case preflight.StatusPass:
		return "pass"
	case preflight.StatusWarn:
		return "warn"
	case preflight.StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}
