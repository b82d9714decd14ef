package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/lock"
	"github.com/Aman-CERP/wordex/internal/profiling"
	"github.com/Aman-CERP/wordex/internal/ui"
)

type buildOptions struct {
	wait bool
	keep bool
}

func newBuildCmd(a *app) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build [file-or-dir]...",
		Short: "Build the word index",
		Long: `Build the word index of the given documents.

With no arguments the index is built from the page stream a previous
'wordex extract' wrote. The build runs in three phases:

  dictionary  sorted list of the indexed words (.words, .conw)
  encode      every page as dictionary numbers (.cong)
  transpose   the pages of every word (.coni) and a legible index (.index)

Only one build may run per index at a time.`,
		Example: `  # Index every .txt file under docs/ as out/corpus
  wordex build --index out/corpus docs/

  # Two steps
  wordex extract book.txt && wordex build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Wait for another build to release the index lock")
	cmd.Flags().BoolVar(&opts.keep, "keep-intermediate", false, "Keep the .grid and .cong files")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, args []string, opts buildOptions) error {
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

	lk := lock.ForIndex(files.Dir, files.Name)
	if err := lk.Acquire(ctx, opts.wait); err != nil {
		return err
	}
	defer func() { _ = lk.Unlock() }()

	words, err := a.wordList(cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if _, err := os.Stat(files.Grid()); err != nil {
			return werrors.New(werrors.ErrCodeFileNotFound, "nothing to build: no documents given and no page stream found", err).
				WithDetail("path", files.Grid()).
				WithSuggestion("Pass documents to build, or run 'wordex extract' first")
		}
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(cfg.UI.Plain),
		ui.WithNoColor(cfg.UI.NoColor),
		ui.WithIndexName(files.Name)))
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start progress display: %w", err)
	}
	defer func() { _ = renderer.Stop() }()

	var extractTime time.Duration
	if len(args) > 0 {
		summary, err := a.extract(ctx, files, args, words, renderer)
		if err != nil {
			renderer.AddError(ui.ErrorEvent{Err: err})
			return err
		}
		extractTime = summary.Duration
	}

	documents, err := gridDocuments(files)
	if err != nil {
		return err
	}

	builder := indexer.New(files, indexer.Options{
		KeepIntermediate: cfg.Index.KeepIntermediate || opts.keep,
		Renderer:         renderer,
		Logger:           slog.Default(),
	})
	res, err := builder.BuildFromGrid(ctx, words)
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return werrors.Wrap(werrors.ErrCodeBuildFailed, err).WithDetail("index", files.Name)
	}
	profiling.LogMemory(slog.Default(), "build_memory")

	renderer.Complete(ui.CompletionStats{
		Index:     files.Name,
		Documents: documents,
		Pages:     res.Pages,
		Words:     res.Words,
		Duration:  extractTime + res.Duration,
		Stages: ui.StageTimings{
			Extract:    extractTime,
			Dictionary: res.Timings.Dictionary,
			Encode:     res.Timings.Encode,
			Transpose:  res.Timings.Transpose,
		},
	})
	slog.Info("build_complete",
		slog.String("index", files.Name),
		slog.Int("documents", documents),
		slog.Int("pages", res.Pages),
		slog.Int("words", res.Words),
		slog.Bool("short_pages", res.ShortPages),
		slog.Duration("duration", extractTime+res.Duration))
	return nil
}

// gridDocuments reads the document count from the grid header.
func gridDocuments(files indexer.Files) (int, error) {
	src, err := indexer.OpenGrid(files.Grid())
	if err != nil {
		return 0, werrors.Wrap(werrors.ErrCodeCorruptIndex, err).WithDetail("path", files.Grid())
	}
	defer func() { _ = src.Close() }()
	return len(src.Header.Paths), nil
}
