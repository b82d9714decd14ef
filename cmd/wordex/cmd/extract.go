package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/dictionary"
	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/extract"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/lock"
	"github.com/Aman-CERP/wordex/internal/output"
	"github.com/Aman-CERP/wordex/internal/ui"
)

func newExtractCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "extract <file-or-dir>...",
		Short: "Split documents into pages and write the page stream",
		Long: `Split documents into pages of words and write them to <index>.grid.

Directories are walked for files with the configured extensions, honouring
extract.exclude and any .wordexignore file. Pages end at the page
separator (a form feed by default).

'wordex build' with no arguments builds the index from this file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			files, err := a.files()
			if err != nil {
				return err
			}
			lk := lock.ForIndex(files.Dir, files.Name)
			if err := lk.Acquire(ctx, wait); err != nil {
				return err
			}
			defer func() { _ = lk.Unlock() }()

			summary, err := a.extract(ctx, files, args, nil, nil)
			if err != nil {
				return err
			}

			out := output.NewWithColor(cmd.OutOrStdout(), !a.cfg.UI.NoColor)
			out.Successf("Extracted %d documents, %d pages, %d words", summary.Documents, summary.Pages, summary.Words)
			out.KeyValue("Page stream", files.Grid())
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for another build to release the index lock")
	return cmd
}

// extract collects the documents named by args and writes the grid file.
// words and renderer may be nil.
func (a *app) extract(ctx context.Context, files indexer.Files, args []string, words *dictionary.WordList, renderer ui.Renderer) (*extract.GridSummary, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	ignore := extract.NewIgnore(cfg.Extract.Exclude...)
	paths, err := extract.Collect(ctx, args, cfg.Extract.Extensions, ignore)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, werrors.New(werrors.ErrCodeFileNotFound, err.Error(), err)
		}
		return nil, werrors.IOError("cannot collect documents", err)
	}
	if len(paths) == 0 {
		return nil, werrors.New(werrors.ErrCodeFileNotFound, "no documents to index", nil).
			WithDetail("extensions", strings.Join(cfg.Extract.Extensions, ", ")).
			WithSuggestion("Set extract.extensions in .wordex.yaml to match your documents")
	}

	ex := extract.New(extract.Config{
		PageSeparator: cfg.Extract.PageSeparator,
		Workers:       cfg.Extract.Workers,
		KeepNumbers:   cfg.Extract.KeepNumbers,
	})
	summary, err := ex.WriteGrid(ctx, files, paths, extract.GridOptions{Words: words, Renderer: renderer})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, werrors.Wrap(werrors.ErrCodeExtractFailed, err)
	}
	return summary, nil
}
