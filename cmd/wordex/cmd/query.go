package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/finder"
	"github.com/Aman-CERP/wordex/internal/history"
	"github.com/Aman-CERP/wordex/internal/watcher"
)

// sessionFlags are shared by query and run.
type sessionFlags struct {
	documents    bool
	verbose      bool
	keepGoing    bool
	noHistory    bool
	displayLimit int
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.documents, "documents", "d", false, "Also list matches per document")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Echo each statement in normalised form")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record statements in the query history")
	cmd.Flags().IntVar(&f.displayLimit, "display-limit", 0, "Abridge results with more pages (default: query.display_limit)")
}

func newQueryCmd(a *app) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Start an interactive query session",
		Long: `Read statements from standard input and print the matching pages.

Statements:
  cat & dog            pages with both words
  x = cat | dog        assign a variable (once)
  atLeast2(a, b, c)    pages with at least two of the words
  range(10, 20) - cat  page ranges
  startsWith(cat)      dictionary words with a prefix
  prefix(cat)          pages of every word with a prefix
  info()  save()  quit()

Errors are reported and the session continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			flags.keepGoing = true
			prompt := ""
			if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				prompt = "> "
			}

			sess, closeSession, err := a.openSession(cmd.OutOrStdout(), flags, prompt)
			if err != nil {
				return err
			}
			defer closeSession()

			if prompt != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type quit() or press Ctrl+D to leave.")
			}
			err = sess.Run(ctx, cmd.InOrStdin())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// watchOptions configures run --watch.
var watchOptions = watcher.DefaultOptions()

func newRunCmd(a *app) *cobra.Command {
	var (
		flags sessionFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a query script",
		Long: `Run the statements of a script file, one per line. "-" reads standard
input. Blank lines and lines starting with // are skipped.

The script stops at the first failing statement unless --keep-going is set.
With --watch the script runs again whenever it or the index changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch {
				if args[0] == "-" {
					return fmt.Errorf("--watch needs a script file, not standard input")
				}
				return a.watchScript(ctx, cmd, args[0], flags)
			}
			return a.runScript(ctx, cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&flags.keepGoing, "keep-going", "k", false, "Continue after a failing statement")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when the script or the index changes")
	return cmd
}

// openSession opens the index and, when enabled, the query history.
func (a *app) openSession(out io.Writer, flags sessionFlags, prompt string) (*finder.Session, func(), error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	reader, err := a.openIndex()
	if err != nil {
		return nil, nil, err
	}

	opts := finder.Options{
		DisplayLimit: cfg.Query.DisplayLimit,
		Documents:    flags.documents,
		Verbose:      flags.verbose,
		KeepGoing:    flags.keepGoing,
		Prompt:       prompt,
		Logger:       slog.Default(),
	}
	if flags.displayLimit > 0 {
		opts.DisplayLimit = flags.displayLimit
	}

	closeSession := func() {}
	if cfg.HistoryEnabled() && !flags.noHistory {
		store, err := history.Open(reader.Files().History())
		if err != nil {
			slog.Warn("history_unavailable", slog.String("error", err.Error()))
		} else {
			opts.History = store
			closeSession = func() { _ = store.Close() }
		}
	}
	return finder.New(reader, out, opts), closeSession, nil
}

func (a *app) runScript(ctx context.Context, cmd *cobra.Command, path string, flags sessionFlags) error {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return werrors.New(werrors.ErrCodeFileNotFound, "cannot open script", err).WithDetail("path", path)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	sess, closeSession, err := a.openSession(cmd.OutOrStdout(), flags, "")
	if err != nil {
		return err
	}
	defer closeSession()

	if err := sess.Run(ctx, in); err != nil {
		if _, ok := werrors.As(err); ok {
			// Run printed the statement error with its line.
			return &reportedError{err: err}
		}
		return err
	}
	return nil
}

func (a *app) watchScript(ctx context.Context, cmd *cobra.Command, path string, flags sessionFlags) error {
	files, err := a.files()
	if err != nil {
		return err
	}
	w, err := watcher.New(watchOptions, path, files.Conw(), files.Coni())
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("watcher_failed", slog.String("error", err.Error()))
		}
	}()
	defer w.Stop()

	out := cmd.OutOrStdout()
	runOnce := func() {
		// A new session per run, since variables are write-once.
		err := a.runScript(ctx, cmd, path, flags)
		if err != nil && ctx.Err() == nil {
			printError(out, err)
		}
	}

	runOnce()
	_, _ = fmt.Fprintf(out, "Watching %s and index %s (Ctrl+C to stop)\n", path, files.Name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			for _, e := range batch {
				slog.Debug("watch_change", slog.String("path", e.Path), slog.String("op", e.Operation.String()))
			}
			_, _ = fmt.Fprintf(out, "\n--- %s changed, running again ---\n", batch[0].Path)
			runOnce()
		case err := <-w.Errors():
			slog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}
