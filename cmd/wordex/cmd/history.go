package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the query history of the index",
		Long: `Show the latest statements run against the index, newest first.

The history is kept in <index>.history.db next to the index and holds the
last 1000 statements. Disable it with query.history: false or
--no-history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(store *history.Store) error {
				entries, err := store.Recent(limit)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 20, "Number of rows to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "words",
		Short: "Show the most queried words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(store *history.Store) error {
				words, err := store.TopWords(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(words) == 0 {
					_, _ = fmt.Fprintln(out, "No words recorded.")
				}
				for _, w := range words {
					_, _ = fmt.Fprintf(out, "%-25s %d\n", w.Word, w.Count)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "zero",
		Short: "Show statements that matched no pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(store *history.Store) error {
				entries, err := store.ZeroResults(limit)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	})

	var days int
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show history totals and the statement latency distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(store *history.Store) error {
				return printStats(cmd.OutOrStdout(), store, days)
			})
		},
	}
	stats.Flags().IntVar(&days, "days", 7, "Latency window in days, including today")
	cmd.AddCommand(stats)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(store *history.Store) error {
				if err := store.Clear(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			})
		},
	})

	return cmd
}

// withHistory opens the history of the selected index for fn. A missing
// history database is reported, not created.
func (a *app) withHistory(cmd *cobra.Command, fn func(*history.Store) error) error {
	files, err := a.files()
	if err != nil {
		return err
	}
	path := files.History()
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No query history for index %s.\n", files.Name)
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return werrors.Wrap(werrors.ErrCodeHistoryFailed, err).WithDetail("path", path)
	}
	defer func() { _ = store.Close() }()

	if err := fn(store); err != nil {
		return werrors.Wrap(werrors.ErrCodeHistoryFailed, err)
	}
	return nil
}

func printEntries(out io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No statements recorded.")
		return
	}
	for _, e := range entries {
		result := fmt.Sprintf("%d", e.Results)
		switch {
		case e.Err != "":
			result = "error"
		case e.Results < 0:
			result = "-"
		}
		_, _ = fmt.Fprintf(out, "%s  %-10s %6s  %s\n",
			e.Time.Local().Format("2006-01-02 15:04:05"), e.Kind, result, e.Statement)
	}
}

func printStats(out io.Writer, store *history.Store, days int) error {
	sum, err := store.Summary()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Statements:   %d\n", sum.Statements)
	_, _ = fmt.Fprintf(out, "Zero results: %d\n", sum.ZeroResults)
	_, _ = fmt.Fprintf(out, "Errors:       %d\n", sum.Errors)
	if sum.Statements == 0 {
		return nil
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -(max(days, 1) - 1)).Format(time.DateOnly)
	counts, err := store.LatencyCounts(from, now.Format(time.DateOnly))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nLatency since %s:\n", from)
	labels := map[history.LatencyBucket]string{
		history.BucketP1:    "<1ms",
		history.BucketP10:   "1-10ms",
		history.BucketP100:  "10-100ms",
		history.BucketP1000: "100ms-1s",
		history.BucketSlow:  ">=1s",
	}
	for _, b := range history.Buckets {
		_, _ = fmt.Fprintf(out, "  %-9s %d\n", labels[b], counts[b])
	}
	return nil
}
