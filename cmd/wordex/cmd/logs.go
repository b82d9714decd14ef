package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/logging"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		follow bool
		lines  int
		level  string
		filter string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View wordex logs",
		Long: `Show the last lines of the wordex log file (~/.wordex/logs/wordex.log).
Use -f to follow new entries like 'tail -f'.`,
		Example: `  wordex logs -n 100
  wordex logs --level warn
  wordex logs -f --filter build_`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(file)
			if err != nil {
				return err
			}

			var pattern *regexp.Regexp
			if filter != "" {
				if pattern, err = regexp.Compile(filter); err != nil {
					return fmt.Errorf("invalid filter pattern: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:   level,
				Pattern: pattern,
				NoColor: a.noColor,
			}, out)

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Log file: %s\n---\n", path)
			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)
			if !follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			followed := make(chan logging.LogEntry, 64)
			errCh := make(chan error, 1)
			go func() {
				errCh <- viewer.Follow(ctx, path, followed)
			}()
			for {
				select {
				case entry := <-followed:
					_, _ = fmt.Fprintln(out, viewer.FormatEntry(entry))
				case err := <-errCh:
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&filter, "filter", "", "Only lines matching this regex")
	cmd.Flags().StringVar(&file, "file", "", "Log file path")
	return cmd
}
