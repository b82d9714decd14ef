package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/history"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/indexer"
	"github.com/Aman-CERP/wordex/internal/ui"
)

var infoFileOrder = []string{
	indexer.ExtConw, indexer.ExtWords, indexer.ExtConi, indexer.ExtIndex,
	indexer.ExtGrid, indexer.ExtCong, indexer.ExtHistory,
}

func newInfoCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		documents  bool
	)

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show index statistics",
		Long: `Show the size of the index, its files and a summary of the query
history. --documents lists the page range of every document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := a.openIndex()
			if err != nil {
				return err
			}
			info := statusInfo(reader)

			r := ui.NewStatusRenderer(cmd.OutOrStdout(), a.cfg.UI.NoColor)
			if jsonOutput {
				return r.RenderJSON(info)
			}
			r.Render(info, infoFileOrder)

			if documents {
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprintln(out, "  Documents:")
				for i, d := range reader.Documents() {
					if d.Pages == 0 {
						_, _ = fmt.Fprintf(out, "    %d. %s (no pages)\n", i+1, d.Path)
						continue
					}
					_, _ = fmt.Fprintf(out, "    %d. %s: pages %d-%d\n", i+1, d.Path, d.First, d.Last)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&documents, "documents", false, "List documents and their pages")
	return cmd
}

func statusInfo(reader *index.Reader) ui.StatusInfo {
	files := reader.Files()
	info := ui.StatusInfo{
		Name:       reader.Name(),
		Documents:  len(reader.Paths()),
		Pages:      reader.TotalPages(),
		Words:      len(reader.Words()),
		ShortPages: reader.ShortPages(),
		Files:      make(map[string]int64),
	}

	for _, ext := range infoFileOrder {
		st, err := os.Stat(files.Path(ext))
		if err != nil {
			continue
		}
		info.Files[ext] = st.Size()
		info.TotalSize += st.Size()
		if ext == indexer.ExtConi {
			info.BuiltAt = st.ModTime()
		}
	}

	if _, ok := info.Files[indexer.ExtHistory]; ok {
		info.History = historyInfo(files.History())
	}
	return info
}

func historyInfo(path string) *ui.HistoryInfo {
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("history_unavailable", slog.String("error", err.Error()))
		return nil
	}
	defer func() { _ = store.Close() }()

	sum, err := store.Summary()
	if err != nil || sum.Statements == 0 {
		return nil
	}
	return &ui.HistoryInfo{
		Statements:  sum.Statements,
		ZeroResults: sum.ZeroResults,
		Errors:      sum.Errors,
		LastQuery:   sum.LastSeen,
	}
}
