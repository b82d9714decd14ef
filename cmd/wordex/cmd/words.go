package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	werrors "github.com/Aman-CERP/wordex/internal/errors"
)

func newWordsCmd(a *app) *cobra.Command {
	var (
		counts bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "words [prefix]",
		Short: "List the indexed words",
		Long: `List the dictionary of the index in sorted order, optionally only the
words starting with a prefix. --counts adds the number of pages of each
word.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := a.openIndex()
			if err != nil {
				return err
			}

			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			lo, hi := reader.PrefixRange(prefix)
			if limit > 0 {
				hi = min(hi, lo+limit)
			}

			out := cmd.OutOrStdout()
			words := reader.Words()
			for i := lo; i < hi; i++ {
				if !counts {
					_, _ = fmt.Fprintln(out, words[i])
					continue
				}
				pages, err := reader.Postings(i)
				if err != nil {
					return werrors.Wrap(werrors.ErrCodeCorruptIndex, err)
				}
				_, _ = fmt.Fprintf(out, "%-25s %d\n", words[i], pages.Len())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&counts, "counts", "c", false, "Show the page count of each word")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many words")
	return cmd
}
