package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tome-search/tome/internal/viewer"
)

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <name> <hit-number>",
		Short: "Open a hit from the last search in the document viewer",
		Long: `Open resolves a hit number from the most recent 'tome search' on the
index and opens the document at the matched page. The viewer command is
configurable; {path} and {page} in it are substituted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("hit number must be a positive integer, got %q", args[1])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			docPath, page, err := a.engine().Lookup(args[0], number)
			if err != nil {
				return err
			}
			if err := viewer.Open(cmd.Context(), a.cfg.Viewer.Command, docPath, page); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s at page %d\n", docPath, page)
			return nil
		},
	}
}
