package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload <name>",
		Short: "Rebuild an index from scratch",
		Long: `Reload re-indexes the whole corpus directory into a fresh index and
swaps it in atomically. Searches keep working against the old index until
the rebuild succeeds. This is also how deleted documents leave the index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			entry, err := a.reg.Resolve(args[0])
			if err != nil {
				return err
			}
			summary, err := a.builder().FullBuild(cmd.Context(), entry.RootPath, entry.IndexPath())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt index %q\n", entry.Name)
			printSummary(cmd, summary)
			return nil
		},
	}
}
