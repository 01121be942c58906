package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <name>",
		Short: "Index new and changed documents",
		Long: `Update scans the corpus directory and re-indexes documents that are new
or have changed since the last build. Documents whose files were deleted
stay searchable; use 'tome reload' to drop them.`,
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
			summary, err := a.builder().Update(cmd.Context(), entry.RootPath, entry.IndexPath())
			if err != nil {
				return err
			}
			if summary.Indexed == 0 && len(summary.Skipped) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Index %q is up to date\n", entry.Name)
				return nil
			}
			printSummary(cmd, summary)
			return nil
		},
	}
}
