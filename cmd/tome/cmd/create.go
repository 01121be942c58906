package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tome-search/tome/internal/build"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <directory>",
		Short: "Register a document directory and build its index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			root, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			entry, err := a.reg.Create(name, root)
			if err != nil {
				return err
			}

			summary, err := a.builder().FullBuild(cmd.Context(), entry.RootPath, entry.IndexPath())
			if err != nil {
				// A corpus without an index is useless; roll the entry back.
				if delErr := a.reg.Delete(name); delErr != nil {
					slog.Warn("could not roll back registry entry", "name", name, "error", delErr)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created index %q over %s\n", name, entry.RootPath)
			printSummary(cmd, summary)
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, s *build.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d pages) in %s\n",
		s.Indexed, s.Pages, s.Duration.Round(time.Millisecond))
	for _, skipped := range s.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "  skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
}
