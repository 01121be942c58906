// Package cmd provides the CLI commands for tome.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tome-search/tome/internal/build"
	"github.com/tome-search/tome/internal/config"
	"github.com/tome-search/tome/internal/logging"
	"github.com/tome-search/tome/internal/registry"
	"github.com/tome-search/tome/internal/search"
	"github.com/tome-search/tome/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// app bundles what every subcommand needs.
type app struct {
	cfg *config.Config
	reg *registry.Registry
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.IndicesDir(), 0o755); err != nil {
		return nil, err
	}
	return &app{
		cfg: cfg,
		reg: registry.New(cfg.RegistryPath(), cfg.IndicesDir()),
	}, nil
}

func (a *app) engine() *search.Engine {
	return search.NewEngine(a.reg)
}

func (a *app) builder() *build.Builder {
	return build.New(build.Options{
		Workers:     a.cfg.EffectiveWorkers(),
		MaxFileSize: a.cfg.Build.MaxFileSize,
	})
}

// NewRootCmd creates the root command for the tome CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tome",
		Short: "Full-text search over your document collections",
		Long: `tome indexes directories of documents (PDFs, plain text, markdown)
into named, page-granular full-text indices, and searches them with
boolean, phrase, prefix, and fuzzy queries.

Start with 'tome create <name> <directory>', then 'tome search <name> <query>'.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("tome version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.tome/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRun = stopLogging

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newReloadCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newOpenCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(cmd *cobra.Command, args []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		// Logging must never block the actual command.
		return nil
	}
	loggingCleanup = cleanup
	return nil
}

func stopLogging(cmd *cobra.Command, args []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}
