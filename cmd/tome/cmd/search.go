package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tome-search/tome/internal/search"
	"github.com/tome-search/tome/internal/ui"
	"github.com/tome-search/tome/internal/viewer"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	fuzzy    bool
	distance int
	offset   int
	limit    int
	format   string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <name> [query...]",
		Short: "Search an index",
		Long: `Search runs a query against a named index and prints ranked page hits
with previews.

Query syntax:
  word word          match either word (OR)
  word AND word      match pages containing both
  "exact phrase"     terms in order, adjacent
  "near phrase"~2    terms in order, up to 2 positions of total slack
  word*              prefix match
  (a b) AND c        grouping

With --fuzzy the query is a list of words matched within --distance edits;
boolean, phrase, and prefix syntax are not available in fuzzy mode.

Without a query on a terminal, search starts an interactive session.

Examples:
  tome search books "moby AND whale"
  tome search books '"call me ishmael"~1'
  tome search papers --fuzzy kolmogorov
  tome search books whale --offset 10 --limit 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			name := args[0]
			query := strings.Join(args[1:], " ")
			if query == "" {
				return runInteractive(a, name, opts)
			}
			return runSearch(cmd, a, name, query, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.fuzzy, "fuzzy", "z", false, "Fuzzy matching by edit distance")
	cmd.Flags().IntVarP(&opts.distance, "distance", "d", 0, "Maximum edit distance for fuzzy matching")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Skip this many hits")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of hits to print")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func (o searchOptions) engineOptions(cfg searchDefaults, highlight func(string) string) search.Options {
	opts := search.Options{
		Fuzzy:         o.fuzzy,
		Distance:      o.distance,
		Offset:        o.offset,
		Limit:         o.limit,
		PreviewRadius: cfg.radius,
		Highlight:     highlight,
	}
	if opts.Limit <= 0 {
		opts.Limit = cfg.limit
	}
	if opts.Distance <= 0 {
		opts.Distance = cfg.distance
	}
	return opts
}

type searchDefaults struct {
	limit    int
	distance int
	radius   int
}

func (a *app) searchDefaults() searchDefaults {
	return searchDefaults{
		limit:    a.cfg.Search.Limit,
		distance: a.cfg.Search.Distance,
		radius:   a.cfg.Search.SnippetRadius,
	}
}

func runSearch(cmd *cobra.Command, a *app, name, query string, opts searchOptions) error {
	var highlight func(string) string
	tty := isatty.IsTerminal(os.Stdout.Fd())
	if tty && opts.format == "text" {
		highlight = ui.DefaultStyles().HighlightFunc()
	}

	eng := a.engine()
	defer eng.Close()
	result, err := eng.Search(cmd.Context(), name, query, opts.engineOptions(a.searchDefaults(), highlight))
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *search.Result) {
	out := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintf(out, "No matches for %q in index %q\n", result.Query, result.Index)
		return
	}
	from := result.Offset + 1
	to := result.Offset + len(result.Hits)
	fmt.Fprintf(out, "Hits %d-%d of %d for %q in index %q\n\n", from, to, result.Total, result.Query, result.Index)
	for _, h := range result.Hits {
		fmt.Fprintf(out, "[%d] %s, page %d (score %.1f)\n", h.Number, h.Path, h.Page, h.Score)
		if h.HasPreview {
			fmt.Fprintf(out, "    %s\n", h.Preview)
		}
	}
	fmt.Fprintf(out, "\nOpen a hit with 'tome open %s <number>'\n", result.Index)
}

func runInteractive(a *app, name string, opts searchOptions) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("interactive search needs a terminal; pass a query instead")
	}
	entry, err := a.reg.Resolve(name)
	if err != nil {
		return err
	}
	defaults := a.searchDefaults()
	eng := a.engine()
	defer eng.Close()
	cfg := ui.Config{
		Index:    name,
		Searcher: eng,
		Open: func(relPath string, page int) error {
			docPath := filepath.Join(entry.RootPath, filepath.FromSlash(relPath))
			return viewer.Open(context.Background(), a.cfg.Viewer.Command, docPath, page)
		},
		Limit:    opts.limit,
		Distance: opts.distance,
		Radius:   defaults.radius,
		NoColor:  os.Getenv("NO_COLOR") != "",
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaults.limit
	}
	if cfg.Distance <= 0 {
		cfg.Distance = defaults.distance
	}
	return ui.Run(cfg)
}
