package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scouthq/scout/internal/fetcher"
	"github.com/scouthq/scout/internal/sources"
	"github.com/spf13/cobra"
)

var (
	fetchSources []string
	fetchLimit   int
	fetchDepth   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [source] <query>",
	Short: "Fetch results from one source or all of them",
	Long: `Fetch results for a query. With a single argument, or with "all" as
the first argument, every default source is queried concurrently. Naming a
source (hackernews, stackoverflow, lobsters, devto, arxiv, wikipedia,
duckduckgo, brave, or the aliases hn/so) restricts the fetch to it.

Examples:
  scout fetch "rust async runtime"
  scout fetch all "kubernetes operators" --depth deep
  scout fetch hn "zig comptime" --limit 5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := fetcher.Request{
			Sources: fetchSources,
			Limit:   fetchLimit,
			Depth:   fetchDepth,
		}
		if req.Limit <= 0 && req.Depth == "" {
			req.Limit = cfg.DefaultLimit
		}

		switch len(args) {
		case 1:
			req.Query = args[0]
		case 2:
			// Naming one source yields just that source's outcome.
			if args[0] != "all" && len(fetchSources) == 0 {
				outcome, err := service.FetchOne(context.Background(), args[0], args[1], req.Limit)
				if err != nil {
					return err
				}
				return writeJSON(cmd, outcome)
			}
			if args[0] != "all" {
				req.Sources = append([]string{args[0]}, fetchSources...)
			}
			req.Query = args[1]
		}

		envelope, err := service.Fetch(context.Background(), req)
		if err != nil {
			return err
		}
		return writeJSON(cmd, envelope)
	},
}

var listSourcesCmd = &cobra.Command{
	Use:   "list-sources",
	Short: "List the registered sources and their engagement fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, info := range registry.Infos() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", info.Name, info.Description)
			if len(info.EngagementFields) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "               engagement: %v\n", info.EngagementFields)
			}
			if info.Notes != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "               %s\n", info.Notes)
			}
		}
		return nil
	},
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchSources, "sources", nil, "comma-separated source names")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "max items per source")
	fetchCmd.Flags().StringVar(&fetchDepth, "depth", "", fmt.Sprintf("depth tier: %s, %s, or %s",
		sources.DepthQuick, sources.DepthDefault, sources.DepthDeep))

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listSourcesCmd)
}
