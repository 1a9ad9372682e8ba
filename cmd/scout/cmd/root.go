// Package cmd implements the scout CLI.
package cmd

import (
	"github.com/scouthq/scout/internal/config"
	"github.com/scouthq/scout/internal/fetcher"
	"github.com/scouthq/scout/internal/sources"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	registry *sources.Registry
	service  *fetcher.Service
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Fetch and rank engagement metadata from developer communities",
	Long: `Scout queries public developer community APIs (Hacker News, Stack
Overflow, lobste.rs, dev.to, arXiv, Wikipedia, DuckDuckGo instant answers,
and optionally Brave AI grounding), normalizes the results into a single
record shape, and ranks them with a tiered engagement-aware scoring formula.

Results are written to stdout as JSON; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()

		logrus.SetOutput(cmd.ErrOrStderr())
		if cfg.Debug {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}

		registry = sources.NewRegistry(cfg)
		service = fetcher.NewService(registry, cfg.Timeout)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
