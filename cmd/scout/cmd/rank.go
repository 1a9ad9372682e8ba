package cmd

import (
	"context"

	"github.com/scouthq/scout/internal/fetcher"
	"github.com/scouthq/scout/internal/models"
	"github.com/scouthq/scout/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	rankSources    []string
	rankLimit      int
	rankDepth      string
	rankQueryType  string
	rankConfigPath string
)

// rankOutput pairs the fetched envelope with its ranking so callers can join
// score entries back to records by source+id.
type rankOutput struct {
	Envelope *models.ResponseEnvelope `json:"envelope"`
	Ranking  []models.ScoreEntry      `json:"ranking"`
}

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Fetch from all sources and rank the combined results",
	Long: `Fetch results for a query, then score and order them with the
tiered formula. The query type shifts recency windows and source boosts;
it is never inferred from the query text.

Examples:
  scout rank "terraform state locking"
  scout rank "golang 1.23 release" --query-type NEWS
  scout rank "best CI provider" --query-type RECOMMENDATIONS --depth deep`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryType, err := scoring.ParseQueryType(rankQueryType)
		if err != nil {
			return err
		}

		scoringCfg := scoring.DefaultConfig()
		if rankConfigPath != "" {
			scoringCfg, err = scoring.LoadConfig(rankConfigPath)
			if err != nil {
				return err
			}
		}

		limit := rankLimit
		if limit <= 0 && rankDepth == "" {
			limit = cfg.DefaultLimit
		}

		envelope, err := service.Fetch(context.Background(), fetcher.Request{
			Query:   args[0],
			Sources: rankSources,
			Limit:   limit,
			Depth:   rankDepth,
		})
		if err != nil {
			return err
		}

		entries := scoring.Score(scoring.Collect(envelope), queryType, scoringCfg)
		return writeJSON(cmd, rankOutput{Envelope: envelope, Ranking: entries})
	},
}

func init() {
	rankCmd.Flags().StringSliceVar(&rankSources, "sources", nil, "comma-separated source names")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "max items per source")
	rankCmd.Flags().StringVar(&rankDepth, "depth", "", "depth tier: quick, default, or deep")
	rankCmd.Flags().StringVar(&rankQueryType, "query-type", "GENERAL",
		"query classification: GENERAL, NEWS, HOW_TO, RECOMMENDATIONS, or COMPARISON")
	rankCmd.Flags().StringVar(&rankConfigPath, "scoring-config", "", "YAML file overriding the scoring tables")

	rootCmd.AddCommand(rankCmd)
}
