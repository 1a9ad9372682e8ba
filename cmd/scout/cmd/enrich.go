package cmd

import (
	"context"

	"github.com/scouthq/scout/internal/enrich"
	"github.com/scouthq/scout/internal/models"
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <reddit-url>",
	Short: "Fetch real engagement data for a Reddit thread",
	Long: `Fetch score, comment count, upvote ratio, and top comment excerpts
for a single Reddit thread URL. This is the only path that talks to Reddit;
the multi-source fetch never does.

Example:
  scout enrich "https://www.reddit.com/r/golang/comments/abc123/some_post/"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := enrich.NewService(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		record, err := svc.Enrich(ctx, args[0])
		if err != nil {
			return err
		}

		envelope := &models.ResponseEnvelope{
			Meta: enrich.Meta(args[0]),
			Results: map[string]models.SourceOutcome{
				record.Source: {
					SourceName: record.Source,
					Success:    true,
					ItemCount:  1,
					Items:      []models.Record{*record},
				},
			},
			SourceStatus: map[string]models.SourceStatus{
				record.Source: {Success: true, ItemCount: 1},
			},
		}
		return writeJSON(cmd, envelope)
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
