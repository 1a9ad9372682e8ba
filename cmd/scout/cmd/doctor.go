package cmd

import (
	"context"
	"fmt"

	"github.com/scouthq/scout/internal/doctor"
	"github.com/spf13/cobra"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Probe every source and report reachability",
	Long: `Issue a minimal live request against each registered source and
report which ones respond. Sources that are disabled by configuration (the
Brave grounding source without BRAVE_API_KEY) report a warning, not an
error. Exits non-zero when any source errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := doctor.Run(context.Background(), registry, cfg.Timeout)

		if doctorJSON {
			if err := writeJSON(cmd, report); err != nil {
				return err
			}
		} else {
			report.Print(cmd.OutOrStdout())
		}

		if !report.Healthy {
			return fmt.Errorf("one or more sources are unreachable")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(doctorCmd)
}
