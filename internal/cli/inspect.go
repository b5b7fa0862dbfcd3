package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/config"
	"github.com/pforge-labs/pforge/internal/inspector"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Assess the health of registered capabilities",
	Long: `Report each registered capability as healthy, stale (no recent
deployment), or drifting (artifact type or tags no longer match its
recorded phase).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		reg, closeStore, err := openRegistry(log)
		if err != nil {
			return err
		}
		defer closeStore()

		freshness := config.GetDuration(config.KeyInspectorFreshness)
		reports, err := inspector.New(reg, freshness, log).Assess(cmd.Context())
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No capabilities registered.")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, r := range reports {
			fmt.Fprintf(out, "%s: %s (assessed %s)\n",
				r.CapabilityID, r.Status, r.AssessedAt.Format(time.RFC3339))
			for _, f := range r.Findings {
				fmt.Fprintf(out, "  - %s\n", f)
			}
		}
		return nil
	},
}
