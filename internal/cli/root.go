package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/branding"
	"github.com/pforge-labs/pforge/internal/config"
	"github.com/pforge-labs/pforge/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` turns free-text developer intent into validated,
phase-aware scaffolding: repository skeletons, GitOps workflow steps,
validation rules, and capability registry entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		// The update command does its own live check; everywhere else the
		// cached daily check prints a banner when a newer version exists.
		if cmd.Name() != "update" {
			updater.New(buildVersion).CheckAndPrintBanner(os.Stderr, config.Dir())
		}
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
