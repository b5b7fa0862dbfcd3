package cli

import (
	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/home"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair issues where possible")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the home directory layout and local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return home.Check(cmd.OutOrStdout(), doctorFix)
	},
}
