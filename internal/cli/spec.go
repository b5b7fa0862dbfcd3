package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/spec"
)

func init() {
	specCmd.AddCommand(specValidateCmd)
	specCmd.AddCommand(specShowCmd)
	rootCmd.AddCommand(specCmd)
}

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Work with template specification files",
}

var specValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a spec file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := spec.Load(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
		return nil
	},
}

var specShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Parse a spec file and print its normalized form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := spec.Load(args[0])
		if err != nil {
			return err
		}
		data, err := spec.Render(s)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}
