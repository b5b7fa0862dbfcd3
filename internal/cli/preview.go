package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/generator"
	"github.com/pforge-labs/pforge/internal/spec"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <spec-file>",
	Short: "Preview the artifact a spec file would generate",
	Long: `Generate the artifact in memory and print its configuration, file tree,
and validation summary. Nothing is written and no workflow runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := spec.Load(args[0])
		if err != nil {
			return err
		}
		artifact, err := generator.Generate(s)
		if err != nil {
			return err
		}

		p := generator.BuildPreview(artifact)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, p.RenderedYAML)
		fmt.Fprintln(out, "Files:")
		for _, path := range p.FileTree {
			fmt.Fprintf(out, "  %s\n", path)
		}
		fmt.Fprintf(out, "Validation: %s\n", p.ValidationSummary)
		return nil
	},
}
