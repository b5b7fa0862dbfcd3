package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/config"
	"github.com/pforge-labs/pforge/internal/engine"
	"github.com/pforge-labs/pforge/internal/intent"
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/scaffold"
	"github.com/pforge-labs/pforge/internal/spec"
)

var (
	generateSpecPath    string
	generateInteractive bool
	generatePreview     bool
	generateDeploy      bool
	generateAssess      bool
	generatePhase       string
	generateOut         string
	generateSaveSpec    string
)

func init() {
	generateCmd.Flags().StringVar(&generateSpecPath, "spec", "", "Generate from a spec file instead of intent text")
	generateCmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "Ask clarifying questions for incomplete intents")
	generateCmd.Flags().BoolVar(&generatePreview, "preview", false, "Print a preview of the generated artifact")
	generateCmd.Flags().BoolVar(&generateDeploy, "deploy", false, "Run the GitOps workflow after generation")
	generateCmd.Flags().BoolVar(&generateAssess, "assess", false, "Print maturity evolution recommendations")
	generateCmd.Flags().StringVar(&generatePhase, "phase", "", "Override the classified phase (e.g. FOUNDATION)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Write the artifact bundle to this directory")
	generateCmd.Flags().StringVar(&generateSaveSpec, "save-spec", "", "Write the promoted spec to this file")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [intent text...]",
	Short: "Generate a scaffolding artifact from intent text or a spec file",
	Long: `Parse free-text intent, classify its phase and maturity, and generate
the full artifact bundle: configuration, repository skeleton, workflow
steps, validation rules, and documentation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if generateSpecPath == "" && text == "" {
			return fmt.Errorf("provide intent text or --spec <file>")
		}
		if generateSpecPath != "" && text != "" {
			return fmt.Errorf("intent text and --spec are mutually exclusive")
		}

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

		eng, err := newEngine(reg, generateDeploy, log)
		if err != nil {
			return err
		}

		opts := engine.Options{
			Interactive:        generateInteractive,
			Preview:            generatePreview,
			Deploy:             generateDeploy,
			MaturityAssessment: generateAssess,
			MinRequirements:    config.GetInt(config.KeyIntentMinRequirements),
			MaxRounds:          config.GetInt(config.KeyIntentMaxRounds),
			Ask:                askTerminal(cmd),
		}
		if generatePhase != "" {
			p, ok := model.ParsePhase(generatePhase)
			if !ok {
				return fmt.Errorf("unknown phase %q", generatePhase)
			}
			opts.PhaseOverride = p
		}

		var result *engine.Result
		if generateSpecPath != "" {
			s, err := spec.Load(generateSpecPath)
			if err != nil {
				return err
			}
			result, err = eng.GenerateFromSpec(cmd.Context(), s, opts)
			if err != nil {
				return err
			}
		} else {
			result, err = eng.GenerateFromIntent(cmd.Context(), text, opts)
			if err != nil {
				return err
			}
		}

		return printResult(cmd, result)
	},
}

// askTerminal prompts on stderr and reads one line per question from
// stdin.
func askTerminal(cmd *cobra.Command) engine.QuestionFunc {
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(q intent.Question) (string, error) {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", q.Prompt, q.Default)
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF falls back to the default answer.
			return "", nil
		}
		return strings.TrimSpace(line), nil
	}
}

func printResult(cmd *cobra.Command, result *engine.Result) error {
	out := cmd.OutOrStdout()

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if result.UsedFallback {
		fmt.Fprintln(os.Stderr, "warning: minimal artifact generated; review and regenerate")
	}

	meta := result.Template.Metadata
	fmt.Fprintf(out, "Generated %s (phase %s, maturity L%d, type %s)\n",
		meta.Name, meta.Phase, meta.Maturity, meta.Type)
	fmt.Fprintf(out, "  %d skeleton file(s), %d workflow step(s)\n",
		len(result.Template.Skeleton), len(result.Template.Steps))

	if result.Preview != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Files:")
		for _, path := range result.Preview.FileTree {
			fmt.Fprintf(out, "  %s\n", path)
		}
		fmt.Fprintf(out, "Validation: %s\n", result.Preview.ValidationSummary)
	}

	if len(result.MaturityAssessment) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Maturity assessment:")
		for _, rec := range result.MaturityAssessment {
			fmt.Fprintf(out, "  - %s\n", rec)
		}
	}

	if result.Deployment != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Workflow finished in state %s\n", result.WorkflowState)
		if result.Deployment.Repository.URL != "" {
			fmt.Fprintf(out, "  repository: %s\n", result.Deployment.Repository.URL)
		}
		if result.Deployment.Deployment.URL != "" {
			fmt.Fprintf(out, "  deployment: %s\n", result.Deployment.Deployment.URL)
		}
	}

	if generateSaveSpec != "" && result.Spec != nil {
		data, err := spec.Render(result.Spec)
		if err != nil {
			return err
		}
		if err := os.WriteFile(generateSaveSpec, data, 0644); err != nil {
			return fmt.Errorf("writing spec file: %w", err)
		}
		fmt.Fprintf(out, "Spec written to %s\n", generateSaveSpec)
	}

	if generateOut != "" {
		res, err := scaffold.Write(generateOut, result.Template)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Artifact written to %s (%d files)\n", res.OutputDir, len(res.Files))
	}

	return nil
}
