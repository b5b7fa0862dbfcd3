package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
)

var (
	registryListPhase      string
	registryListMaturity   int
	registryListTags       []string
	registryListDeprecated bool
)

func init() {
	registryListCmd.Flags().StringVar(&registryListPhase, "phase", "", "Filter by phase (e.g. GOVERNANCE)")
	registryListCmd.Flags().IntVar(&registryListMaturity, "min-maturity", 0, "Filter by minimum maturity level (1-5)")
	registryListCmd.Flags().StringSliceVar(&registryListTags, "tag", nil, "Filter by tag (repeatable)")
	registryListCmd.Flags().BoolVar(&registryListDeprecated, "deprecated", false, "Include deprecated capabilities")
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registrySuggestCmd)
	rootCmd.AddCommand(registryCmd)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Query the capability registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered capabilities",
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

		f := registry.Filter{
			MinMaturity:       model.MaturityLevel(registryListMaturity),
			Tags:              registryListTags,
			IncludeDeprecated: registryListDeprecated,
		}
		if registryListPhase != "" {
			p, ok := model.ParsePhase(registryListPhase)
			if !ok {
				return fmt.Errorf("unknown phase %q", registryListPhase)
			}
			f.Phase = p
		}

		caps, err := reg.Capabilities(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(caps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No capabilities registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPHASE\tMATURITY\tTAGS\tDEPLOYMENTS")
		for _, c := range caps {
			id := c.ID
			if c.Deprecated {
				id += " (deprecated)"
			}
			fmt.Fprintf(w, "%s\t%s\tL%s\t%s\t%d\n",
				id, c.Phase, strconv.Itoa(int(c.Maturity)),
				strings.Join(c.Tags, ","), len(c.Deployments))
		}
		return w.Flush()
	},
}

var registrySuggestCmd = &cobra.Command{
	Use:   "suggest <capability-id>",
	Short: "Suggest maturity improvements for a capability",
	Args:  cobra.ExactArgs(1),
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

		suggestions, err := reg.SuggestImprovements(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", s)
		}
		return nil
	},
}
