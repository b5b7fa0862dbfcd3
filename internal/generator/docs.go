package generator

import (
	"fmt"
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// usageSections holds the phase/type-specific usage text appended to the
// structural README skeleton.
var usageByPhase = map[model.Phase]string{
	model.PhaseFoundation: "This template generates a basic skeleton and registers it in the catalog.\n" +
		"Review the generated files, then publish the repository.",
	model.PhaseStandardization: "This template wires the component into the golden path pipeline.\n" +
		"Builds and deployments run through the standardized pipeline after publish.",
	model.PhaseOperationalization: "This template configures monitoring and alert defaults.\n" +
		"Review ops/runbook.md and the alert thresholds before first deploy.",
	model.PhaseGovernance: "This template enforces security and compliance policies.\n" +
		"Policy and audit configuration under policy/ must pass validation before merge.",
	model.PhaseIntentDriven: "This template processes declared intent and adapts its configuration.\n" +
		"AI-generated changes remain subject to human review.",
}

// renderDocs builds the documentation bundle: a structural README skeleton
// concatenated with phase/type-specific usage sections.
func renderDocs(s *model.TemplateSpec, meta model.ArtifactMetadata, steps []model.Step) model.Documentation {
	var readme strings.Builder
	fmt.Fprintf(&readme, "# %s\n\n", meta.Name)
	fmt.Fprintf(&readme, "%s\n\n", s.Metadata.Description)
	fmt.Fprintf(&readme, "- Type: `%s`\n", meta.Type)
	fmt.Fprintf(&readme, "- Phase: `%s` (maturity %s)\n", meta.PhaseName, meta.Maturity)
	if meta.Owner != "" {
		fmt.Fprintf(&readme, "- Owner: `%s`\n", meta.Owner)
	}
	if len(meta.Dependencies) > 0 {
		fmt.Fprintf(&readme, "- Dependencies: %s\n", strings.Join(meta.Dependencies, ", "))
	}
	readme.WriteString("\n## Steps\n\n")
	for _, step := range steps {
		fmt.Fprintf(&readme, "1. **%s** (`%s`)\n", step.Name, step.Action)
	}

	var usage strings.Builder
	fmt.Fprintf(&usage, "## Usage\n\n")
	usage.WriteString(usageByPhase[meta.Phase])
	usage.WriteString("\n")
	if features := phase.Features(meta.Phase); len(features) > 0 {
		fmt.Fprintf(&usage, "\nEnabled features: %s\n", strings.Join(features, ", "))
	}

	return model.Documentation{
		Readme: readme.String(),
		Usage:  usage.String(),
	}
}
