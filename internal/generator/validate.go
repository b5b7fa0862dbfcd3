package generator

import (
	"fmt"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// ValidationResult is the outcome of re-checking a generated artifact.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// ValidateArtifact re-checks an existing artifact against the current
// phase configuration. The type gate guards against stale artifacts after
// a phase config change and is an error; missing required capability tags
// are warnings only, to allow progressive enrichment.
func ValidateArtifact(a *model.GeneratedArtifact) ValidationResult {
	var result ValidationResult

	if !phase.IsTypeSupported(a.Metadata.Phase, a.Metadata.Type) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"artifact type %q is no longer supported in phase %s",
			a.Metadata.Type, a.Metadata.Phase))
	}

	have := make(map[string]bool, len(a.Metadata.Tags))
	for _, t := range a.Metadata.Tags {
		have[t] = true
	}
	for _, required := range phase.RequiredCapabilities(a.Metadata.Phase) {
		if !have[required] {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"missing required capability tag %q for phase %s",
				required, a.Metadata.Phase))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
