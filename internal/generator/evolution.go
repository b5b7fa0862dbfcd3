package generator

import (
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// HighestPhaseMessage is the single recommendation returned for artifacts
// already at the top of the phase ladder.
const HighestPhaseMessage = "Template is already at the highest phase level"

// EvolutionRecommendations lists what the artifact is missing to advance
// to its phase's successor: the successor's required capabilities not
// already present, phrased as actionable recommendations.
func EvolutionRecommendations(a *model.GeneratedArtifact) []string {
	next, ok := phase.NextPhase(a.Metadata.Phase)
	if !ok {
		return []string{HighestPhaseMessage}
	}

	have := make(map[string]bool, len(a.Metadata.Tags))
	for _, t := range a.Metadata.Tags {
		have[t] = true
	}

	var recs []string
	for _, tag := range phase.RequiredCapabilities(next) {
		if !have[tag] {
			recs = append(recs, "Add "+phase.CapabilityDisplay(tag))
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "All capabilities for phase "+next.String()+" are present; regenerate at the next phase")
	}
	return recs
}
