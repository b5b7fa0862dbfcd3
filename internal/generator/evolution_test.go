package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/model"
)

func TestEvolutionRecommendations(t *testing.T) {
	t.Run("foundation artifact is told what standardization needs", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)

		recs := EvolutionRecommendations(a)
		assert.Contains(t, recs, "Add automated deployment")
		assert.Contains(t, recs, "Add CI/CD integration")
		assert.Contains(t, recs, "Add golden path pipeline")
	})

	t.Run("present capabilities are not recommended again", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)
		a.Metadata.Tags = append(a.Metadata.Tags, "automated-deployment")

		recs := EvolutionRecommendations(a)
		assert.NotContains(t, recs, "Add automated deployment")
		assert.Contains(t, recs, "Add CI/CD integration")
	})

	t.Run("everything present suggests regeneration", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)
		a.Metadata.Tags = append(a.Metadata.Tags,
			"automated-deployment", "ci-cd-integration", "golden-path-pipeline")

		recs := EvolutionRecommendations(a)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "STANDARDIZATION")
	})

	t.Run("highest phase", func(t *testing.T) {
		a := &model.GeneratedArtifact{
			Metadata: model.ArtifactMetadata{
				Phase:     model.PhaseIntentDriven,
				PhaseName: "INTENT_DRIVEN",
				Maturity:  model.MaturityL5,
			},
		}
		recs := EvolutionRecommendations(a)
		require.Len(t, recs, 1)
		assert.Equal(t, "Template is already at the highest phase level", recs[0])
	})
}
