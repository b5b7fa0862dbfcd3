package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/model"
)

func foundationSpec() *model.TemplateSpec {
	return &model.TemplateSpec{
		Metadata: model.SpecMetadata{
			Name:        "payment-service",
			Description: "Handles payment capture and refunds",
			Tags:        []string{"template-generation", "catalog-registration"},
		},
		Type:      "backend-service",
		Phase:     model.PhaseFoundation,
		PhaseName: "FOUNDATION",
		Parameters: map[string]model.Parameter{
			"name":  {Type: "string", Description: "Component name", Default: "payment-service", Required: true},
			"owner": {Type: "string", Description: "Owning team", Default: "payments"},
		},
	}
}

func governanceSpec() *model.TemplateSpec {
	return &model.TemplateSpec{
		Metadata: model.SpecMetadata{
			Name:        "records-service",
			Description: "Regulated records service",
			Tags: []string{
				"template-generation", "catalog-registration",
				"automated-deployment", "ci-cd-integration", "golden-path-pipeline",
				"monitoring-integration", "incident-automation",
				"policy-enforcement", "audit-trail", "compliance-reporting",
			},
		},
		Type:      "policy-enforced-service",
		Phase:     model.PhaseGovernance,
		PhaseName: "GOVERNANCE",
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "foundation-backend-service-payment-service", ArtifactName(foundationSpec()))
	assert.Equal(t, "governance-policy-enforced-service-records-service", ArtifactName(governanceSpec()))
}

func TestGenerate(t *testing.T) {
	t.Run("foundation artifact", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)

		assert.Equal(t, "foundation-backend-service-payment-service", a.Metadata.Name)
		assert.Equal(t, model.MaturityL1, a.Metadata.Maturity)
		assert.Equal(t, "payments", a.Metadata.Owner)

		// Steps: bootstrap, then closing; backend-service inserts none and
		// the spec declares none.
		require.Len(t, a.Steps, 3)
		assert.Equal(t, "fetch:template", a.Steps[0].Action)
		assert.Equal(t, "catalog:register", a.Steps[1].Action)
		assert.Equal(t, "publish:github", a.Steps[2].Action)

		assert.NotEmpty(t, a.Skeleton)
		assert.Contains(t, a.Config, "kind: Template")
		assert.Contains(t, a.Config, "name: foundation-backend-service-payment-service")
		assert.NotEmpty(t, a.Docs.Readme)
		assert.NotEmpty(t, a.Docs.Usage)
	})

	t.Run("governance artifact carries cumulative rules and type steps", func(t *testing.T) {
		a, err := Generate(governanceSpec())
		require.NoError(t, err)

		actions := make([]string, len(a.Steps))
		for i, s := range a.Steps {
			actions[i] = s.Action
		}
		assert.Equal(t, []string{
			"fetch:template", "catalog:register",
			"validate:policy", "audit:configure", "compliance:validate",
			"publish:github",
		}, actions)

		// Foundation and standardization block rules carry forward.
		assert.True(t, hasRule(a.Validation.Security, "No hardcoded credentials in generated files"))
		assert.True(t, hasRule(a.Validation.Security, "Dependency scanning enabled in the pipeline"))
		assert.True(t, hasRule(a.Validation.Compliance, "Compliance validation passes before deploy"))
		assert.Contains(t, a.Metadata.Dependencies, "policy-engine")
		assert.Contains(t, a.Metadata.Dependencies, "make")
	})

	t.Run("deterministic output", func(t *testing.T) {
		first, err := Generate(foundationSpec())
		require.NoError(t, err)
		second, err := Generate(foundationSpec())
		require.NoError(t, err)

		assert.Equal(t, first.Config, second.Config, "regeneration must be byte-identical")
		assert.Equal(t, first.Skeleton, second.Skeleton)
		assert.Equal(t, first.Docs, second.Docs)
	})

	t.Run("unsupported type for phase", func(t *testing.T) {
		s := foundationSpec()
		s.Type = "composite-service"

		_, err := Generate(s)
		var unsupported *model.UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, model.PhaseFoundation, unsupported.Phase)
		assert.Equal(t, "composite-service", unsupported.Type)
		assert.Equal(t,
			`artifact type "composite-service" is not supported in phase FOUNDATION`,
			err.Error())
	})

	t.Run("spec rules are additive", func(t *testing.T) {
		s := foundationSpec()
		s.Validation.Security = append(s.Validation.Security, model.Rule{
			Type: "tls", Text: "All endpoints require TLS", Enforcement: model.EnforceBlock,
		})

		a, err := Generate(s)
		require.NoError(t, err)
		assert.True(t, hasRule(a.Validation.Security, "All endpoints require TLS"))
		assert.True(t, hasRule(a.Validation.Security, "No hardcoded credentials in generated files"))
	})

	t.Run("downgrading a mandatory block rule fails", func(t *testing.T) {
		s := foundationSpec()
		s.Validation.Security = append(s.Validation.Security, model.Rule{
			Type:        "secrets",
			Text:        "No hardcoded credentials in generated files",
			Enforcement: model.EnforceWarn,
		})

		_, err := Generate(s)
		var failure *model.ValidationFailureError
		require.ErrorAs(t, err, &failure)
		require.Len(t, failure.Rules, 1)
		assert.Equal(t, "No hardcoded credentials in generated files", failure.Rules[0].Text)
	})

	t.Run("spec steps slot between type and closing steps", func(t *testing.T) {
		s := foundationSpec()
		s.Steps = []model.Step{{ID: "smoke", Name: "Smoke Test", Action: "test:smoke"}}

		a, err := Generate(s)
		require.NoError(t, err)
		require.Len(t, a.Steps, 4)
		assert.Equal(t, "test:smoke", a.Steps[2].Action)
		assert.Equal(t, "publish:github", a.Steps[3].Action)
	})
}

func hasRule(rules []model.Rule, text string) bool {
	for _, r := range rules {
		if r.Text == text {
			return true
		}
	}
	return false
}

func TestMinimal(t *testing.T) {
	a := Minimal(foundationSpec())

	require.Len(t, a.Steps, 3)
	assert.Equal(t, "fetch:template", a.Steps[0].Action)
	assert.Equal(t, "publish:github", a.Steps[2].Action)
	assert.Empty(t, a.Skeleton)
	assert.Equal(t, "foundation-backend-service-payment-service", a.Metadata.Name)
	assert.NotZero(t, a.Validation.BlockCount(), "phase rules still apply to the fallback")
}

func TestRenderSkeleton(t *testing.T) {
	a, err := Generate(foundationSpec())
	require.NoError(t, err)

	paths := make(map[string]string, len(a.Skeleton))
	for _, f := range a.Skeleton {
		paths[f.Path] = f.Content
	}

	require.Contains(t, paths, "catalog-info.yaml")
	assert.Contains(t, paths["catalog-info.yaml"], "name: payment-service")
	assert.Contains(t, paths["catalog-info.yaml"], "pforge.dev/artifact: foundation-backend-service-payment-service")
	assert.Contains(t, paths["catalog-info.yaml"], "owner: payments")

	require.Contains(t, paths, "config/defaults.yaml")
	// Parameters render in sorted name order.
	nameIdx := strings.Index(paths["config/defaults.yaml"], "name:")
	ownerIdx := strings.Index(paths["config/defaults.yaml"], "owner:")
	require.GreaterOrEqual(t, nameIdx, 0)
	require.Greater(t, ownerIdx, nameIdx)

	require.Contains(t, paths, "Dockerfile")
	require.Contains(t, paths, "src/README.md")
}

func TestValidateArtifact(t *testing.T) {
	t.Run("valid artifact", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)

		v := ValidateArtifact(a)
		assert.True(t, v.IsValid)
		assert.Empty(t, v.Warnings)
	})

	t.Run("missing tags warn", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)
		a.Metadata.Tags = nil

		v := ValidateArtifact(a)
		assert.True(t, v.IsValid)
		assert.Len(t, v.Warnings, 2)
	})

	t.Run("stale type errors", func(t *testing.T) {
		a, err := Generate(foundationSpec())
		require.NoError(t, err)
		a.Metadata.Type = "retired-type"

		v := ValidateArtifact(a)
		assert.False(t, v.IsValid)
		require.Len(t, v.Errors, 1)
	})
}

func TestBuildPreview(t *testing.T) {
	a, err := Generate(governanceSpec())
	require.NoError(t, err)

	p := BuildPreview(a)
	assert.Equal(t, a.Config, p.RenderedYAML)
	assert.Len(t, p.FileTree, len(a.Skeleton))
	assert.Contains(t, p.ValidationSummary, "blocking")
}
