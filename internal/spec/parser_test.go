package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/intent"
	"github.com/pforge-labs/pforge/internal/model"
)

const validSpec = `metadata:
  name: payment-service
  description: Handles payment capture and refunds
  tags:
    - template-generation
type: backend-service
phase: FOUNDATION
parameters:
  name:
    type: string
    description: Component name
    default: payment-service
    required: true
steps:
  - id: smoke
    name: Smoke Test
    action: test:smoke
validation:
  standards:
    - type: naming
      rule: Names are kebab-case
      enforcement: warn
`

func TestParse(t *testing.T) {
	t.Run("valid spec", func(t *testing.T) {
		s, err := Parse([]byte(validSpec))
		require.NoError(t, err)

		assert.Equal(t, "payment-service", s.Metadata.Name)
		assert.Equal(t, model.PhaseFoundation, s.Phase)
		assert.Equal(t, "FOUNDATION", s.PhaseName)
		assert.Equal(t, "backend-service", s.Type)
		require.Len(t, s.Steps, 1)
		assert.Equal(t, "test:smoke", s.Steps[0].Action)
	})

	t.Run("phase slug is accepted and canonicalized", func(t *testing.T) {
		s, err := Parse([]byte("metadata:\n  name: x1\n  description: d\ntype: backend-service\nphase: foundation\n"))
		require.NoError(t, err)
		assert.Equal(t, model.PhaseFoundation, s.Phase)
		assert.Equal(t, "FOUNDATION", s.PhaseName)
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := Parse([]byte("metadata:\n  name: x1\n  description: d\nphase: FOUNDATION\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema")
	})

	t.Run("bad enforcement value", func(t *testing.T) {
		bad := `metadata:
  name: x1
  description: d
type: backend-service
phase: FOUNDATION
validation:
  security:
    - type: secrets
      rule: no secrets
      enforcement: advisory
`
		_, err := Parse([]byte(bad))
		require.Error(t, err)
	})

	t.Run("unknown top-level key", func(t *testing.T) {
		_, err := Parse([]byte(validSpec + "extra: nope\n"))
		require.Error(t, err)
	})
}

func TestRenderRoundTrip(t *testing.T) {
	s, err := Parse([]byte(validSpec))
	require.NoError(t, err)

	data, err := Render(s)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestPromote(t *testing.T) {
	t.Run("foundation intent", func(t *testing.T) {
		i, err := intent.Parse("Create a payment service with user authentication, PostgreSQL database, and monitoring")
		require.NoError(t, err)

		s := Promote(i)
		assert.Equal(t, "payment-service", s.Metadata.Name)
		assert.Equal(t, "backend-service", s.Type)
		assert.Equal(t, model.PhaseFoundation, s.Phase)
		assert.Equal(t, []string{"template-generation", "catalog-registration"}, s.Metadata.Tags)

		require.Contains(t, s.Parameters, "name")
		assert.Equal(t, "payment-service", s.Parameters["name"].Default)
		assert.True(t, s.Parameters["name"].Required)
		require.Contains(t, s.Parameters, "owner")
	})

	t.Run("constraints become warn-level standards rules", func(t *testing.T) {
		i, err := intent.Parse("Create a records service with archiving and retention. Must be compliant with GDPR.")
		require.NoError(t, err)
		require.NotEmpty(t, i.Constraints)

		s := Promote(i)
		require.Len(t, s.Validation.Standards, len(i.Constraints))
		for _, r := range s.Validation.Standards {
			assert.Equal(t, model.EnforceWarn, r.Enforcement)
			assert.Equal(t, "constraint", r.Type)
		}
	})

	t.Run("promoted spec passes schema validation", func(t *testing.T) {
		i, err := intent.Parse("Create a payment service with authentication and storage")
		require.NoError(t, err)

		data, err := Render(Promote(i))
		require.NoError(t, err)
		_, err = Parse(data)
		require.NoError(t, err)
	})
}
