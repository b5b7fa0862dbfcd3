package inspector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
)

func testRegistry(t *testing.T, caps ...model.Capability) *registry.Registry {
	t.Helper()
	reg := registry.New(registry.NewMemoryStore(), nil)
	for _, c := range caps {
		_, err := reg.Register(context.Background(), c)
		require.NoError(t, err)
	}
	return reg
}

func healthyCapability(deployedAt time.Time) model.Capability {
	return model.Capability{
		ID:          "payment-service",
		DisplayName: "payment-service",
		Maturity:    model.MaturityL1,
		Phase:       model.PhaseFoundation,
		Tags:        []string{"template-generation", "catalog-registration"},
		Templates: []model.TemplateRef{
			{Name: "foundation-backend-service-payment-service", Version: "0.1.0", Type: "backend-service"},
		},
		Deployments: []model.DeploymentRecord{
			{CommitID: "abc123", Timestamp: deployedAt},
		},
	}
}

func TestAssess(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh deployment with matching configuration is healthy", func(t *testing.T) {
		reg := testRegistry(t, healthyCapability(base.Add(-24*time.Hour)))
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusHealthy, reports[0].Status)
		assert.Empty(t, reports[0].Findings)
		assert.Equal(t, base, reports[0].AssessedAt)
	})

	t.Run("capability without deployments is stale", func(t *testing.T) {
		c := healthyCapability(base)
		c.Deployments = nil
		reg := testRegistry(t, c)
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusStale, reports[0].Status)
		assert.Contains(t, reports[0].Findings, "no recorded deployment")
	})

	t.Run("deployment older than the freshness window is stale", func(t *testing.T) {
		reg := testRegistry(t, healthyCapability(base.Add(-31*24*time.Hour)))
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusStale, reports[0].Status)
		require.Len(t, reports[0].Findings, 1)
		assert.Contains(t, reports[0].Findings[0], "744h")
	})

	t.Run("custom freshness window", func(t *testing.T) {
		reg := testRegistry(t, healthyCapability(base.Add(-2*time.Hour)))
		insp := New(reg, time.Hour, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		assert.Equal(t, StatusStale, reports[0].Status)
	})

	t.Run("unsupported template type is drifting", func(t *testing.T) {
		c := healthyCapability(base)
		c.Templates[0].Type = "composite-service" // not available at Foundation
		reg := testRegistry(t, c)
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusDrifting, reports[0].Status)
		require.Len(t, reports[0].Findings, 1)
		assert.Contains(t, reports[0].Findings[0], `type "composite-service"`)
		assert.Contains(t, reports[0].Findings[0], "FOUNDATION")
	})

	t.Run("missing required capability tags is drifting", func(t *testing.T) {
		c := healthyCapability(base)
		c.Tags = []string{"template-generation"}
		reg := testRegistry(t, c)
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusDrifting, reports[0].Status)
		require.Len(t, reports[0].Findings, 1)
		assert.Contains(t, reports[0].Findings[0], `"catalog-registration"`)
	})

	t.Run("drift takes precedence over staleness", func(t *testing.T) {
		c := healthyCapability(base)
		c.Tags = nil
		c.Deployments = nil
		reg := testRegistry(t, c)
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, StatusDrifting, reports[0].Status)
		for _, f := range reports[0].Findings {
			assert.NotContains(t, f, "deployment")
		}
	})

	t.Run("deprecated capabilities are skipped", func(t *testing.T) {
		c := healthyCapability(base)
		reg := testRegistry(t, c)
		require.NoError(t, reg.Deprecate(ctx, c.ID, "superseded"))
		insp := New(reg, 0, nil)

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("reports follow registration order", func(t *testing.T) {
		first := healthyCapability(base.Add(-time.Hour))
		second := healthyCapability(base.Add(-time.Hour))
		second.ID = "billing-service"
		second.DisplayName = "billing-service"
		reg := testRegistry(t, first, second)
		insp := New(reg, 0, nil)
		insp.now = func() time.Time { return base }

		reports, err := insp.Assess(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "payment-service", reports[0].CapabilityID)
		assert.Equal(t, "billing-service", reports[1].CapabilityID)
	})
}
