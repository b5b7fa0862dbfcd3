// Package integration exercises the full pipeline across package
// boundaries: free text in, a deployed and registered capability out,
// backed by a real local Git repository and SQLite registry store.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/engine"
	"github.com/pforge-labs/pforge/internal/inspector"
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
	"github.com/pforge-labs/pforge/internal/scaffold"
	"github.com/pforge-labs/pforge/internal/store/sqlitekv"
	"github.com/pforge-labs/pforge/internal/vcs/gitdir"
	"github.com/pforge-labs/pforge/internal/workflow"
)

type acceptingCI struct{}

func (acceptingCI) Trigger(_ context.Context, repo model.Repository, commitID string) (string, error) {
	return "run-" + repo.ID, nil
}

func (acceptingCI) Cancel(context.Context, string) error { return nil }

type bundleDeployer struct {
	root string
}

func (d bundleDeployer) Deploy(_ context.Context, a *model.GeneratedArtifact) (model.DeploymentResult, error) {
	res, err := scaffold.WriteVersioned(filepath.Join(d.root, a.Metadata.Name), a, "current")
	if err != nil {
		return model.DeploymentResult{Success: false, Diagnostics: err.Error()}, nil
	}
	return model.DeploymentResult{Success: true, URL: "file://" + res.OutputDir}, nil
}

func (bundleDeployer) Undeploy(context.Context, string) error { return nil }

func TestIntentToRegisteredCapability(t *testing.T) {
	ctx := context.Background()

	store, err := sqlitekv.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := registry.New(store, nil)
	deployRoot := t.TempDir()
	wf := workflow.New(
		gitdir.New(t.TempDir()),
		acceptingCI{},
		bundleDeployer{root: deployRoot},
		engine.NewRegistrySink(reg),
		workflow.Config{EnableRollback: true},
		nil,
	)
	eng := engine.New(reg, wf, nil)

	res, err := eng.GenerateFromIntent(ctx,
		"Create a payment service with user authentication, PostgreSQL database, and monitoring. "+
			"Written in Go. Handles confidential data.",
		engine.Options{Deploy: true, Preview: true, MaturityAssessment: true})
	require.NoError(t, err)

	// The run went all the way through the workflow.
	assert.Equal(t, workflow.StateRegistryUpdated, res.WorkflowState)
	require.NotNil(t, res.Deployment)
	assert.True(t, res.Deployment.Merge.Merged)
	assert.True(t, res.Deployment.Deployment.Success)

	// The deployment bundle landed on disk with a current link.
	bundleDir := filepath.Join(deployRoot, res.Template.Metadata.Name)
	assert.FileExists(t, filepath.Join(bundleDir, "current", "template.yaml"))

	// The capability is queryable and carries the deployment record.
	cap, err := reg.Get(ctx, "payment-service")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseFoundation, cap.Phase)
	require.Len(t, cap.Deployments, 1)
	assert.Equal(t, res.Deployment.CommitID, cap.Deployments[0].CommitID)

	// The inspector sees a healthy, freshly deployed capability.
	reports, err := inspector.New(reg, 0, nil).Assess(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, inspector.StatusHealthy, reports[0].Status)

	t.Run("second generation merges instead of duplicating", func(t *testing.T) {
		res2, err := eng.GenerateFromIntent(ctx,
			"Create a payment service with a golden path pipeline, automated deployment, and CI/CD integration. "+
				"Written in Go. Handles confidential data.",
			engine.Options{Deploy: true})
		require.NoError(t, err)
		assert.Equal(t, workflow.StateRegistryUpdated, res2.WorkflowState)

		merged, err := reg.Get(ctx, "payment-service")
		require.NoError(t, err)
		assert.Equal(t, model.MaturityL2, merged.Maturity, "maturity is monotonic across registrations")
		assert.Len(t, merged.Templates, 2)
		assert.Len(t, merged.Deployments, 2)
	})
}
