package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pforge-labs/pforge/internal/config"
	"github.com/pforge-labs/pforge/internal/engine"
	"github.com/pforge-labs/pforge/internal/home"
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
	"github.com/pforge-labs/pforge/internal/scaffold"
	"github.com/pforge-labs/pforge/internal/store/sqlitekv"
	"github.com/pforge-labs/pforge/internal/vcs/gitdir"
	"github.com/pforge-labs/pforge/internal/workflow"
)

// newLogger builds the CLI logger. PFORGE_DEBUG or log.debug in the
// config file switches to the development encoder.
func newLogger() (*zap.Logger, error) {
	if config.GetBool("log.debug") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openRegistry opens the capability registry over the durable SQLite
// store. The returned closer must be called when the command finishes.
func openRegistry(log *zap.Logger) (*registry.Registry, func() error, error) {
	if err := config.EnsureDir(); err != nil {
		return nil, nil, err
	}
	path := home.RegistryPath()
	store, err := sqlitekv.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry store %s: %w", path, err)
	}
	return registry.New(store, log), store.Close, nil
}

// newEngine assembles the generation engine. The workflow is wired only
// when the command may deploy.
func newEngine(reg *registry.Registry, deploy bool, log *zap.Logger) (*engine.Engine, error) {
	var wf *workflow.Workflow
	if deploy {
		gitRoot := home.ReposRoot()
		if err := os.MkdirAll(gitRoot, 0755); err != nil {
			return nil, fmt.Errorf("creating git root %s: %w", gitRoot, err)
		}

		strategy := workflow.StrategyFixed
		if config.Get(config.KeyWorkflowBackoffStrategy) == "exponential" {
			strategy = workflow.StrategyExponential
		}
		cfg := workflow.Config{
			Policy: workflow.Policy{
				MaxAttempts: config.GetInt(config.KeyWorkflowMaxAttempts),
				Backoff:     config.GetDuration(config.KeyWorkflowBackoff),
				Strategy:    strategy,
				CallTimeout: config.GetDuration(config.KeyWorkflowCallTimeout),
			},
			EnableRollback: config.GetBool(config.KeyWorkflowEnableRollback),
		}
		wf = workflow.New(
			gitdir.New(gitRoot),
			localCI{},
			localDeployer{},
			engine.NewRegistrySink(reg),
			cfg,
			log,
		)
	}
	return engine.New(reg, wf, log), nil
}

// localCI accepts pipeline triggers without executing anything. Pipeline
// execution is out of scope; the run id keeps the deployment record
// traceable.
type localCI struct{}

func (localCI) Trigger(ctx context.Context, repo model.Repository, commitID string) (string, error) {
	short := commitID
	if len(short) > 8 {
		short = short[:8]
	}
	return "local-" + repo.ID + "-" + short, nil
}

func (localCI) Cancel(ctx context.Context, runID string) error { return nil }

// localDeployer materializes the artifact bundle as a versioned directory
// under the home deployments tree, standing in for the portal deployment
// API. Each deploy adds a new bundle and repoints the current link.
type localDeployer struct{}

func (localDeployer) Deploy(ctx context.Context, artifact *model.GeneratedArtifact) (model.DeploymentResult, error) {
	dir := home.DeploymentDir(artifact.Metadata.Name)
	res, err := scaffold.WriteVersioned(dir, artifact, home.CurrentLink)
	if err != nil {
		return model.DeploymentResult{Success: false, Diagnostics: err.Error()}, nil
	}
	return model.DeploymentResult{Success: true, URL: "file://" + res.OutputDir}, nil
}

func (localDeployer) Undeploy(ctx context.Context, artifactName string) error {
	return os.RemoveAll(home.DeploymentDir(artifactName))
}
