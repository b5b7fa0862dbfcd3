package workflow

import (
	"context"

	"github.com/pforge-labs/pforge/internal/model"
)

// VCS is the version-control hosting provider boundary. All calls are
// idempotent keyed by repository or artifact name so a retried workflow
// converges instead of duplicating resources. The compensating operations
// (delete, revert, close) back the rollback path.
type VCS interface {
	CreateRepository(ctx context.Context, name string) (model.Repository, error)
	Commit(ctx context.Context, repo model.Repository, files []model.SkeletonFile) (string, error)
	OpenPullRequest(ctx context.Context, repo model.Repository, commitID string) (model.PullRequest, error)
	Merge(ctx context.Context, repo model.Repository, pr model.PullRequest) (model.MergeResult, error)

	DeleteRepository(ctx context.Context, repo model.Repository) error
	RevertCommit(ctx context.Context, repo model.Repository, commitID string) error
	ClosePullRequest(ctx context.Context, repo model.Repository, pr model.PullRequest) error
	RevertMerge(ctx context.Context, repo model.Repository, pr model.PullRequest) error
}

// CI is the pipeline trigger boundary. Trigger returns once the run is
// accepted; a failing pipeline surfaces as an error from Trigger.
type CI interface {
	Trigger(ctx context.Context, repo model.Repository, commitID string) (string, error)
	Cancel(ctx context.Context, runID string) error
}

// Deployer is the portal deployment API boundary.
type Deployer interface {
	Deploy(ctx context.Context, artifact *model.GeneratedArtifact) (model.DeploymentResult, error)
	Undeploy(ctx context.Context, artifactName string) error
}

// RegistrySink receives the capability registration that closes a
// successful workflow, and withdraws it during rollback.
type RegistrySink interface {
	Register(ctx context.Context, cap model.Capability, rec model.DeploymentRecord) error
	Withdraw(ctx context.Context, id string) error
}
