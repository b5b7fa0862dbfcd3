package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pforge-labs/pforge/internal/model"
)

// Config tunes a workflow run.
type Config struct {
	Policy         Policy
	EnableRollback bool
}

// Workflow sequences one artifact from creation to registry update.
type Workflow struct {
	vcs      VCS
	ci       CI
	deployer Deployer
	sink     RegistrySink
	cfg      Config
	log      *zap.Logger
}

// Result is the outcome of a run. Record is populated progressively, so a
// failed run still shows how far it got.
type Result struct {
	State  State
	Record model.DeploymentRecord
	// CompensationErrors lists rollback steps that failed; compensation is
	// best-effort and never aborts on partial failure.
	CompensationErrors []string
}

// New assembles a workflow over the injected collaborators. A nil logger
// disables logging.
func New(vcs VCS, ci CI, deployer Deployer, sink RegistrySink, cfg Config, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Policy.MaxAttempts <= 0 {
		cfg.Policy = DefaultPolicy()
	}
	return &Workflow{vcs: vcs, ci: ci, deployer: deployer, sink: sink, cfg: cfg, log: log}
}

// compensation undoes one passed state during rollback.
type compensation struct {
	state State
	name  string
	fn    func(context.Context) error
}

// Run drives the artifact through the full state sequence and returns the
// deployment record. On failure the result's state is Failed, or
// RolledBack when rollback is enabled, and the error names the failed
// transition. Cancellation is honored only at state boundaries and then
// follows the same rollback path as a hard failure.
func (w *Workflow) Run(ctx context.Context, artifact *model.GeneratedArtifact, cap model.Capability) (*Result, error) {
	res := &Result{State: StateCreated}
	var comps []compensation

	fail := func(transition string, err error) (*Result, error) {
		w.log.Warn("workflow transition failed",
			zap.String("transition", transition),
			zap.Stringer("state", res.State),
			zap.Error(err))
		res.State = StateFailed
		if w.cfg.EnableRollback {
			res.CompensationErrors = w.rollback(ctx, comps)
			res.State = StateRolledBack
		}
		return res, fmt.Errorf("transition %s: %w", transition, err)
	}

	type transition struct {
		name string
		next State
		run  func(context.Context) error
		undo func(context.Context) error
	}

	var repo model.Repository
	var commitID, runID string
	var pr model.PullRequest

	transitions := []transition{
		{
			name: "create-repository",
			next: StateRepositoryProvisioned,
			run: func(ctx context.Context) error {
				var err error
				repo, err = w.vcs.CreateRepository(ctx, artifact.Metadata.Name)
				if err == nil {
					res.Record.Repository = repo
				}
				return err
			},
			undo: func(ctx context.Context) error { return w.vcs.DeleteRepository(ctx, repo) },
		},
		{
			name: "apply-commit",
			next: StateCommitApplied,
			run: func(ctx context.Context) error {
				var err error
				commitID, err = w.vcs.Commit(ctx, repo, commitFiles(artifact))
				if err == nil {
					res.Record.CommitID = commitID
				}
				return err
			},
			undo: func(ctx context.Context) error { return w.vcs.RevertCommit(ctx, repo, commitID) },
		},
		{
			name: "trigger-pipeline",
			next: StatePipelineTriggered,
			run: func(ctx context.Context) error {
				var err error
				runID, err = w.ci.Trigger(ctx, repo, commitID)
				if err == nil {
					res.Record.PipelineRun = runID
				}
				return err
			},
			undo: func(ctx context.Context) error { return w.ci.Cancel(ctx, runID) },
		},
		{
			name: "open-pull-request",
			next: StatePullRequestOpened,
			run: func(ctx context.Context) error {
				var err error
				pr, err = w.vcs.OpenPullRequest(ctx, repo, commitID)
				if err == nil {
					res.Record.PullRequest = pr
				}
				return err
			},
			undo: func(ctx context.Context) error { return w.vcs.ClosePullRequest(ctx, repo, pr) },
		},
		{
			name: "merge",
			next: StateMerged,
			run: func(ctx context.Context) error {
				merge, err := w.vcs.Merge(ctx, repo, pr)
				if err == nil {
					res.Record.Merge = merge
				}
				return err
			},
			undo: func(ctx context.Context) error { return w.vcs.RevertMerge(ctx, repo, pr) },
		},
		{
			name: "deploy",
			next: StateDeployed,
			run: func(ctx context.Context) error {
				dep, err := w.deployer.Deploy(ctx, artifact)
				if err != nil {
					return err
				}
				if !dep.Success {
					// Deployment rejections are decisions, not outages; retrying
					// the same artifact cannot change them.
					return &model.ExternalCallError{
						Call:      "deploy",
						Transient: false,
						Err:       fmt.Errorf("deployment rejected: %s", dep.Diagnostics),
					}
				}
				res.Record.Deployment = dep
				return nil
			},
			undo: func(ctx context.Context) error { return w.deployer.Undeploy(ctx, artifact.Metadata.Name) },
		},
		{
			name: "update-registry",
			next: StateRegistryUpdated,
			run: func(ctx context.Context) error {
				res.Record.Timestamp = time.Now().UTC()
				return w.sink.Register(ctx, cap, res.Record)
			},
			undo: func(ctx context.Context) error { return w.sink.Withdraw(ctx, cap.ID) },
		},
	}

	for _, t := range transitions {
		// Cancellation is permitted only at state boundaries, never
		// mid-transition.
		if err := ctx.Err(); err != nil {
			return fail(t.name, err)
		}
		if err := w.cfg.Policy.call(ctx, t.run); err != nil {
			return fail(t.name, err)
		}
		res.State = t.next
		comps = append(comps, compensation{state: t.next, name: t.name, fn: t.undo})
		w.log.Info("workflow transition",
			zap.String("transition", t.name),
			zap.Stringer("state", t.next))
	}

	return res, nil
}

// rollback invokes compensating actions for every state already passed,
// in reverse order. Best-effort: partial failures are logged and
// collected, never thrown — the priority is not leaving orphaned
// resources.
func (w *Workflow) rollback(ctx context.Context, comps []compensation) []string {
	// Compensation must run even when the parent context is the reason the
	// workflow failed.
	ctx = context.WithoutCancel(ctx)

	var failures []string
	for i := len(comps) - 1; i >= 0; i-- {
		c := comps[i]
		callCtx := ctx
		cancel := func() {}
		if w.cfg.Policy.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, w.cfg.Policy.CallTimeout)
		}
		err := c.fn(callCtx)
		cancel()
		if err != nil {
			w.log.Warn("compensation failed",
				zap.String("transition", c.name),
				zap.Stringer("state", c.state),
				zap.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", c.name, err))
			continue
		}
		w.log.Info("compensated", zap.String("transition", c.name))
	}
	return failures
}

// commitFiles flattens the artifact bundle into the repository layout:
// the rendered template configuration, the skeleton tree, and the docs.
func commitFiles(a *model.GeneratedArtifact) []model.SkeletonFile {
	files := []model.SkeletonFile{
		{Path: "template.yaml", Content: a.Config},
	}
	files = append(files, a.Skeleton...)
	files = append(files,
		model.SkeletonFile{Path: "README.md", Content: a.Docs.Readme},
		model.SkeletonFile{Path: "docs/USAGE.md", Content: a.Docs.Usage},
	)
	return files
}
