package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/model"
)

// fakeCollaborators records calls and injects failures by transition name.
type fakeCollaborators struct {
	calls    []string
	failOn   map[string]error
	failUndo map[string]error
}

func newFakes() *fakeCollaborators {
	return &fakeCollaborators{
		failOn:   map[string]error{},
		failUndo: map[string]error{},
	}
}

func (f *fakeCollaborators) call(name string) error {
	f.calls = append(f.calls, name)
	return f.failOn[name]
}

func (f *fakeCollaborators) undo(name string) error {
	f.calls = append(f.calls, name)
	return f.failUndo[name]
}

func (f *fakeCollaborators) CreateRepository(_ context.Context, name string) (model.Repository, error) {
	return model.Repository{ID: name, URL: "fake://" + name, Branch: "main"}, f.call("create")
}
func (f *fakeCollaborators) Commit(_ context.Context, _ model.Repository, _ []model.SkeletonFile) (string, error) {
	return "commit-1", f.call("commit")
}
func (f *fakeCollaborators) OpenPullRequest(_ context.Context, _ model.Repository, _ string) (model.PullRequest, error) {
	return model.PullRequest{ID: "pr-1"}, f.call("open-pr")
}
func (f *fakeCollaborators) Merge(_ context.Context, _ model.Repository, _ model.PullRequest) (model.MergeResult, error) {
	return model.MergeResult{Merged: true, CommitID: "commit-1"}, f.call("merge")
}
func (f *fakeCollaborators) DeleteRepository(_ context.Context, _ model.Repository) error {
	return f.undo("delete-repo")
}
func (f *fakeCollaborators) RevertCommit(_ context.Context, _ model.Repository, _ string) error {
	return f.undo("revert-commit")
}
func (f *fakeCollaborators) ClosePullRequest(_ context.Context, _ model.Repository, _ model.PullRequest) error {
	return f.undo("close-pr")
}
func (f *fakeCollaborators) RevertMerge(_ context.Context, _ model.Repository, _ model.PullRequest) error {
	return f.undo("revert-merge")
}
func (f *fakeCollaborators) Trigger(_ context.Context, _ model.Repository, _ string) (string, error) {
	return "run-1", f.call("trigger")
}
func (f *fakeCollaborators) Cancel(_ context.Context, _ string) error {
	return f.undo("cancel-run")
}
func (f *fakeCollaborators) Deploy(_ context.Context, _ *model.GeneratedArtifact) (model.DeploymentResult, error) {
	if err := f.call("deploy"); err != nil {
		return model.DeploymentResult{}, err
	}
	return model.DeploymentResult{Success: true, URL: "https://portal/dep"}, nil
}
func (f *fakeCollaborators) Undeploy(_ context.Context, _ string) error {
	return f.undo("undeploy")
}
func (f *fakeCollaborators) Register(_ context.Context, _ model.Capability, _ model.DeploymentRecord) error {
	return f.call("register")
}
func (f *fakeCollaborators) Withdraw(_ context.Context, _ string) error {
	return f.undo("withdraw")
}

func (f *fakeCollaborators) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func testArtifact() *model.GeneratedArtifact {
	return &model.GeneratedArtifact{
		Config: "kind: Template\n",
		Metadata: model.ArtifactMetadata{
			Name:     "foundation-backend-service-payments",
			Maturity: model.MaturityL1,
			Phase:    model.PhaseFoundation,
		},
	}
}

func testConfig(rollback bool) Config {
	return Config{
		Policy: Policy{
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
			Strategy:    StrategyFixed,
			CallTimeout: time.Second,
		},
		EnableRollback: rollback,
	}
}

func testWorkflow(f *fakeCollaborators, rollback bool) *Workflow {
	return New(f, f, f, f, testConfig(rollback), nil)
}

func TestRunHappyPath(t *testing.T) {
	f := newFakes()
	wf := testWorkflow(f, true)

	res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.NoError(t, err)

	assert.Equal(t, StateRegistryUpdated, res.State)
	assert.True(t, res.State.Terminal())
	assert.Equal(t, []string{
		"create", "commit", "trigger", "open-pr", "merge", "deploy", "register",
	}, f.calls)

	assert.Equal(t, "commit-1", res.Record.CommitID)
	assert.Equal(t, "run-1", res.Record.PipelineRun)
	assert.True(t, res.Record.Merge.Merged)
	assert.True(t, res.Record.Deployment.Success)
	assert.False(t, res.Record.Timestamp.IsZero())
}

// Failing each transition in turn must compensate exactly the states
// already passed, in reverse order.
func TestRollbackCompensatesEachPassedStateOnce(t *testing.T) {
	runs := []string{"create", "commit", "trigger", "open-pr", "merge", "deploy", "register"}
	undoFor := map[string]string{
		"create":   "delete-repo",
		"commit":   "revert-commit",
		"trigger":  "cancel-run",
		"open-pr":  "close-pr",
		"merge":    "revert-merge",
		"deploy":   "undeploy",
		"register": "withdraw",
	}

	for i, failAt := range runs {
		t.Run(fmt.Sprintf("fail at %s", failAt), func(t *testing.T) {
			f := newFakes()
			f.failOn[failAt] = &model.ExternalCallError{
				Call: failAt, Transient: false, Err: errors.New("boom"),
			}
			wf := testWorkflow(f, true)

			res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
			require.Error(t, err)
			assert.Equal(t, StateRolledBack, res.State)
			assert.True(t, res.State.Terminal())
			assert.Empty(t, res.CompensationErrors)

			// Exactly one compensation per passed state, none for the failed
			// transition itself.
			for _, passed := range runs[:i] {
				assert.Equal(t, 1, f.count(undoFor[passed]),
					"expected one compensation for %s", passed)
			}
			assert.Equal(t, 0, f.count(undoFor[failAt]))

			// Reverse order: the last passed state is compensated first.
			if i > 0 {
				firstUndo := f.calls[len(f.calls)-i]
				assert.Equal(t, undoFor[runs[i-1]], firstUndo)
				lastUndo := f.calls[len(f.calls)-1]
				assert.Equal(t, undoFor[runs[0]], lastUndo)
			}
		})
	}
}

func TestRunFailureWithoutRollback(t *testing.T) {
	f := newFakes()
	f.failOn["merge"] = &model.ExternalCallError{Call: "merge", Transient: false, Err: errors.New("boom")}
	wf := testWorkflow(f, false)

	res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.State.Terminal())
	assert.Equal(t, 0, f.count("delete-repo"), "rollback disabled: no compensation runs")

	// The record still shows how far the run got.
	assert.Equal(t, "commit-1", res.Record.CommitID)
	assert.Equal(t, "pr-1", res.Record.PullRequest.ID)
}

func TestTransientFailuresRetry(t *testing.T) {
	f := newFakes()
	attempts := 0
	ci := &retryFakes{fakeCollaborators: f, failTwice: &attempts}
	wf := New(f, ci, f, f, testConfig(true), nil)

	res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.NoError(t, err)
	assert.Equal(t, StateRegistryUpdated, res.State)
	assert.Equal(t, 3, attempts, "two transient failures plus the success")
}

// retryFakes overrides Trigger to fail transiently a fixed number of
// times.
type retryFakes struct {
	*fakeCollaborators
	failTwice *int
}

func (r *retryFakes) Trigger(ctx context.Context, repo model.Repository, commitID string) (string, error) {
	*r.failTwice++
	if *r.failTwice <= 2 {
		return "", &model.ExternalCallError{Call: "trigger", Transient: true, Err: errors.New("flaky")}
	}
	return r.fakeCollaborators.Trigger(ctx, repo, commitID)
}

func TestNonTransientFailuresDoNotRetry(t *testing.T) {
	f := newFakes()
	f.failOn["deploy"] = &model.ExternalCallError{Call: "deploy", Transient: false, Err: errors.New("rejected")}
	wf := testWorkflow(f, true)

	_, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.Error(t, err)
	assert.Equal(t, 1, f.count("deploy"), "permanent failures are not retried")
}

func TestDeploymentRejectionIsPermanent(t *testing.T) {
	f := newFakes()
	wf := New(f, f, &rejectingDeployer{f}, f, testConfig(true), nil)

	res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.Error(t, err)
	assert.Equal(t, StateRolledBack, res.State)
	assert.Equal(t, 1, f.count("deploy"), "a rejection is a decision, not an outage")

	var callErr *model.ExternalCallError
	require.ErrorAs(t, err, &callErr)
	assert.False(t, callErr.Transient)
}

type rejectingDeployer struct {
	*fakeCollaborators
}

func (r *rejectingDeployer) Deploy(_ context.Context, _ *model.GeneratedArtifact) (model.DeploymentResult, error) {
	r.call("deploy")
	return model.DeploymentResult{Success: false, Diagnostics: "quota exceeded"}, nil
}

func TestCancellationAtStateBoundary(t *testing.T) {
	f := newFakes()
	wf := testWorkflow(f, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := wf.Run(ctx, testArtifact(), model.Capability{ID: "payments"})
	require.Error(t, err)
	assert.Equal(t, StateRolledBack, res.State)
	assert.Equal(t, 0, f.count("create"), "no transition runs after cancellation")
}

func TestCompensationIsBestEffort(t *testing.T) {
	f := newFakes()
	f.failOn["deploy"] = &model.ExternalCallError{Call: "deploy", Transient: false, Err: errors.New("boom")}
	f.failUndo["revert-commit"] = errors.New("revert failed")
	wf := testWorkflow(f, true)

	res, err := wf.Run(context.Background(), testArtifact(), model.Capability{ID: "payments"})
	require.Error(t, err)
	assert.Equal(t, StateRolledBack, res.State)

	// The failed compensation is recorded, the earlier one still ran.
	require.Len(t, res.CompensationErrors, 1)
	assert.Contains(t, res.CompensationErrors[0], "apply-commit")
	assert.Equal(t, 1, f.count("delete-repo"))
}

func TestStateOrderingAndTerminality(t *testing.T) {
	ordered := []State{
		StateCreated, StateRepositoryProvisioned, StateCommitApplied,
		StatePipelineTriggered, StatePullRequestOpened, StateMerged,
		StateDeployed, StateRegistryUpdated,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, int(ordered[i]), int(ordered[i-1]))
	}
	assert.True(t, StateRegistryUpdated.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateRolledBack.Terminal())
	assert.False(t, StateMerged.Terminal())
}
