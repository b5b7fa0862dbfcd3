// Package gitdir implements the workflow's VCS boundary against local Git
// repositories under a root directory. It is the built-in provider for
// single-machine and test use; a hosted-provider client plugs in behind
// the same interface. Repositories are keyed by artifact name, so retried
// workflows reopen the same repository instead of creating a duplicate.
package gitdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pforge-labs/pforge/internal/model"
)

const defaultBranch = "main"

// Provider is a filesystem-backed VCS provider.
type Provider struct {
	root string

	mu sync.Mutex
	// preMerge remembers the main-branch tip before each merge so
	// RevertMerge can restore it during rollback.
	preMerge map[string]plumbing.Hash
}

// New returns a provider that keeps repositories under root.
func New(root string) *Provider {
	return &Provider{root: root, preMerge: make(map[string]plumbing.Hash)}
}

func (p *Provider) dir(name string) string {
	return filepath.Join(p.root, name)
}

func callErr(call string, err error) error {
	return &model.ExternalCallError{Call: call, Transient: false, Err: err}
}

// CreateRepository initializes the repository, or reopens it when it
// already exists.
func (p *Provider) CreateRepository(_ context.Context, name string) (model.Repository, error) {
	dir := p.dir(name)

	repo, err := gogit.PlainOpen(dir)
	if err == gogit.ErrRepositoryNotExists {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return model.Repository{}, callErr("create-repository", mkErr)
		}
		repo, err = gogit.PlainInit(dir, false)
	}
	if err != nil {
		return model.Repository{}, callErr("create-repository", err)
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(defaultBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		return model.Repository{}, callErr("create-repository", err)
	}

	return model.Repository{ID: name, URL: dir, Branch: defaultBranch}, nil
}

// Commit writes the files into the worktree and commits them.
func (p *Provider) Commit(_ context.Context, repo model.Repository, files []model.SkeletonFile) (string, error) {
	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return "", callErr("commit", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return "", callErr("commit", err)
	}

	for _, f := range files {
		path := filepath.Join(repo.URL, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", callErr("commit", err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return "", callErr("commit", err)
		}
	}

	if err := wt.AddGlob("."); err != nil {
		return "", callErr("commit", err)
	}
	hash, err := wt.Commit(fmt.Sprintf("Scaffold %s", repo.ID), &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "pforge",
			Email: "pforge@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", callErr("commit", err)
	}
	return hash.String(), nil
}

// OpenPullRequest models a review request as a branch at the commit.
func (p *Provider) OpenPullRequest(_ context.Context, repo model.Repository, commitID string) (model.PullRequest, error) {
	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return model.PullRequest{}, callErr("open-pull-request", err)
	}

	branch := "review/" + shortHash(commitID)
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), plumbing.NewHash(commitID))
	if err := r.Storer.SetReference(ref); err != nil {
		return model.PullRequest{}, callErr("open-pull-request", err)
	}

	return model.PullRequest{
		ID:  branch,
		URL: repo.URL + "#" + branch,
	}, nil
}

// Merge fast-forwards the default branch to the review branch's commit.
func (p *Provider) Merge(_ context.Context, repo model.Repository, pr model.PullRequest) (model.MergeResult, error) {
	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return model.MergeResult{}, callErr("merge", err)
	}

	reviewRef, err := r.Reference(plumbing.NewBranchReferenceName(pr.ID), true)
	if err != nil {
		return model.MergeResult{}, callErr("merge", err)
	}

	mainName := plumbing.NewBranchReferenceName(repo.Branch)
	if prior, err := r.Reference(mainName, true); err == nil {
		p.mu.Lock()
		p.preMerge[repo.ID] = prior.Hash()
		p.mu.Unlock()
	}

	if err := r.Storer.SetReference(plumbing.NewHashReference(mainName, reviewRef.Hash())); err != nil {
		return model.MergeResult{}, callErr("merge", err)
	}

	return model.MergeResult{Merged: true, CommitID: reviewRef.Hash().String()}, nil
}

// DeleteRepository removes the repository directory.
func (p *Provider) DeleteRepository(_ context.Context, repo model.Repository) error {
	if err := os.RemoveAll(repo.URL); err != nil {
		return callErr("delete-repository", err)
	}
	return nil
}

// RevertCommit hard-resets the worktree to the commit's parent. A root
// commit resets to an empty branch.
func (p *Provider) RevertCommit(_ context.Context, repo model.Repository, commitID string) error {
	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return callErr("revert-commit", err)
	}

	commit, err := r.CommitObject(plumbing.NewHash(commitID))
	if err != nil {
		return callErr("revert-commit", err)
	}

	if commit.NumParents() == 0 {
		head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(repo.Branch))
		if err := r.Storer.SetReference(head); err != nil {
			return callErr("revert-commit", err)
		}
		if err := r.Storer.RemoveReference(plumbing.NewBranchReferenceName(repo.Branch)); err != nil {
			return callErr("revert-commit", err)
		}
		return nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return callErr("revert-commit", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return callErr("revert-commit", err)
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: parent.Hash, Mode: gogit.HardReset}); err != nil {
		return callErr("revert-commit", err)
	}
	return nil
}

// ClosePullRequest deletes the review branch.
func (p *Provider) ClosePullRequest(_ context.Context, repo model.Repository, pr model.PullRequest) error {
	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return callErr("close-pull-request", err)
	}
	if err := r.Storer.RemoveReference(plumbing.NewBranchReferenceName(pr.ID)); err != nil {
		return callErr("close-pull-request", err)
	}
	return nil
}

// RevertMerge restores the default branch to its pre-merge tip.
func (p *Provider) RevertMerge(_ context.Context, repo model.Repository, _ model.PullRequest) error {
	p.mu.Lock()
	prior, ok := p.preMerge[repo.ID]
	p.mu.Unlock()
	if !ok {
		// Merge never happened for this repository; nothing to revert.
		return nil
	}

	r, err := gogit.PlainOpen(repo.URL)
	if err != nil {
		return callErr("revert-merge", err)
	}
	mainName := plumbing.NewBranchReferenceName(repo.Branch)
	if err := r.Storer.SetReference(plumbing.NewHashReference(mainName, prior)); err != nil {
		return callErr("revert-merge", err)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
