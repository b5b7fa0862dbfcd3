package gitdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/model"
)

func testFiles() []model.SkeletonFile {
	return []model.SkeletonFile{
		{Path: "template.yaml", Content: "kind: Template\n"},
		{Path: "docs/USAGE.md", Content: "## Usage\n"},
	}
}

func TestProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("create repository", func(t *testing.T) {
		p := New(t.TempDir())

		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		assert.Equal(t, "payments", repo.ID)
		assert.Equal(t, "main", repo.Branch)
		assert.DirExists(t, filepath.Join(repo.URL, ".git"))
	})

	t.Run("create is idempotent", func(t *testing.T) {
		p := New(t.TempDir())

		first, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		second, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("commit writes files", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)

		commitID, err := p.Commit(ctx, repo, testFiles())
		require.NoError(t, err)
		assert.Len(t, commitID, 40, "full git hash expected")
		assert.FileExists(t, filepath.Join(repo.URL, "template.yaml"))
		assert.FileExists(t, filepath.Join(repo.URL, "docs", "USAGE.md"))
	})

	t.Run("pull request and merge", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		commitID, err := p.Commit(ctx, repo, testFiles())
		require.NoError(t, err)

		pr, err := p.OpenPullRequest(ctx, repo, commitID)
		require.NoError(t, err)
		assert.Contains(t, pr.ID, "review/")

		merge, err := p.Merge(ctx, repo, pr)
		require.NoError(t, err)
		assert.True(t, merge.Merged)
		assert.Equal(t, commitID, merge.CommitID)

		r, err := gogit.PlainOpen(repo.URL)
		require.NoError(t, err)
		main, err := r.Reference(plumbing.NewBranchReferenceName("main"), true)
		require.NoError(t, err)
		assert.Equal(t, commitID, main.Hash().String())
	})

	t.Run("close pull request removes the branch", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		commitID, err := p.Commit(ctx, repo, testFiles())
		require.NoError(t, err)
		pr, err := p.OpenPullRequest(ctx, repo, commitID)
		require.NoError(t, err)

		require.NoError(t, p.ClosePullRequest(ctx, repo, pr))

		r, err := gogit.PlainOpen(repo.URL)
		require.NoError(t, err)
		_, err = r.Reference(plumbing.NewBranchReferenceName(pr.ID), true)
		assert.Error(t, err)
	})

	t.Run("revert merge restores the prior tip", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)

		first, err := p.Commit(ctx, repo, testFiles())
		require.NoError(t, err)
		pr1, err := p.OpenPullRequest(ctx, repo, first)
		require.NoError(t, err)
		_, err = p.Merge(ctx, repo, pr1)
		require.NoError(t, err)

		second, err := p.Commit(ctx, repo, []model.SkeletonFile{
			{Path: "extra.txt", Content: "more\n"},
		})
		require.NoError(t, err)
		pr2, err := p.OpenPullRequest(ctx, repo, second)
		require.NoError(t, err)
		_, err = p.Merge(ctx, repo, pr2)
		require.NoError(t, err)

		require.NoError(t, p.RevertMerge(ctx, repo, pr2))

		r, err := gogit.PlainOpen(repo.URL)
		require.NoError(t, err)
		main, err := r.Reference(plumbing.NewBranchReferenceName("main"), true)
		require.NoError(t, err)
		assert.Equal(t, first, main.Hash().String())
	})

	t.Run("revert merge without a recorded merge is a no-op", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)
		assert.NoError(t, p.RevertMerge(ctx, repo, model.PullRequest{ID: "review/none"}))
	})

	t.Run("delete repository", func(t *testing.T) {
		p := New(t.TempDir())
		repo, err := p.CreateRepository(ctx, "payments")
		require.NoError(t, err)

		require.NoError(t, p.DeleteRepository(ctx, repo))
		_, err = os.Stat(repo.URL)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("errors are external call errors", func(t *testing.T) {
		p := New(t.TempDir())
		_, err := p.Commit(ctx, model.Repository{ID: "ghost", URL: filepath.Join(t.TempDir(), "ghost")}, testFiles())
		var callErr *model.ExternalCallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, "commit", callErr.Call)
	})
}
