package home

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pforge-labs/pforge/internal/platform"
)

func TestPaths(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PFORGE_HOME", root)

	assert.Equal(t, root, Root())
	assert.Equal(t, filepath.Join(root, "registry.db"), RegistryPath())
	assert.Equal(t, filepath.Join(root, "repos"), ReposRoot())
	assert.Equal(t, filepath.Join(root, "deployments"), DeploymentsRoot())
	assert.Equal(t, filepath.Join(root, "deployments", "foundation-backend-service-x"),
		DeploymentDir("foundation-backend-service-x"))
}

func TestInit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pforge-home")
	t.Setenv("PFORGE_HOME", root)

	var out bytes.Buffer
	require.NoError(t, Init(&out))

	assert.DirExists(t, ReposRoot())
	assert.DirExists(t, DeploymentsRoot())
	assert.Contains(t, out.String(), "created")

	t.Run("idempotent", func(t *testing.T) {
		var again bytes.Buffer
		require.NoError(t, Init(&again))
		assert.NotContains(t, again.String(), "created")
		assert.Contains(t, again.String(), "exists")
	})
}

func TestCheck(t *testing.T) {
	t.Run("missing root without fix only reports", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "absent")
		t.Setenv("PFORGE_HOME", root)

		var out bytes.Buffer
		require.NoError(t, Check(&out, false))
		assert.Contains(t, out.String(), "[MISS]")
		assert.NoDirExists(t, root)
	})

	t.Run("missing root with fix creates the layout", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "absent")
		t.Setenv("PFORGE_HOME", root)

		var out bytes.Buffer
		require.NoError(t, Check(&out, true))
		assert.DirExists(t, ReposRoot())
		assert.DirExists(t, DeploymentsRoot())
	})

	t.Run("healthy layout passes", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("PFORGE_HOME", root)
		require.NoError(t, Init(&bytes.Buffer{}))

		var out bytes.Buffer
		require.NoError(t, Check(&out, false))
		assert.NotContains(t, out.String(), "[WARN]")
		assert.NotContains(t, out.String(), "[FAIL]")
	})

	t.Run("non-git entry under repos is flagged", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("PFORGE_HOME", root)
		require.NoError(t, Init(&bytes.Buffer{}))
		require.NoError(t, os.MkdirAll(filepath.Join(ReposRoot(), "stray"), 0755))

		var out bytes.Buffer
		require.NoError(t, Check(&out, false))
		assert.Contains(t, out.String(), "not a Git repository")
	})

	t.Run("deployment current link is verified", func(t *testing.T) {
		root := t.TempDir()
		t.Setenv("PFORGE_HOME", root)
		require.NoError(t, Init(&bytes.Buffer{}))

		dir := DeploymentDir("foundation-backend-service-x")
		bundle := filepath.Join(dir, "20260301T120000")
		require.NoError(t, os.MkdirAll(bundle, 0755))
		require.NoError(t, platform.CreateSymlink("20260301T120000", filepath.Join(dir, CurrentLink)))

		var out bytes.Buffer
		require.NoError(t, Check(&out, false))
		assert.Contains(t, out.String(), "current -> 20260301T120000")

		t.Run("dangling target is flagged", func(t *testing.T) {
			require.NoError(t, os.RemoveAll(bundle))
			var out bytes.Buffer
			require.NoError(t, Check(&out, false))
			assert.Contains(t, out.String(), "target does not exist")
		})
	})
}
