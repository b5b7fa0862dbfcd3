// Package home manages the on-disk layout under the tool's home directory
// (~/.pforge by default, PFORGE_HOME to override): the config file, the
// capability registry database, local Git repositories, and materialized
// deployment bundles. It owns path resolution and the doctor checks that
// keep the layout healthy.
package home

import (
	"path/filepath"

	"github.com/pforge-labs/pforge/internal/config"
)

// Directory and file names under the home directory.
const (
	ReposDir       = "repos"
	DeploymentsDir = "deployments"
	RegistryFile   = "registry.db"

	// CurrentLink is the per-capability symlink inside a deployments
	// directory pointing at the most recent bundle.
	CurrentLink = "current"
)

// Root returns the home directory path.
func Root() string {
	return config.Dir()
}

// RegistryPath returns the capability registry database path. The
// registry.path config key overrides the default location.
func RegistryPath() string {
	if v := config.Get(config.KeyRegistryPath); v != "" {
		return v
	}
	return filepath.Join(Root(), RegistryFile)
}

// ReposRoot returns the directory holding local Git repositories. The
// git.root config key overrides the default location.
func ReposRoot() string {
	if v := config.Get(config.KeyGitRoot); v != "" {
		return v
	}
	return filepath.Join(Root(), ReposDir)
}

// DeploymentsRoot returns the directory holding deployment bundles.
func DeploymentsRoot() string {
	return filepath.Join(Root(), DeploymentsDir)
}

// DeploymentDir returns the bundle directory for one generated artifact.
func DeploymentDir(artifactName string) string {
	return filepath.Join(DeploymentsRoot(), artifactName)
}
