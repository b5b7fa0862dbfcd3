package home

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pforge-labs/pforge/internal/platform"
)

// Check validates the home directory layout: the directories exist, the
// registry database is a regular file, every repository under repos/ is a
// Git repository, and every deployment's current link resolves. When fix
// is true, missing directories are created.
func Check(w io.Writer, fix bool) error {
	root := Root()
	fmt.Fprintln(w, "Home directory check:")

	if _, err := os.Stat(root); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", root)
		if fix {
			fmt.Fprintln(w, "  [FIX ] Creating layout...")
			return Init(w)
		}
		fmt.Fprintln(w, "         Run 'pforge doctor --fix' to create")
		return nil
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", root)

	checkDir(w, ReposRoot(), fix)
	checkDir(w, DeploymentsRoot(), fix)
	checkRegistryFile(w, RegistryPath())
	checkRepos(w, ReposRoot())
	checkDeployments(w, DeploymentsRoot())

	return nil
}

func checkDir(w io.Writer, path string, fix bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, 0755); mkErr != nil {
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

func checkRegistryFile(w io.Writer, path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [ OK ] %s not created yet (first registration creates it)\n", path)
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if info.IsDir() {
		fmt.Fprintf(w, "  [WARN] %s is a directory, expected a database file\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

// checkRepos verifies each entry under the repos root carries a .git
// directory; anything else is leftover state the workflow will not reuse.
func checkRepos(w io.Writer, root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return // missing root already reported
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		gitDir := filepath.Join(root, e.Name(), ".git")
		if _, err := os.Stat(gitDir); err != nil {
			fmt.Fprintf(w, "  [WARN] %s is not a Git repository\n", filepath.Join(root, e.Name()))
			continue
		}
		fmt.Fprintf(w, "  [ OK ] repository %s\n", e.Name())
	}
}

// checkDeployments verifies each deployment's current link points at an
// existing bundle.
func checkDeployments(w io.Writer, root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		link := filepath.Join(root, e.Name(), CurrentLink)
		target, err := platform.ReadSymlinkTarget(link)
		if err != nil {
			fmt.Fprintf(w, "  [WARN] %s has no current link\n", filepath.Join(root, e.Name()))
			continue
		}
		resolved := target
		if !filepath.IsAbs(target) {
			resolved = filepath.Join(root, e.Name(), target)
		}
		if _, err := os.Stat(resolved); os.IsNotExist(err) {
			fmt.Fprintf(w, "  [WARN] %s -> %s (target does not exist)\n", link, target)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s -> %s\n", link, target)
	}
}
