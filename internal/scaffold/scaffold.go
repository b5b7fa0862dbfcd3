// Package scaffold materializes generated artifacts on disk: the template
// configuration, skeleton files, and documentation laid out the way the
// GitOps workflow commits them. It powers the generate command's --out flag
// and the local deployer's versioned bundle directories.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/platform"
)

// Result holds the outcome of a materialization.
type Result struct {
	OutputDir string
	Files     []string
}

// Bundle flattens an artifact into the files a scaffold directory (or a
// workflow commit) contains, in a fixed order: configuration first, then
// skeleton, then documentation.
func Bundle(a *model.GeneratedArtifact) []model.SkeletonFile {
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

// Write materializes the artifact bundle into dir. A non-empty existing
// directory is refused to prevent accidental overwrites.
func Write(dir string, a *model.GeneratedArtifact) (*Result, error) {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", dir)
	}
	return write(dir, a)
}

// WriteVersioned materializes the artifact under root/<timestamp>/ and
// repoints the current link at the new bundle. Earlier bundles are kept.
func WriteVersioned(root string, a *model.GeneratedArtifact, current string) (*Result, error) {
	version := time.Now().UTC().Format("20060102T150405")
	res, err := write(filepath.Join(root, version), a)
	if err != nil {
		return nil, err
	}
	if err := platform.CreateSymlink(version, filepath.Join(root, current)); err != nil {
		return nil, fmt.Errorf("updating %s link: %w", current, err)
	}
	return res, nil
}

func write(dir string, a *model.GeneratedArtifact) (*Result, error) {
	res := &Result{OutputDir: dir}
	for _, f := range Bundle(a) {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Files = append(res.Files, f.Path)
	}
	return res, nil
}
