package generator

import (
	"fmt"
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
)

// Preview is a side-effect-free projection of an artifact for human
// review. Building one triggers no external I/O.
type Preview struct {
	RenderedYAML      string
	FileTree          []string
	ValidationSummary string
}

// BuildPreview projects an artifact into its review form.
func BuildPreview(a *model.GeneratedArtifact) *Preview {
	tree := make([]string, 0, len(a.Skeleton))
	for _, f := range a.Skeleton {
		tree = append(tree, f.Path)
	}

	blocks := a.Validation.BlockCount()
	total := len(a.Validation.Security) + len(a.Validation.Compliance) +
		len(a.Validation.Standards) + len(a.Validation.Cost)
	summary := fmt.Sprintf("%d validation rule(s), %d blocking", total, blocks)
	if blocks > 0 {
		var blocking []string
		for _, list := range [][]model.Rule{
			a.Validation.Security, a.Validation.Compliance,
			a.Validation.Standards, a.Validation.Cost,
		} {
			for _, r := range list {
				if r.Enforcement == model.EnforceBlock {
					blocking = append(blocking, r.Text)
				}
			}
		}
		summary += ": " + strings.Join(blocking, "; ")
	}

	return &Preview{
		RenderedYAML:      a.Config,
		FileTree:          tree,
		ValidationSummary: summary,
	}
}
