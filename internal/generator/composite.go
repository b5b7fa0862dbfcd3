package generator

import (
	"fmt"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// GenerateComposite builds a composite artifact from component specs. Each
// component is generated independently; the composite's step list wraps
// interleaved per-component execute steps in orchestration markers,
// preserving component order. Phases whose configuration does not mark
// composites as supported fail with *model.CompositeNotSupportedError.
func GenerateComposite(p model.Phase, name, description string, components []*model.TemplateSpec) (*model.GeneratedArtifact, error) {
	if !phase.CompositesSupported(p) {
		return nil, &model.CompositeNotSupportedError{Phase: p}
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("composite %q has no components", name)
	}

	generated := make([]*model.GeneratedArtifact, 0, len(components))
	for _, c := range components {
		a, err := Generate(c)
		if err != nil {
			return nil, fmt.Errorf("generating component %q: %w", c.Metadata.Name, err)
		}
		generated = append(generated, a)
	}

	steps := []model.Step{
		{ID: "orchestration-start", Name: "Start Orchestration", Action: "orchestration:start"},
	}
	for i, a := range generated {
		steps = append(steps, model.Step{
			ID:     fmt.Sprintf("execute-%d", i+1),
			Name:   "Execute " + a.Metadata.Name,
			Action: "template:execute",
			Inputs: map[string]string{"template": a.Metadata.Name},
		})
	}
	steps = append(steps, model.Step{
		ID: "orchestration-complete", Name: "Complete Orchestration", Action: "orchestration:complete",
	})

	// Component skeletons nest under their artifact names; validation is
	// the union of component rule sets layered on the composite phase's
	// mandatory rules.
	var skeleton []model.SkeletonFile
	rules := phase.Rules(p)
	tags := phase.RequiredCapabilities(p)
	var deps []string
	seenDep := map[string]bool{}
	for _, a := range generated {
		for _, f := range a.Skeleton {
			skeleton = append(skeleton, model.SkeletonFile{
				Path:    a.Metadata.Name + "/" + f.Path,
				Content: f.Content,
			})
		}
		for _, d := range a.Metadata.Dependencies {
			if !seenDep[d] {
				seenDep[d] = true
				deps = append(deps, d)
			}
		}
	}

	compositeSpec := &model.TemplateSpec{
		Metadata: model.SpecMetadata{Name: name, Description: description, Tags: tags},
		Type:     "composite",
		Phase:    p, PhaseName: p.String(),
	}

	meta := model.ArtifactMetadata{
		Name:         fmt.Sprintf("%s-composite-%s", p.Slug(), name),
		Maturity:     p.Maturity(),
		Phase:        p,
		PhaseName:    p.String(),
		Type:         "composite",
		Tags:         tags,
		Dependencies: deps,
	}

	config, err := renderConfig(compositeSpec, meta, steps, rules)
	if err != nil {
		return nil, fmt.Errorf("rendering composite configuration: %w", err)
	}

	return &model.GeneratedArtifact{
		Config:     config,
		Skeleton:   skeleton,
		Docs:       renderDocs(compositeSpec, meta, steps),
		Validation: rules,
		Metadata:   meta,
		Steps:      steps,
	}, nil
}
