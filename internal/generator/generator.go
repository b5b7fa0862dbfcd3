package generator

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// ArtifactName returns the deterministic artifact name for a spec:
// "<phase>-<type>-<name>". Repeated generation from the same spec is
// idempotent and diff-able because this name never varies.
func ArtifactName(s *model.TemplateSpec) string {
	return fmt.Sprintf("%s-%s-%s", s.Phase.Slug(), s.Type, s.Metadata.Name)
}

// Generate produces the artifact bundle for a spec. It fails with
// *model.UnsupportedTypeError when the spec's type is outside its phase's
// supported set, and with *model.ValidationFailureError when the spec
// attempts to downgrade a phase-mandated block rule.
func Generate(s *model.TemplateSpec) (*model.GeneratedArtifact, error) {
	if !phase.IsTypeSupported(s.Phase, s.Type) {
		return nil, &model.UnsupportedTypeError{Phase: s.Phase, Type: s.Type}
	}

	rules, err := mergeRules(phase.Rules(s.Phase), s.Validation)
	if err != nil {
		return nil, err
	}

	steps := synthesizeSteps(s)

	meta := model.ArtifactMetadata{
		Name:         ArtifactName(s),
		Owner:        ownerOf(s),
		Maturity:     s.Phase.Maturity(),
		Phase:        s.Phase,
		PhaseName:    s.Phase.String(),
		Type:         s.Type,
		Tags:         append([]string{}, s.Metadata.Tags...),
		Dependencies: phase.Dependencies(s.Phase),
	}

	config, err := renderConfig(s, meta, steps, rules)
	if err != nil {
		return nil, fmt.Errorf("rendering configuration: %w", err)
	}

	skeleton, err := renderSkeleton(s, meta)
	if err != nil {
		return nil, fmt.Errorf("rendering skeleton: %w", err)
	}

	return &model.GeneratedArtifact{
		Config:     config,
		Skeleton:   skeleton,
		Docs:       renderDocs(s, meta, steps),
		Validation: rules,
		Metadata:   meta,
		Steps:      steps,
	}, nil
}

// Minimal produces the fallback artifact: bootstrap steps only, phase
// rules, no skeleton. Used when full generation fails recoverably; the
// caller surfaces the fallback through a result flag.
func Minimal(s *model.TemplateSpec) *model.GeneratedArtifact {
	steps := append(phase.BootstrapSteps(), phase.ClosingSteps()...)
	meta := model.ArtifactMetadata{
		Name:         ArtifactName(s),
		Owner:        ownerOf(s),
		Maturity:     s.Phase.Maturity(),
		Phase:        s.Phase,
		PhaseName:    s.Phase.String(),
		Type:         s.Type,
		Tags:         append([]string{}, s.Metadata.Tags...),
		Dependencies: phase.Dependencies(s.Phase),
	}
	config, _ := renderConfig(s, meta, steps, phase.Rules(s.Phase))
	return &model.GeneratedArtifact{
		Config:     config,
		Docs:       renderDocs(s, meta, steps),
		Validation: phase.Rules(s.Phase),
		Metadata:   meta,
		Steps:      steps,
	}
}

// synthesizeSteps builds the ordered step list: phase-invariant bootstrap
// steps, then the phase/type-specific inserts, then any spec-declared
// steps, then the closing publish steps.
func synthesizeSteps(s *model.TemplateSpec) []model.Step {
	steps := phase.BootstrapSteps()
	steps = append(steps, phase.StepsForType(s.Phase, s.Type)...)
	steps = append(steps, s.Steps...)
	steps = append(steps, phase.ClosingSteps()...)
	return steps
}

// mergeRules layers spec-level rules on top of the phase's mandatory set.
// Spec rules are additive; a spec rule that restates a phase-mandated
// block rule with warn enforcement is a downgrade attempt and fails with
// ValidationFailureError carrying the offending rules.
func mergeRules(mandatory, extra model.ValidationRules) (model.ValidationRules, error) {
	var offending []model.Rule

	merge := func(base, add []model.Rule) []model.Rule {
		out := append([]model.Rule{}, base...)
		for _, r := range add {
			duplicate := false
			for _, b := range base {
				if b.Type == r.Type && b.Text == r.Text {
					duplicate = true
					if b.Enforcement == model.EnforceBlock && r.Enforcement == model.EnforceWarn {
						offending = append(offending, r)
					}
					break
				}
			}
			if !duplicate {
				out = append(out, r)
			}
		}
		return out
	}

	merged := model.ValidationRules{
		Security:   merge(mandatory.Security, extra.Security),
		Compliance: merge(mandatory.Compliance, extra.Compliance),
		Standards:  merge(mandatory.Standards, extra.Standards),
		Cost:       merge(mandatory.Cost, extra.Cost),
	}
	if len(offending) > 0 {
		return model.ValidationRules{}, &model.ValidationFailureError{Rules: offending}
	}
	return merged, nil
}

// configDoc is the serialized shape of the generated configuration
// document. Field order here is the order in the rendered YAML.
type configDoc struct {
	APIVersion string                     `yaml:"apiVersion"`
	Kind       string                     `yaml:"kind"`
	Metadata   configMeta                 `yaml:"metadata"`
	Parameters map[string]model.Parameter `yaml:"parameters,omitempty"`
	Steps      []model.Step               `yaml:"steps"`
	Output     map[string]string          `yaml:"output,omitempty"`
	Validation model.ValidationRules      `yaml:"validation"`
}

type configMeta struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Owner        string   `yaml:"owner,omitempty"`
	Phase        string   `yaml:"phase"`
	Maturity     string   `yaml:"maturity"`
	Type         string   `yaml:"type"`
	Tags         []string `yaml:"tags,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// renderConfig serializes the configuration document. yaml.Marshal emits
// map keys sorted, so the output is deterministic for a given spec.
func renderConfig(s *model.TemplateSpec, meta model.ArtifactMetadata, steps []model.Step, rules model.ValidationRules) (string, error) {
	doc := configDoc{
		APIVersion: "pforge.dev/v1",
		Kind:       "Template",
		Metadata: configMeta{
			Name:         meta.Name,
			Description:  s.Metadata.Description,
			Owner:        meta.Owner,
			Phase:        meta.PhaseName,
			Maturity:     meta.Maturity.String(),
			Type:         meta.Type,
			Tags:         meta.Tags,
			Dependencies: meta.Dependencies,
		},
		Parameters: s.Parameters,
		Steps:      steps,
		Output:     s.Output,
		Validation: rules,
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ownerOf(s *model.TemplateSpec) string {
	if s.Metadata.Owner != "" {
		return s.Metadata.Owner
	}
	if p, ok := s.Parameters["owner"]; ok && p.Default != "" {
		return p.Default
	}
	return ""
}
