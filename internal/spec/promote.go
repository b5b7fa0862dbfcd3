package spec

import (
	"github.com/pforge-labs/pforge/internal/intent"
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// Promote turns a ParsedIntent into a TemplateSpec with phase-appropriate
// defaults filled in. The intent is read-only; promotion never feeds back
// into it.
func Promote(i *model.ParsedIntent) *model.TemplateSpec {
	p := i.Phase

	s := &model.TemplateSpec{
		Metadata: model.SpecMetadata{
			Name:        i.Name,
			Description: i.Description,
			Tags:        phase.RequiredCapabilities(p),
		},
		Type:      intent.InferType(i),
		Phase:     p,
		PhaseName: p.String(),
		Parameters: map[string]model.Parameter{
			"name": {
				Type:        "string",
				Description: "Component name",
				Default:     i.Name,
				Required:    true,
			},
			"description": {
				Type:        "string",
				Description: "Human-readable component description",
				Default:     firstLine(i.Description),
			},
			"owner": {
				Type:        "string",
				Description: "Owning team",
				Default:     "platform-team",
			},
		},
		Output: map[string]string{
			"repository":    "{{ repository.url }}",
			"catalog_entry": "{{ catalog.ref }}",
		},
	}

	// Constraints survive promotion as warn-level standards rules; the
	// phase's own block-rules are merged in at generation time.
	for _, c := range i.Constraints {
		s.Validation.Standards = append(s.Validation.Standards, model.Rule{
			Type:        "constraint",
			Text:        c,
			Enforcement: model.EnforceWarn,
		})
	}

	return s
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
