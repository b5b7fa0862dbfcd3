package spec

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pforge-labs/pforge/internal/model"
)

// Parse validates raw YAML against the spec schema and decodes it into a
// TemplateSpec. Schema violations are returned as a single error carrying
// every issue, so a hand-written spec file can be fixed in one pass.
func Parse(data []byte) (*model.TemplateSpec, error) {
	result, err := ValidateSchema(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("spec does not match schema: %s", formatIssues(result.Issues))
	}

	var s model.TemplateSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing spec: %w", err)
	}

	p, ok := model.ParsePhase(s.PhaseName)
	if !ok {
		return nil, fmt.Errorf("unknown phase %q", s.PhaseName)
	}
	s.Phase = p
	s.PhaseName = p.String()

	return &s, nil
}

// Load reads and parses a spec YAML file.
func Load(path string) (*model.TemplateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// Render serializes a TemplateSpec back to YAML, so an intent-derived spec
// can be saved, edited, and fed back through the spec path.
func Render(s *model.TemplateSpec) ([]byte, error) {
	out := *s
	out.PhaseName = s.Phase.String()
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("rendering spec: %w", err)
	}
	return data, nil
}

func formatIssues(issues []SchemaIssue) string {
	msg := ""
	for i, issue := range issues {
		if i > 0 {
			msg += "; "
		}
		if issue.Path != "" {
			msg += issue.Path + ": "
		}
		msg += issue.Message
	}
	return msg
}
