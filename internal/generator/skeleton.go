package generator

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/pforge-labs/pforge/internal/model"
)

// skeletonData holds the variables available to skeleton templates.
type skeletonData struct {
	Name        string
	ArtifactID  string
	Description string
	Owner       string
	Type        string
	Phase       string
	Maturity    string
	// Params lists the spec's parameter defaults in sorted name order so
	// loops over them render deterministically.
	Params []paramValue
}

type paramValue struct {
	Name    string
	Value   string
	Comment string
}

// skeletonFile pairs an output path with its template text.
type skeletonFile struct {
	path string
	tmpl string
}

const catalogInfoTmpl = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: {{.Name}}
  description: {{.Description}}
  annotations:
    pforge.dev/artifact: {{.ArtifactID}}
    pforge.dev/phase: {{.Phase}}
spec:
  type: {{.Type}}
  lifecycle: experimental
  owner: {{if .Owner}}{{.Owner}}{{else}}unowned{{end}}
`

const makefileTmpl = `.PHONY: build test

build:
	@echo "build {{.Name}}"

test:
	@echo "test {{.Name}}"
`

const configYAMLTmpl = `# Generated defaults for {{.Name}}. Edit before first deploy.
{{- range .Params}}
{{.Name}}: {{if .Value}}{{.Value}}{{else}}""{{end}}{{if .Comment}} # {{.Comment}}{{end}}
{{- end}}
`

const dockerfileTmpl = `FROM scratch AS placeholder
# Replace with the runtime image for {{.Name}}.
LABEL org.opencontainers.image.title="{{.Name}}"
LABEL org.opencontainers.image.description="{{.Description}}"
`

const gitignoreTmpl = `dist/
*.log
`

// common files appear in every skeleton, in declaration order.
var commonFiles = []skeletonFile{
	{"catalog-info.yaml", catalogInfoTmpl},
	{"config/defaults.yaml", configYAMLTmpl},
	{".gitignore", gitignoreTmpl},
}

// typeFiles extend the skeleton per artifact type.
var typeFiles = map[string][]skeletonFile{
	"backend-service": {
		{"Dockerfile", dockerfileTmpl},
		{"Makefile", makefileTmpl},
		{"src/README.md", "# {{.Name}}\n\nService entrypoint goes here.\n"},
	},
	"frontend-app": {
		{"Makefile", makefileTmpl},
		{"public/index.html", "<!doctype html>\n<title>{{.Name}}</title>\n"},
	},
	"gitops-app": {
		{"deploy/kustomization.yaml", "resources: []\n# Manifests for {{.Name}} are added by manifests:render.\n"},
	},
	"library": {
		{"Makefile", makefileTmpl},
	},
	"documentation": {
		{"docs/index.md", "# {{.Name}}\n\n{{.Description}}\n"},
	},
	"catalog-registration": nil,
	"composite-service": {
		{"Dockerfile", dockerfileTmpl},
		{"Makefile", makefileTmpl},
		{"pipeline/pipeline.yaml", "pipeline: golden-path\ncomponent: {{.Name}}\n"},
	},
	"standardized-pipeline": {
		{"pipeline/pipeline.yaml", "pipeline: golden-path\ncomponent: {{.Name}}\n"},
	},
	"operational-service": {
		{"Dockerfile", dockerfileTmpl},
		{"Makefile", makefileTmpl},
		{"ops/runbook.md", "# Runbook: {{.Name}}\n\nEscalation and recovery notes.\n"},
		{"ops/alerts.yaml", "alerts: []\n# Alert defaults for {{.Name}} at {{.Phase}}.\n"},
	},
	"monitoring-stack": {
		{"ops/dashboards.yaml", "dashboards: []\n# Dashboards for {{.Name}}.\n"},
	},
	"policy-enforced-service": {
		{"Dockerfile", dockerfileTmpl},
		{"Makefile", makefileTmpl},
		{"policy/policies.yaml", "policies: []\n# Admission policies enforced for {{.Name}}.\n"},
		{"policy/audit.yaml", "audit:\n  enabled: true\n  sink: {{.Name}}-audit\n"},
	},
	"compliance-pipeline": {
		{"policy/compliance.yaml", "checks: []\n# Compliance checks for {{.Name}}.\n"},
	},
	"ai-powered-workflow": {
		{"intent/intent.yaml", "intent: {{.Description}}\nprocessor: default\n"},
		{"intent/adaptive.yaml", "adaptive:\n  enabled: true\n  review: human\n"},
	},
	"adaptive-service": {
		{"Dockerfile", dockerfileTmpl},
		{"intent/adaptive.yaml", "adaptive:\n  enabled: true\n  review: human\n"},
	},
}

// renderSkeleton produces the skeleton file tree for the spec, common
// files first, then type-specific files, preserving declaration order.
func renderSkeleton(s *model.TemplateSpec, meta model.ArtifactMetadata) ([]model.SkeletonFile, error) {
	data := skeletonData{
		Name:        s.Metadata.Name,
		ArtifactID:  meta.Name,
		Description: s.Metadata.Description,
		Owner:       meta.Owner,
		Type:        s.Type,
		Phase:       meta.PhaseName,
		Maturity:    meta.Maturity.String(),
		Params:      sortedParams(s.Parameters),
	}

	files := append(append([]skeletonFile{}, commonFiles...), typeFiles[s.Type]...)

	out := make([]model.SkeletonFile, 0, len(files))
	for _, f := range files {
		tmpl, err := template.New(f.path).Parse(f.tmpl)
		if err != nil {
			return nil, fmt.Errorf("parsing skeleton template %s: %w", f.path, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering skeleton file %s: %w", f.path, err)
		}
		out = append(out, model.SkeletonFile{Path: f.path, Content: buf.String()})
	}
	return out, nil
}

func sortedParams(params map[string]model.Parameter) []paramValue {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]paramValue, 0, len(names))
	for _, name := range names {
		out = append(out, paramValue{
			Name:    name,
			Value:   params[name].Default,
			Comment: params[name].Description,
		})
	}
	return out
}
