package model

import "time"

// Enforcement is the strength of a validation rule.
type Enforcement string

const (
	EnforceWarn  Enforcement = "warn"
	EnforceBlock Enforcement = "block"
)

// Rule is a single validation rule embedded in templates and phase
// configuration.
type Rule struct {
	Type        string      `yaml:"type" json:"type"`
	Text        string      `yaml:"rule" json:"rule"`
	Enforcement Enforcement `yaml:"enforcement" json:"enforcement"`
}

// ValidationRules groups ordered rule lists by concern. The union of
// block-enforcement rules is non-decreasing as phase advances.
type ValidationRules struct {
	Security   []Rule `yaml:"security,omitempty" json:"security,omitempty"`
	Compliance []Rule `yaml:"compliance,omitempty" json:"compliance,omitempty"`
	Standards  []Rule `yaml:"standards,omitempty" json:"standards,omitempty"`
	Cost       []Rule `yaml:"cost,omitempty" json:"cost,omitempty"`
}

// BlockCount returns the number of block-enforcement rules across all four
// lists.
func (v ValidationRules) BlockCount() int {
	n := 0
	for _, list := range [][]Rule{v.Security, v.Compliance, v.Standards, v.Cost} {
		for _, r := range list {
			if r.Enforcement == EnforceBlock {
				n++
			}
		}
	}
	return n
}

// ParsedIntent is the structured result of parsing a free-text capability
// description. Immutable once handed to the generator; refinement produces
// a new value, never mutates in place.
type ParsedIntent struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	Requirements []string      `yaml:"requirements" json:"requirements"`
	Constraints  []string      `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Maturity     MaturityLevel `yaml:"maturity" json:"maturity"`
	Phase        Phase         `yaml:"phase" json:"phase"`
	// MatchedSignals records which classifier keywords produced the phase
	// assignment, so a surprising classification can be audited.
	MatchedSignals []string `yaml:"matched_signals,omitempty" json:"matched_signals,omitempty"`
}

// SpecMetadata identifies a template specification.
type SpecMetadata struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Owner       string   `yaml:"owner,omitempty" json:"owner,omitempty"`
}

// Parameter describes one entry in a spec's parameter schema.
type Parameter struct {
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Default     string   `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// Step is a single template-generation step.
type Step struct {
	ID        string            `yaml:"id" json:"id"`
	Name      string            `yaml:"name" json:"name"`
	Action    string            `yaml:"action" json:"action"`
	Inputs    map[string]string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Condition string            `yaml:"if,omitempty" json:"if,omitempty"`
}

// TemplateSpec is the structured, machine-actionable specification from
// which artifacts are generated. Created by promoting a ParsedIntent plus
// phase defaults; consumed read-only by the generator.
type TemplateSpec struct {
	Metadata   SpecMetadata         `yaml:"metadata" json:"metadata"`
	Type       string               `yaml:"type" json:"type"`
	Phase      Phase                `yaml:"-" json:"-"`
	PhaseName  string               `yaml:"phase" json:"phase"`
	Parameters map[string]Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Steps      []Step               `yaml:"steps,omitempty" json:"steps,omitempty"`
	Output     map[string]string    `yaml:"output,omitempty" json:"output,omitempty"`
	Validation ValidationRules      `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// SkeletonFile is one file of a generated repository skeleton. Skeletons
// preserve declaration order, so they are a slice rather than a map.
type SkeletonFile struct {
	Path    string `yaml:"path" json:"path"`
	Content string `yaml:"content" json:"content"`
}

// Documentation is the human-readable half of a generated artifact.
type Documentation struct {
	Readme string `yaml:"readme" json:"readme"`
	Usage  string `yaml:"usage" json:"usage"`
}

// ArtifactMetadata describes a generated artifact. Name is deterministic:
// "<phase>-<type>-<spec name>".
type ArtifactMetadata struct {
	Name         string        `yaml:"name" json:"name"`
	Owner        string        `yaml:"owner,omitempty" json:"owner,omitempty"`
	Maturity     MaturityLevel `yaml:"maturity" json:"maturity"`
	Phase        Phase         `yaml:"-" json:"-"`
	PhaseName    string        `yaml:"phase" json:"phase"`
	Type         string        `yaml:"type" json:"type"`
	Tags         []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Dependencies []string      `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// GeneratedArtifact is the immutable output bundle of one generation call.
// Re-generation produces a new artifact, never patches an old one.
type GeneratedArtifact struct {
	Config     string           `yaml:"config" json:"config"`
	Skeleton   []SkeletonFile   `yaml:"skeleton" json:"skeleton"`
	Docs       Documentation    `yaml:"docs" json:"docs"`
	Validation ValidationRules  `yaml:"validation" json:"validation"`
	Metadata   ArtifactMetadata `yaml:"metadata" json:"metadata"`
	Steps      []Step           `yaml:"steps" json:"steps"`
}

// TemplateRef ties a capability to one of its generated templates.
type TemplateRef struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	Type    string `yaml:"type" json:"type"`
}

// Capability is a registry entry: a named, registered unit of platform
// functionality. Entries are never physically deleted; deprecation is a
// state flag with a migration-path reference.
type Capability struct {
	ID           string             `yaml:"id" json:"id"`
	DisplayName  string             `yaml:"display_name" json:"display_name"`
	Description  string             `yaml:"description,omitempty" json:"description,omitempty"`
	Maturity     MaturityLevel      `yaml:"maturity" json:"maturity"`
	Phase        Phase              `yaml:"phase" json:"phase"`
	Tags         []string           `yaml:"tags,omitempty" json:"tags,omitempty"`
	Templates    []TemplateRef      `yaml:"templates,omitempty" json:"templates,omitempty"`
	Dependencies []string           `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Deprecated   bool               `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	MigrationRef string             `yaml:"migration_ref,omitempty" json:"migration_ref,omitempty"`
	Deployments  []DeploymentRecord `yaml:"deployments,omitempty" json:"deployments,omitempty"`
}

// Repository identifies a provisioned repository at the VCS provider.
type Repository struct {
	ID     string `yaml:"id" json:"id"`
	URL    string `yaml:"url" json:"url"`
	Branch string `yaml:"branch" json:"branch"`
}

// PullRequest identifies an open review request.
type PullRequest struct {
	ID  string `yaml:"id" json:"id"`
	URL string `yaml:"url" json:"url"`
}

// MergeResult is the outcome of merging a pull request.
type MergeResult struct {
	Merged   bool   `yaml:"merged" json:"merged"`
	CommitID string `yaml:"commit_id,omitempty" json:"commit_id,omitempty"`
}

// DeploymentResult is the portal deployment API's response.
type DeploymentResult struct {
	Success     bool   `yaml:"success" json:"success"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Diagnostics string `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// DeploymentRecord is produced by the GitOps workflow and referenced, not
// owned, by the registry and the inspector.
type DeploymentRecord struct {
	Repository  Repository       `yaml:"repository" json:"repository"`
	CommitID    string           `yaml:"commit_id" json:"commit_id"`
	PipelineRun string           `yaml:"pipeline_run,omitempty" json:"pipeline_run,omitempty"`
	PullRequest PullRequest      `yaml:"pull_request" json:"pull_request"`
	Merge       MergeResult      `yaml:"merge" json:"merge"`
	Deployment  DeploymentResult `yaml:"deployment" json:"deployment"`
	Timestamp   time.Time        `yaml:"timestamp" json:"timestamp"`
}
