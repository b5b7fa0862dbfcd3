package intent

import (
	"fmt"
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// DefaultMinRequirements is the requirement count below which an intent is
// reported incomplete.
const DefaultMinRequirements = 2

// ValidationResult is the outcome of validating a ParsedIntent. Errors
// make the intent invalid; warnings mark it merely incomplete.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// Field identifies a required intent field the interactive completion loop
// can ask about.
type Field string

const (
	FieldBoundary    Field = "capability-boundary"
	FieldRuntime     Field = "target-runtime"
	FieldSensitivity Field = "data-sensitivity"
)

// Question is a single clarifying question for an incomplete intent. The
// default answer is phase-appropriate filler, never invented business
// data.
type Question struct {
	Field   Field
	Prompt  string
	Default string
}

var runtimeHints = []string{
	"runtime", "node", "go", "golang", "python", "java", "rust", "ruby",
	"dotnet", "typescript", "javascript", "kotlin",
}

var sensitivityHints = []string{
	"public data", "internal data", "confidential", "pii",
	"data sensitivity", "sensitive data", "gdpr", "hipaa", "anonymized",
}

// Validate checks a ParsedIntent. It is invalid when its phase supports no
// artifact type consistent with its requirements; it is merely incomplete
// (warnings, not errors) when required fields are missing or fewer than
// minRequirements requirement statements were extracted.
func Validate(i *model.ParsedIntent, minRequirements int) ValidationResult {
	if minRequirements <= 0 {
		minRequirements = DefaultMinRequirements
	}

	var result ValidationResult

	inferred := InferType(i)
	if !phase.IsTypeSupported(i.Phase, inferred) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"inferred artifact type %q is not supported in phase %s", inferred, i.Phase))
	}

	for _, f := range MissingFields(i, minRequirements) {
		switch f {
		case FieldBoundary:
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"only %d requirement statement(s) extracted; the capability boundary is unclear",
				len(i.Requirements)))
		case FieldRuntime:
			result.Warnings = append(result.Warnings, "no target runtime or language stated")
		case FieldSensitivity:
			result.Warnings = append(result.Warnings, "no data sensitivity stated")
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// MissingFields reports which required fields the intent does not yet
// cover, in fixed order.
func MissingFields(i *model.ParsedIntent, minRequirements int) []Field {
	if minRequirements <= 0 {
		minRequirements = DefaultMinRequirements
	}
	var missing []Field
	if len(i.Requirements) < minRequirements {
		missing = append(missing, FieldBoundary)
	}
	if !mentionsAny(i.Description, runtimeHints) {
		missing = append(missing, FieldRuntime)
	}
	if !mentionsAny(i.Description, sensitivityHints) {
		missing = append(missing, FieldSensitivity)
	}
	return missing
}

// Questions produces one clarifying question per missing required field.
func Questions(i *model.ParsedIntent, minRequirements int) []Question {
	var qs []Question
	for _, f := range MissingFields(i, minRequirements) {
		switch f {
		case FieldBoundary:
			qs = append(qs, Question{
				Field:   FieldBoundary,
				Prompt:  "What should this capability do, and what is out of its scope?",
				Default: "single-purpose capability with the stated requirements only",
			})
		case FieldRuntime:
			qs = append(qs, Question{
				Field:   FieldRuntime,
				Prompt:  "Which runtime or language should the generated skeleton target?",
				Default: "runtime: unspecified (containerized)",
			})
		case FieldSensitivity:
			qs = append(qs, Question{
				Field:   FieldSensitivity,
				Prompt:  "What data sensitivity does this capability handle (public, internal, confidential)?",
				Default: "internal data sensitivity",
			})
		}
	}
	return qs
}

// typeHints maps description keywords to artifact types that override the
// phase's default type.
var typeHints = []struct {
	keyword string
	typ     string
}{
	{"frontend", "frontend-app"},
	{"web app", "frontend-app"},
	{"ui ", "frontend-app"},
	{"library", "library"},
	{"sdk", "library"},
	{"documentation", "documentation"},
	{"docs site", "documentation"},
	{"gitops", "gitops-app"},
	{"catalog entry", "catalog-registration"},
	{"monitoring stack", "monitoring-stack"},
	{"compliance pipeline", "compliance-pipeline"},
	{"pipeline", "standardized-pipeline"},
}

// InferType decides which artifact type the intent calls for: an explicit
// keyword hint wins, otherwise the phase's flagship type.
func InferType(i *model.ParsedIntent) string {
	lower := strings.ToLower(i.Description)
	for _, h := range typeHints {
		if strings.Contains(lower, h.keyword) {
			// A hinted type below the phase's gate is ignored in favor of the
			// phase default rather than failing generation outright.
			if phase.IsTypeSupported(i.Phase, h.typ) {
				return h.typ
			}
		}
	}
	return phase.DefaultType(i.Phase)
}

// mentionsAny matches multi-word hints by substring and single-word hints
// by whole token, so "go" does not fire on "governance".
func mentionsAny(text string, hints []string) bool {
	lower := strings.ToLower(text)
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		tokens[tok] = true
	}
	for _, h := range hints {
		if strings.ContainsRune(h, ' ') {
			if strings.Contains(lower, h) {
				return true
			}
			continue
		}
		if tokens[h] {
			return true
		}
	}
	return false
}
