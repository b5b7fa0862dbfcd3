package phase

import (
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
)

// Classification is the result of matching text signals against the phase
// keyword tables.
type Classification struct {
	Maturity model.MaturityLevel
	Phase    model.Phase
	// Matched lists the keywords that produced the assignment, for audit.
	Matched []string
}

// Classify matches the given requirement/constraint signals against the
// per-phase keyword tables. The highest matching phase wins; absence of
// any signal defaults to Foundation/L1. Governance and IntentDriven phrase
// sets are checked first so a description mentioning "policy enforcement"
// or "self-optimizing" is not mis-classified as merely L1 — scanning
// phases in descending order and stopping at the first match implements
// exactly that precedence.
func Classify(signals []string) Classification {
	joined := strings.ToLower(strings.Join(signals, " "))

	phases := model.AllPhases()
	for i := len(phases) - 1; i >= 0; i-- {
		p := phases[i]
		var matched []string
		for _, kw := range configs[p].keywords {
			if strings.Contains(joined, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			return Classification{Maturity: p.Maturity(), Phase: p, Matched: matched}
		}
	}

	return Classification{Maturity: model.MaturityL1, Phase: model.PhaseFoundation}
}

// IsTypeSupported reports whether the artifact type is in the phase's
// supported-type set. Total: unknown phases and types return false, never
// an error, so callers can branch on the boolean before attempting
// generation.
func IsTypeSupported(p model.Phase, artifactType string) bool {
	d, ok := tableFor(p)
	if !ok {
		return false
	}
	return d.typeSet[artifactType]
}

// SupportedTypes returns the phase's supported artifact types in fixed
// declaration order (lower-phase types first). Unknown phases yield nil.
func SupportedTypes(p model.Phase) []string {
	d, ok := tableFor(p)
	if !ok {
		return nil
	}
	return append([]string{}, d.types...)
}

// NextPhase returns the fixed successor of p. IntentDriven has no
// successor.
func NextPhase(p model.Phase) (model.Phase, bool) {
	if !p.Valid() || p == model.PhaseIntentDriven {
		return 0, false
	}
	return p + 1, true
}

// DefaultType returns the phase's flagship artifact type, used when a spec
// is promoted from an intent that names no explicit type.
func DefaultType(p model.Phase) string {
	if !p.Valid() {
		return configs[model.PhaseFoundation].defaultTyp
	}
	return configs[p].defaultTyp
}

// RequiredCapabilities returns the cumulative capability tags a capability
// at phase p must carry.
func RequiredCapabilities(p model.Phase) []string {
	d, ok := tableFor(p)
	if !ok {
		return nil
	}
	out := make([]string, len(d.capabilities))
	for i, c := range d.capabilities {
		out[i] = c.tag
	}
	return out
}

// CapabilityDisplay returns the human phrase for a capability tag, used in
// evolution recommendations. Falls back to the tag itself.
func CapabilityDisplay(tag string) string {
	for _, cfg := range configs {
		for _, c := range cfg.ownCapabilities {
			if c.tag == tag {
				return c.display
			}
		}
	}
	return tag
}

// Rules returns the phase's mandatory validation rule set. Rule sets are
// cumulative, so blocking strictness never decreases as phase advances.
func Rules(p model.Phase) model.ValidationRules {
	d, ok := tableFor(p)
	if !ok {
		return model.ValidationRules{}
	}
	return d.rules
}

// Dependencies returns the cumulative dependency list for artifacts
// generated at phase p (Foundation: base tooling only; IntentDriven adds
// ML/automation libraries).
func Dependencies(p model.Phase) []string {
	d, ok := tableFor(p)
	if !ok {
		return nil
	}
	return append([]string{}, d.dependencies...)
}

// Features returns the template-generation features the phase enables.
func Features(p model.Phase) []string {
	if !p.Valid() {
		return nil
	}
	return append([]string{}, configs[p].features...)
}

// CompositesSupported reports whether the phase's configuration marks
// composite templates as supported.
func CompositesSupported(p model.Phase) bool {
	if !p.Valid() {
		return false
	}
	return configs[p].composites
}

// StepsForType returns the type-specific steps inserted between the
// bootstrap and closing steps. Each type's steps live with the phase that
// introduced it, and types carry forward, so the lookup scans every phase
// up to p. Types without inserts yield nil.
func StepsForType(p model.Phase, artifactType string) []model.Step {
	if !p.Valid() {
		return nil
	}
	for q := model.PhaseFoundation; q <= p; q++ {
		if steps, ok := configs[q].typeSteps[artifactType]; ok {
			return append([]model.Step{}, steps...)
		}
	}
	return nil
}

// BootstrapSteps returns the phase-invariant steps that open every
// generated template.
func BootstrapSteps() []model.Step {
	return []model.Step{
		{ID: "fetch", Name: "Fetch Skeleton", Action: "fetch:template"},
		{ID: "catalog", Name: "Register in Catalog", Action: "catalog:register"},
	}
}

// ClosingSteps returns the phase-invariant publish/deploy steps that close
// every generated template.
func ClosingSteps() []model.Step {
	return []model.Step{
		{ID: "publish", Name: "Publish Repository", Action: "publish:github"},
	}
}
