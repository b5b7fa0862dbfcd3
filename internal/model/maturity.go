package model

import "fmt"

// MaturityLevel is the ordered sophistication level of a capability's
// automation, L1 through L5. A capability's recorded level never decreases
// except through explicit deprecation.
type MaturityLevel int

const (
	// L1: basic template generation.
	MaturityL1 MaturityLevel = iota + 1
	// L2: deployment automation.
	MaturityL2
	// L3: operational standardization.
	MaturityL3
	// L4: policy governance.
	MaturityL4
	// L5: intent-driven execution.
	MaturityL5
)

// String returns the short level name, e.g. "L3".
func (m MaturityLevel) String() string {
	if m < MaturityL1 || m > MaturityL5 {
		return fmt.Sprintf("L?(%d)", int(m))
	}
	return fmt.Sprintf("L%d", int(m))
}

// Valid reports whether m is one of the five defined levels.
func (m MaturityLevel) Valid() bool {
	return m >= MaturityL1 && m <= MaturityL5
}

// Phase is the development-process stage, in 1:1 monotonic correspondence
// with MaturityLevel (Foundation↔L1 … IntentDriven↔L5).
type Phase int

const (
	PhaseFoundation Phase = iota + 1
	PhaseStandardization
	PhaseOperationalization
	PhaseGovernance
	PhaseIntentDriven
)

var phaseNames = map[Phase]string{
	PhaseFoundation:         "FOUNDATION",
	PhaseStandardization:    "STANDARDIZATION",
	PhaseOperationalization: "OPERATIONALIZATION",
	PhaseGovernance:         "GOVERNANCE",
	PhaseIntentDriven:       "INTENT_DRIVEN",
}

var phaseSlugs = map[Phase]string{
	PhaseFoundation:         "foundation",
	PhaseStandardization:    "standardization",
	PhaseOperationalization: "operationalization",
	PhaseGovernance:         "governance",
	PhaseIntentDriven:       "intent-driven",
}

// String returns the canonical upper-case phase name, e.g. "FOUNDATION".
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE?(%d)", int(p))
}

// Slug returns the lower-case phase name used in deterministic artifact
// names and file paths, e.g. "foundation".
func (p Phase) Slug() string {
	if slug, ok := phaseSlugs[p]; ok {
		return slug
	}
	return "unknown"
}

// Valid reports whether p is one of the five defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseFoundation && p <= PhaseIntentDriven
}

// Maturity returns the maturity level corresponding to the phase.
func (p Phase) Maturity() MaturityLevel {
	return MaturityLevel(p)
}

// PhaseFor returns the phase corresponding to a maturity level.
func PhaseFor(m MaturityLevel) Phase {
	return Phase(m)
}

// ParsePhase resolves a phase from its canonical name or slug. The boolean
// is false when the value names no known phase.
func ParsePhase(s string) (Phase, bool) {
	for p, name := range phaseNames {
		if s == name || s == phaseSlugs[p] {
			return p, true
		}
	}
	return 0, false
}

// AllPhases lists the phases in ascending order.
func AllPhases() []Phase {
	return []Phase{
		PhaseFoundation,
		PhaseStandardization,
		PhaseOperationalization,
		PhaseGovernance,
		PhaseIntentDriven,
	}
}
