package intent

import (
	"regexp"
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
)

// namePattern captures the capability noun-phrase from an explicit
// "Create a <name>" style opening.
var namePattern = regexp.MustCompile(
	`(?i)\b(?:create|build|generate|scaffold|set up)\s+(?:(?:a|an|the)\s+)?(.+?)(?:\s+with\b|\s+that\b|\s+for\b|\s+using\b|[,.;:]|$)`)

// constraintMarkers flag a clause as a constraint rather than a
// requirement.
var constraintMarkers = []string{
	"must", "should not", "shall not", "compliant with", "limited to",
	"cannot", "never", "restricted to", "no more than",
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a free-text phrase to a kebab-case identifier.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Parse extracts a ParsedIntent from prose. It fails with
// *model.IntentParsingError only when the text is empty or contains no
// extractable capability noun — callers must re-prompt, not guess.
func Parse(text string) (*model.ParsedIntent, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &model.IntentParsingError{Reason: "empty description"}
	}

	name := extractName(trimmed)
	if name == "" {
		return nil, &model.IntentParsingError{Reason: "no capability noun found", Input: trimmed}
	}

	requirements, constraints := splitStatements(trimmed)

	// The raw description joins the signal set: phase-defining phrases often
	// sit in the capability name rather than a requirement clause.
	signals := make([]string, 0, len(requirements)+len(constraints)+1)
	signals = append(signals, requirements...)
	signals = append(signals, constraints...)
	signals = append(signals, trimmed)
	cls := phase.Classify(signals)

	return &model.ParsedIntent{
		Name:           name,
		Description:    trimmed,
		Requirements:   requirements,
		Constraints:    constraints,
		Maturity:       cls.Maturity,
		Phase:          cls.Phase,
		MatchedSignals: cls.Matched,
	}, nil
}

// ParseWithOverride parses like Parse but pins the phase and maturity to
// the explicit override instead of the classifier's verdict.
func ParseWithOverride(text string, p model.Phase) (*model.ParsedIntent, error) {
	parsed, err := Parse(text)
	if err != nil {
		return nil, err
	}
	out := *parsed
	out.Phase = p
	out.Maturity = p.Maturity()
	out.MatchedSignals = nil
	return &out, nil
}

// Refine produces a new ParsedIntent by re-running extraction over the
// intent's description plus the feedback. Re-applying the same feedback is
// idempotent: extraction always starts from the same base description, and
// feedback already present is not appended a second time.
func Refine(i *model.ParsedIntent, feedback string) (*model.ParsedIntent, error) {
	feedback = strings.TrimSpace(feedback)
	combined := i.Description
	if feedback != "" && !strings.HasSuffix(combined, feedback) {
		// Feedback joins as its own sentence so it contributes statements
		// instead of merging into the description's last clause.
		if !strings.HasSuffix(combined, ".") && !strings.HasSuffix(combined, ";") {
			combined += "."
		}
		combined = combined + " " + feedback
	}
	refined, err := Parse(combined)
	if err != nil {
		return nil, err
	}
	// Refinement never renames the capability: the name anchors registry
	// identity and deterministic artifact naming across rounds.
	out := *refined
	out.Name = i.Name
	return &out, nil
}

// extractName pulls the capability name from the description, preferring
// the explicit "Create a <name>" pattern and falling back to the first
// clause.
func extractName(text string) string {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		if slug := Slugify(m[1]); slug != "" {
			return slug
		}
	}
	// First-clause fallback: everything up to the first delimiter.
	clause := text
	if idx := strings.IndexAny(clause, ",.;:\n"); idx > 0 {
		clause = clause[:idx]
	}
	// Cap the fallback at a handful of words so a run-on description does
	// not become the name.
	words := strings.Fields(clause)
	if len(words) > 6 {
		words = words[:6]
	}
	return Slugify(strings.Join(words, " "))
}

// splitStatements divides the description into requirement and constraint
// statements, in order of appearance.
func splitStatements(text string) (requirements, constraints []string) {
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if isConstraint(sentence) {
			constraints = append(constraints, sentence)
			continue
		}
		// An opening "Create a X with A, B, and C" sentence contributes its
		// enumerated features as individual requirements.
		if items := enumeratedItems(sentence); len(items) > 0 {
			requirements = append(requirements, items...)
			continue
		}
		if namePattern.MatchString(sentence) {
			// Pure "Create a X" opener with no feature list: nothing to add.
			continue
		}
		requirements = append(requirements, sentence)
	}
	return requirements, constraints
}

// enumeratedItems extracts the "with A, B, and C" feature list from an
// opening sentence, one requirement per item.
func enumeratedItems(sentence string) []string {
	lower := strings.ToLower(sentence)
	idx := strings.Index(lower, " with ")
	if idx < 0 {
		return nil
	}
	rest := sentence[idx+len(" with "):]
	var items []string
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimSuffix(part, ".")
		lowerPart := strings.ToLower(part)
		if strings.HasPrefix(lowerPart, "and ") {
			part = strings.TrimSpace(part[4:])
		}
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func isConstraint(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, marker := range constraintMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// splitSentences breaks text on sentence delimiters while leaving embedded
// dots (e.g. "Node.js") intact.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == ';' {
			sentences = append(sentences, b.String())
			b.Reset()
			continue
		}
		if (r == '.' || r == '!' || r == '?') &&
			(i == len(runes)-1 || runes[i+1] == ' ') {
			sentences = append(sentences, b.String())
			b.Reset()
			if i < len(runes)-1 {
				i++ // skip the space
			}
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		sentences = append(sentences, b.String())
	}
	return sentences
}
