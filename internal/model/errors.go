package model

import (
	"fmt"
	"strings"
)

// IntentParsingError reports unrecoverable malformed intent text. Callers
// must re-prompt the user rather than guess; it is never retried
// automatically.
type IntentParsingError struct {
	Reason string
	Input  string
}

func (e *IntentParsingError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("cannot parse intent: %s", e.Reason)
	}
	return fmt.Sprintf("cannot parse intent %q: %s", truncate(e.Input, 60), e.Reason)
}

// UnsupportedTypeError reports a phase/type gate failure. Fatal for the
// current request.
type UnsupportedTypeError struct {
	Phase Phase
	Type  string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("artifact type %q is not supported in phase %s", e.Type, e.Phase)
}

// CompositeNotSupportedError reports a composite-template request on a
// phase whose configuration does not allow composites.
type CompositeNotSupportedError struct {
	Phase Phase
}

func (e *CompositeNotSupportedError) Error() string {
	return fmt.Sprintf("composite templates are not supported in phase %s", e.Phase)
}

// ValidationFailureError reports a spec that fails mandatory block-rules.
// It carries the offending rules for user remediation.
type ValidationFailureError struct {
	Rules []Rule
}

func (e *ValidationFailureError) Error() string {
	texts := make([]string, len(e.Rules))
	for i, r := range e.Rules {
		texts[i] = r.Text
	}
	return fmt.Sprintf("mandatory validation rules failed: %s", strings.Join(texts, "; "))
}

// ExternalCallError reports a collaborator call failure. Transient
// failures are retried per policy; non-transient failures escalate the
// workflow to Failed without retry.
type ExternalCallError struct {
	Call      string
	Transient bool
	Err       error
}

func (e *ExternalCallError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("external call %s failed (%s): %v", e.Call, kind, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

// InvalidTransitionError reports a registry monotonicity violation: an
// attempt to lower a capability's recorded maturity level. Always fatal;
// it indicates a caller bug.
type InvalidTransitionError struct {
	ID        string
	Current   MaturityLevel
	Requested MaturityLevel
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("capability %q: maturity cannot decrease from %s to %s",
		e.ID, e.Current, e.Requested)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
