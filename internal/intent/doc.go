// Package intent turns prose capability descriptions into structured
// ParsedIntent values. It extracts the capability name, splits the
// remaining text into requirement and constraint statements, classifies
// the phase/maturity via the phase package, and supports iterative
// refinement with clarifying questions for the interactive completion
// loop.
package intent
