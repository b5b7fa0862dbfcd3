// Package model defines the shared data model for the generation pipeline:
// parsed intents, template specifications, generated artifacts, validation
// rules, registry capabilities, and deployment records, together with the
// maturity/phase enumerations and the error taxonomy used across packages.
// It contains data and invariants only, no behavior.
package model
