// Package phase holds the fixed per-phase configuration tables (supported
// artifact types, required capability tags, validation rule sets, template
// features, dependency lists, step inserts) and the keyword classifier that
// maps free-text signals to a maturity level and phase. Tables are built
// once at startup and never mutated, so concurrent requests never race on
// configuration.
package phase
