// Package generator turns validated TemplateSpecs into GeneratedArtifact
// bundles: a rendered configuration document, a skeleton file tree, merged
// validation rules, and human-readable docs. Generation is a pure function
// of the spec plus the phase configuration tables — the same spec always
// yields a byte-identical artifact — and artifact names are deterministic
// ("<phase>-<type>-<name>") so regeneration and retried workflows converge
// instead of duplicating resources.
package generator
