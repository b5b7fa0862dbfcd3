// Package spec handles TemplateSpec values: promoting a ParsedIntent into
// a spec with phase-appropriate defaults, loading spec YAML files, and
// validating them against the embedded JSON Schema before anything is
// generated from them.
package spec
