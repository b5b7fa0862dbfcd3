// Package registry maintains the capability index: previously generated
// capabilities with their maturity levels, template references, and
// deployment records. It sits on a pluggable key-value Store with
// compare-and-swap semantics, merging concurrent writes per id so maturity
// converges to the monotonic maximum. Entries are never physically
// deleted; deprecation is a flag with a migration reference.
package registry
