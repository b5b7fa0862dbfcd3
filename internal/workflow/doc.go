// Package workflow drives a generated artifact through the GitOps
// sequence: repository provisioning, commit, pipeline trigger, pull
// request, merge, deployment, and registry update. Transitions are
// idempotent external calls guarded by a configurable retry policy;
// failure from any non-terminal state lands in Failed and, when rollback
// is enabled, triggers best-effort compensation of every state already
// passed, in reverse order. External collaborators (VCS, CI, portal
// deployment, registry) are injected interfaces, so tests run against
// fakes without a mocking framework.
package workflow
