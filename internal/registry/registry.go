package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/pforge-labs/pforge/internal/generator"
	"github.com/pforge-labs/pforge/internal/model"
)

// casAttempts bounds the read-merge-write retry loop. Conflicts resolve in
// one retry unless writers outnumber attempts, which the per-id contention
// model rules out.
const casAttempts = 8

// Registry is the capability index over a pluggable Store.
type Registry struct {
	store Store
	log   *zap.Logger
}

// New returns a registry on the given store. A nil logger disables
// logging.
func New(store Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: store, log: log}
}

// Register inserts or merges a capability by id. Merging raises the
// maturity level to the maximum of existing and new, appends template
// references not already present, and never removes prior ones. Two
// concurrent registrations of the same id converge to the monotonic
// maximum via the store's compare-and-swap. Conflicting artifact names
// (same name, different declared type) fail with *ConflictError instead
// of overwriting either entry.
func (r *Registry) Register(ctx context.Context, cap model.Capability) (model.Capability, error) {
	if cap.ID == "" {
		return model.Capability{}, fmt.Errorf("capability id is empty")
	}

	conflicts, err := r.FindConflicts(ctx, cap)
	if err != nil {
		return model.Capability{}, err
	}
	if len(conflicts) > 0 {
		return model.Capability{}, &ConflictError{Conflicts: conflicts}
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, err := r.store.Get(ctx, cap.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			if _, err := r.store.Put(ctx, cap.ID, cap, 0); err != nil {
				if errors.Is(err, ErrVersionConflict) {
					continue
				}
				return model.Capability{}, err
			}
			r.log.Info("capability registered",
				zap.String("id", cap.ID),
				zap.Stringer("maturity", cap.Maturity))
			return cap, nil
		case err != nil:
			return model.Capability{}, err
		}

		merged := merge(existing.Capability, cap)
		if _, err := r.store.Put(ctx, cap.ID, merged, existing.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return model.Capability{}, err
		}
		r.log.Info("capability merged",
			zap.String("id", cap.ID),
			zap.Stringer("maturity", merged.Maturity))
		return merged, nil
	}
	return model.Capability{}, fmt.Errorf("registering %q: too many concurrent writers", cap.ID)
}

// Get returns the capability with the given id.
func (r *Registry) Get(ctx context.Context, id string) (model.Capability, error) {
	e, err := r.store.Get(ctx, id)
	if err != nil {
		return model.Capability{}, err
	}
	return e.Capability, nil
}

// Filter narrows a capability listing. Zero values match everything.
type Filter struct {
	Phase             model.Phase
	MinMaturity       model.MaturityLevel
	Tags              []string
	IncludeDeprecated bool
}

// Capabilities returns matching capabilities in insertion order.
func (r *Registry) Capabilities(ctx context.Context, f Filter) ([]model.Capability, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Capability
	for _, e := range entries {
		if f.matches(e.Capability) {
			out = append(out, e.Capability)
		}
	}
	return out, nil
}

func (f Filter) matches(c model.Capability) bool {
	if c.Deprecated && !f.IncludeDeprecated {
		return false
	}
	if f.Phase != 0 && c.Phase != f.Phase {
		return false
	}
	if f.MinMaturity != 0 && c.Maturity < f.MinMaturity {
		return false
	}
	if len(f.Tags) > 0 {
		have := make(map[string]bool, len(c.Tags))
		for _, t := range c.Tags {
			have[t] = true
		}
		for _, t := range f.Tags {
			if !have[t] {
				return false
			}
		}
	}
	return true
}

// UpdateMaturity raises a capability's maturity level. A level below the
// current one fails with *model.InvalidTransitionError and leaves state
// unchanged; lowering is possible only through Deprecate.
func (r *Registry) UpdateMaturity(ctx context.Context, id string, level model.MaturityLevel) error {
	if !level.Valid() {
		return fmt.Errorf("invalid maturity level %d", int(level))
	}
	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, err := r.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if level < existing.Capability.Maturity {
			return &model.InvalidTransitionError{
				ID:        id,
				Current:   existing.Capability.Maturity,
				Requested: level,
			}
		}
		updated := existing.Capability
		updated.Maturity = level
		updated.Phase = model.PhaseFor(level)
		if _, err := r.store.Put(ctx, id, updated, existing.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("updating maturity of %q: too many concurrent writers", id)
}

// Deprecate flags a capability as deprecated with a migration-path
// reference. The entry stays in the store for auditability.
func (r *Registry) Deprecate(ctx context.Context, id, migrationRef string) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, err := r.store.Get(ctx, id)
		if err != nil {
			return err
		}
		updated := existing.Capability
		updated.Deprecated = true
		updated.MigrationRef = migrationRef
		if _, err := r.store.Put(ctx, id, updated, existing.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return err
		}
		r.log.Info("capability deprecated",
			zap.String("id", id),
			zap.String("migration_ref", migrationRef))
		return nil
	}
	return fmt.Errorf("deprecating %q: too many concurrent writers", id)
}

// AttachDeployment records a deployment against a capability. The record
// is referenced, not owned: the workflow remains the source of truth.
func (r *Registry) AttachDeployment(ctx context.Context, id string, rec model.DeploymentRecord) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, err := r.store.Get(ctx, id)
		if err != nil {
			return err
		}
		updated := existing.Capability
		updated.Deployments = append(append([]model.DeploymentRecord{}, updated.Deployments...), rec)
		if _, err := r.store.Put(ctx, id, updated, existing.Version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("attaching deployment to %q: too many concurrent writers", id)
}

// SuggestImprovements delegates to the generator's evolution
// recommendations for the capability's latest template.
func (r *Registry) SuggestImprovements(ctx context.Context, id string) ([]string, error) {
	cap, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	latest := model.GeneratedArtifact{
		Metadata: model.ArtifactMetadata{
			Name:      latestTemplateName(cap),
			Phase:     cap.Phase,
			PhaseName: cap.Phase.String(),
			Maturity:  cap.Maturity,
			Tags:      cap.Tags,
		},
	}
	return generator.EvolutionRecommendations(&latest), nil
}

func latestTemplateName(c model.Capability) string {
	if len(c.Templates) == 0 {
		return c.ID
	}
	return c.Templates[len(c.Templates)-1].Name
}

// merge folds an incoming capability into the existing entry.
func merge(existing, incoming model.Capability) model.Capability {
	out := existing

	if incoming.Maturity > out.Maturity {
		out.Maturity = incoming.Maturity
		out.Phase = model.PhaseFor(incoming.Maturity)
	}
	if out.DisplayName == "" {
		out.DisplayName = incoming.DisplayName
	}
	if out.Description == "" {
		out.Description = incoming.Description
	}

	out.Templates = mergeTemplates(out.Templates, incoming.Templates)
	out.Tags = mergeStrings(out.Tags, incoming.Tags)
	out.Dependencies = mergeStrings(out.Dependencies, incoming.Dependencies)
	out.Deployments = append(append([]model.DeploymentRecord{}, out.Deployments...), incoming.Deployments...)

	return out
}

// mergeTemplates appends new references and keeps the higher semver when a
// reference with the same name arrives again. Prior references are never
// removed.
func mergeTemplates(existing, incoming []model.TemplateRef) []model.TemplateRef {
	out := append([]model.TemplateRef{}, existing...)
	for _, ref := range incoming {
		found := false
		for i, prior := range out {
			if prior.Name != ref.Name {
				continue
			}
			found = true
			if newerVersion(ref.Version, prior.Version) {
				out[i].Version = ref.Version
			}
			break
		}
		if !found {
			out = append(out, ref)
		}
	}
	return out
}

// newerVersion reports whether a is a strictly newer semver than b.
// Unparseable versions are never considered newer.
func newerVersion(a, b string) bool {
	va, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return true
	}
	return va.GreaterThan(vb)
}

func mergeStrings(existing, incoming []string) []string {
	out := append([]string{}, existing...)
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
