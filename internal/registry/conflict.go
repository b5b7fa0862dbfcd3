package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/pforge-labs/pforge/internal/model"
)

// Conflict marks two capabilities claiming the same deterministic artifact
// name with different declared types.
type Conflict struct {
	ArtifactName string
	ExistingID   string
	ExistingType string
	IncomingType string
}

// ConflictError surfaces conflicts with composition-or-rename guidance
// instead of silently overwriting either entry.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("artifact %q already registered by %q as type %q (incoming type %q)",
			c.ArtifactName, c.ExistingID, c.ExistingType, c.IncomingType)
	}
	return "capability conflicts: " + strings.Join(parts, "; ")
}

// Guidance phrases the resolution options for a conflict.
func (c Conflict) Guidance() []string {
	return []string{
		fmt.Sprintf("Rename the capability so its artifact name no longer collides with %q", c.ArtifactName),
		fmt.Sprintf("Or compose with capability %q instead of re-declaring it as %q", c.ExistingID, c.IncomingType),
	}
}

// FindConflicts scans the store for artifact-name collisions with a
// different declared type. Same-name same-type references are ordinary
// re-registrations, not conflicts.
func (r *Registry) FindConflicts(ctx context.Context, cap model.Capability) ([]Conflict, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict
	for _, ref := range cap.Templates {
		for _, e := range entries {
			if e.Capability.ID == cap.ID {
				continue
			}
			for _, prior := range e.Capability.Templates {
				if prior.Name == ref.Name && prior.Type != ref.Type {
					conflicts = append(conflicts, Conflict{
						ArtifactName: ref.Name,
						ExistingID:   e.Capability.ID,
						ExistingType: prior.Type,
						IncomingType: ref.Type,
					})
				}
			}
		}
	}
	return conflicts, nil
}
