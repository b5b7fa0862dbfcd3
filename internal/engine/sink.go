package engine

import (
	"context"
	"fmt"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
	"github.com/pforge-labs/pforge/internal/workflow"
)

// registrySink adapts the capability registry to the workflow's sink
// interface. Withdraw deprecates rather than deletes: registry entries are
// never physically removed, and a rolled-back registration keeps a
// breadcrumb for anyone who observed it.
type registrySink struct {
	reg *registry.Registry
}

// NewRegistrySink wraps a registry for use as a workflow sink.
func NewRegistrySink(reg *registry.Registry) workflow.RegistrySink {
	return &registrySink{reg: reg}
}

func (s *registrySink) Register(ctx context.Context, cap model.Capability, rec model.DeploymentRecord) error {
	merged, err := s.reg.Register(ctx, cap)
	if err != nil {
		return fmt.Errorf("registering capability %s: %w", cap.ID, err)
	}
	if err := s.reg.AttachDeployment(ctx, merged.ID, rec); err != nil {
		return fmt.Errorf("recording deployment for %s: %w", merged.ID, err)
	}
	return nil
}

func (s *registrySink) Withdraw(ctx context.Context, id string) error {
	return s.reg.Deprecate(ctx, id, "rolled back before release")
}
