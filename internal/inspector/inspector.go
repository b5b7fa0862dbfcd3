// Package inspector periodically assesses deployed artifacts: whether
// their deployments have gone stale, whether their recorded type is still
// supported under the current phase configuration, and whether they carry
// the capability tags their phase requires. It consumes the workflow's
// deployment records through the registry and never touches external
// systems.
package inspector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/phase"
	"github.com/pforge-labs/pforge/internal/registry"
)

// Status classifies a capability's health.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusStale    Status = "stale"
	StatusDrifting Status = "drifting"
)

// HealthReport is the assessment of one capability.
type HealthReport struct {
	CapabilityID string
	Status       Status
	Findings     []string
	AssessedAt   time.Time
}

// DefaultFreshness is the deployment age beyond which a capability is
// reported stale.
const DefaultFreshness = 30 * 24 * time.Hour

// Inspector assesses registered capabilities.
type Inspector struct {
	reg       *registry.Registry
	freshness time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// New returns an inspector over the registry. Zero freshness selects
// DefaultFreshness; a nil logger disables logging.
func New(reg *registry.Registry, freshness time.Duration, log *zap.Logger) *Inspector {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{reg: reg, freshness: freshness, log: log, now: time.Now}
}

// Assess evaluates every non-deprecated capability, insertion order
// preserved.
func (i *Inspector) Assess(ctx context.Context) ([]HealthReport, error) {
	caps, err := i.reg.Capabilities(ctx, registry.Filter{})
	if err != nil {
		return nil, fmt.Errorf("listing capabilities: %w", err)
	}

	reports := make([]HealthReport, 0, len(caps))
	for _, c := range caps {
		report := i.assess(c)
		if report.Status != StatusHealthy {
			i.log.Info("capability needs attention",
				zap.String("id", c.ID),
				zap.String("status", string(report.Status)))
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// assess applies the drift checks first: a configuration mismatch is
// actionable regardless of deployment age.
func (i *Inspector) assess(c model.Capability) HealthReport {
	report := HealthReport{
		CapabilityID: c.ID,
		Status:       StatusHealthy,
		AssessedAt:   i.now().UTC(),
	}

	for _, ref := range c.Templates {
		if !phase.IsTypeSupported(c.Phase, ref.Type) {
			report.Status = StatusDrifting
			report.Findings = append(report.Findings, fmt.Sprintf(
				"template %q has type %q no longer supported in phase %s",
				ref.Name, ref.Type, c.Phase))
		}
	}

	required := phase.RequiredCapabilities(c.Phase)
	have := make(map[string]bool, len(c.Tags))
	for _, t := range c.Tags {
		have[t] = true
	}
	for _, tag := range required {
		if !have[tag] {
			report.Status = StatusDrifting
			report.Findings = append(report.Findings, fmt.Sprintf(
				"missing required capability tag %q for phase %s", tag, c.Phase))
		}
	}

	if report.Status == StatusDrifting {
		return report
	}

	if len(c.Deployments) == 0 {
		report.Status = StatusStale
		report.Findings = append(report.Findings, "no recorded deployment")
		return report
	}
	latest := c.Deployments[len(c.Deployments)-1]
	if age := i.now().Sub(latest.Timestamp); age > i.freshness {
		report.Status = StatusStale
		report.Findings = append(report.Findings, fmt.Sprintf(
			"last deployment is %s old", age.Round(time.Hour)))
	}

	return report
}
