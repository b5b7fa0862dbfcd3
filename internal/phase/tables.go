package phase

import (
	"sync"

	"github.com/pforge-labs/pforge/internal/model"
)

// config is the per-phase configuration. The own* fields hold only what a
// phase adds on top of its predecessor; cumulative views are derived once
// in buildTables.
type config struct {
	keywords   []string
	ownTypes   []string
	defaultTyp string
	// ownCapabilities are the capability tags a phase requires beyond its
	// predecessor's, paired with the display phrase used in evolution
	// recommendations.
	ownCapabilities []capabilityTag
	features        []string
	ownRules        model.ValidationRules
	ownDependencies []string
	typeSteps       map[string][]model.Step
	composites      bool
}

type capabilityTag struct {
	tag     string
	display string
}

var configs = map[model.Phase]config{
	model.PhaseFoundation: {
		// Foundation is the default: it has no trigger keywords of its own.
		ownTypes: []string{
			"backend-service", "frontend-app", "gitops-app",
			"catalog-registration", "library", "documentation",
		},
		defaultTyp: "backend-service",
		ownCapabilities: []capabilityTag{
			{"template-generation", "template generation"},
			{"catalog-registration", "catalog registration"},
		},
		features: []string{"skeleton-generation", "catalog-registration"},
		ownRules: model.ValidationRules{
			Security: []model.Rule{
				{Type: "secrets", Text: "No hardcoded credentials in generated files", Enforcement: model.EnforceBlock},
			},
			Standards: []model.Rule{
				{Type: "naming", Text: "Component names follow kebab-case convention", Enforcement: model.EnforceWarn},
			},
			Cost: []model.Rule{
				{Type: "tagging", Text: "Cloud resources carry owner and cost-center tags", Enforcement: model.EnforceWarn},
			},
		},
		ownDependencies: []string{"make", "docker"},
		typeSteps: map[string][]model.Step{
			"gitops-app": {
				{ID: "manifests", Name: "Render Deployment Manifests", Action: "manifests:render"},
			},
		},
	},
	model.PhaseStandardization: {
		keywords: []string{
			"standardized", "standardization", "golden path", "composite",
			"reusable pipeline", "deployment automation", "ci/cd", "cicd",
		},
		ownTypes:   []string{"composite-service", "standardized-pipeline"},
		defaultTyp: "composite-service",
		ownCapabilities: []capabilityTag{
			{"automated-deployment", "automated deployment"},
			{"ci-cd-integration", "CI/CD integration"},
			{"golden-path-pipeline", "golden path pipeline"},
		},
		features: []string{"pipeline-generation", "composite-templates"},
		ownRules: model.ValidationRules{
			Security: []model.Rule{
				{Type: "dependencies", Text: "Dependency scanning enabled in the pipeline", Enforcement: model.EnforceBlock},
			},
			Standards: []model.Rule{
				{Type: "pipeline", Text: "Builds run through the golden path pipeline", Enforcement: model.EnforceBlock},
			},
		},
		ownDependencies: []string{"pipeline-runner"},
		typeSteps: map[string][]model.Step{
			"composite-service": {
				{ID: "standards", Name: "Validate Standards", Action: "validate:standards"},
				{ID: "pipeline", Name: "Create Pipeline", Action: "pipeline:create"},
			},
			"standardized-pipeline": {
				{ID: "pipeline", Name: "Create Pipeline", Action: "pipeline:create"},
			},
		},
		composites: true,
	},
	model.PhaseOperationalization: {
		keywords: []string{
			"operational standardization", "self-service operations", "runbook",
			"incident response", "auto-scaling", "sre", "service level objective", "slo",
		},
		ownTypes:   []string{"operational-service", "monitoring-stack"},
		defaultTyp: "operational-service",
		ownCapabilities: []capabilityTag{
			{"monitoring-integration", "monitoring integration"},
			{"incident-automation", "incident automation"},
		},
		features: []string{"runbook-generation", "alerting-defaults"},
		ownRules: model.ValidationRules{
			Standards: []model.Rule{
				{Type: "observability", Text: "Health and metrics endpoints are exposed", Enforcement: model.EnforceBlock},
			},
			Cost: []model.Rule{
				{Type: "scaling", Text: "Autoscaling carries an upper resource bound", Enforcement: model.EnforceBlock},
			},
		},
		ownDependencies: []string{"metrics-agent"},
		typeSteps: map[string][]model.Step{
			"operational-service": {
				{ID: "monitoring", Name: "Configure Monitoring", Action: "monitor:configure"},
				{ID: "alerts", Name: "Configure Alerts", Action: "alerts:configure"},
			},
			"monitoring-stack": {
				{ID: "monitoring", Name: "Configure Monitoring", Action: "monitor:configure"},
			},
		},
		composites: true,
	},
	model.PhaseGovernance: {
		keywords: []string{
			"governance", "policy enforcement", "policy", "compliance",
			"audit", "regulatory", "attestation",
		},
		ownTypes:   []string{"policy-enforced-service", "compliance-pipeline"},
		defaultTyp: "policy-enforced-service",
		ownCapabilities: []capabilityTag{
			{"policy-enforcement", "policy enforcement"},
			{"audit-trail", "audit trail"},
			{"compliance-reporting", "compliance reporting"},
		},
		features: []string{"policy-injection", "audit-configuration"},
		ownRules: model.ValidationRules{
			Security: []model.Rule{
				{Type: "policy", Text: "Security policies are enforced at admission", Enforcement: model.EnforceBlock},
			},
			Compliance: []model.Rule{
				{Type: "validation", Text: "Compliance validation passes before deploy", Enforcement: model.EnforceBlock},
				{Type: "audit", Text: "Audit logging is enabled for all mutations", Enforcement: model.EnforceBlock},
			},
		},
		ownDependencies: []string{"policy-engine"},
		typeSteps: map[string][]model.Step{
			"policy-enforced-service": {
				{ID: "policy", Name: "Validate Policies", Action: "validate:policy"},
				{ID: "audit", Name: "Configure Audit Trail", Action: "audit:configure"},
				{ID: "compliance", Name: "Validate Compliance", Action: "compliance:validate"},
			},
			"compliance-pipeline": {
				{ID: "compliance", Name: "Validate Compliance", Action: "compliance:validate"},
			},
		},
		composites: true,
	},
	model.PhaseIntentDriven: {
		keywords: []string{
			"intent-driven", "intent driven", "self-optimizing", "self-healing",
			"ai-powered", "ai powered", "adaptive", "autonomous",
		},
		ownTypes:   []string{"ai-powered-workflow", "adaptive-service"},
		defaultTyp: "ai-powered-workflow",
		ownCapabilities: []capabilityTag{
			{"intent-processing", "intent processing"},
			{"adaptive-optimization", "adaptive optimization"},
		},
		features: []string{"intent-processing", "adaptive-configuration"},
		ownRules: model.ValidationRules{
			Security: []model.Rule{
				{Type: "model-access", Text: "Model access is scoped to the capability", Enforcement: model.EnforceBlock},
			},
			Compliance: []model.Rule{
				{Type: "ai-review", Text: "AI-generated changes require human review", Enforcement: model.EnforceBlock},
			},
		},
		ownDependencies: []string{"ml-toolkit", "automation-sdk"},
		typeSteps: map[string][]model.Step{
			"ai-powered-workflow": {
				{ID: "intent", Name: "Process Intent", Action: "intent:process"},
				{ID: "adaptive", Name: "Configure Adaptive Behavior", Action: "adaptive:configure"},
				{ID: "ai-validate", Name: "Validate AI Outputs", Action: "validate:ai"},
			},
			"adaptive-service": {
				{ID: "adaptive", Name: "Configure Adaptive Behavior", Action: "adaptive:configure"},
			},
		},
		composites: true,
	},
}

// derived holds the cumulative views computed from configs. Lower-phase
// types, rules, capabilities, and dependencies carry forward into every
// higher phase, which is what makes phase monotonicity structural rather
// than a convention each table author must remember.
type derived struct {
	types        []string
	typeSet      map[string]bool
	rules        model.ValidationRules
	capabilities []capabilityTag
	dependencies []string
}

var (
	buildOnce sync.Once
	tables    map[model.Phase]derived
)

func buildTables() {
	buildOnce.Do(func() {
		tables = make(map[model.Phase]derived, len(configs))
		var acc derived
		acc.typeSet = map[string]bool{}
		for _, p := range model.AllPhases() {
			cfg := configs[p]
			cur := derived{
				types:        append(append([]string{}, acc.types...), cfg.ownTypes...),
				typeSet:      map[string]bool{},
				capabilities: append(append([]capabilityTag{}, acc.capabilities...), cfg.ownCapabilities...),
				dependencies: append(append([]string{}, acc.dependencies...), cfg.ownDependencies...),
				rules: model.ValidationRules{
					Security:   append(append([]model.Rule{}, acc.rules.Security...), cfg.ownRules.Security...),
					Compliance: append(append([]model.Rule{}, acc.rules.Compliance...), cfg.ownRules.Compliance...),
					Standards:  append(append([]model.Rule{}, acc.rules.Standards...), cfg.ownRules.Standards...),
					Cost:       append(append([]model.Rule{}, acc.rules.Cost...), cfg.ownRules.Cost...),
				},
			}
			for _, t := range cur.types {
				cur.typeSet[t] = true
			}
			tables[p] = cur
			acc = cur
		}
	})
}

func tableFor(p model.Phase) (derived, bool) {
	buildTables()
	d, ok := tables[p]
	return d, ok
}
