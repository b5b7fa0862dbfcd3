// Package engine exposes the pipeline's produced interface: generating a
// scaffolding bundle from free text or from an existing TemplateSpec, with
// optional interactive completion, preview, maturity assessment, and
// deployment through the GitOps workflow.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pforge-labs/pforge/internal/generator"
	"github.com/pforge-labs/pforge/internal/intent"
	"github.com/pforge-labs/pforge/internal/model"
	"github.com/pforge-labs/pforge/internal/registry"
	"github.com/pforge-labs/pforge/internal/spec"
	"github.com/pforge-labs/pforge/internal/workflow"
)

// QuestionFunc answers one clarifying question during interactive
// completion. The CLI wires a terminal prompt; tests script answers.
type QuestionFunc func(q intent.Question) (string, error)

// Options select the optional stages of a generation request.
type Options struct {
	Interactive        bool
	Preview            bool
	Deploy             bool
	MaturityAssessment bool

	// PhaseOverride pins the phase instead of classifying; zero lets the
	// classifier decide.
	PhaseOverride model.Phase
	// MinRequirements below which an intent counts as incomplete; zero
	// selects the default.
	MinRequirements int
	// MaxRounds bounds the interactive completion loop.
	MaxRounds int
	Ask       QuestionFunc
}

// DefaultMaxRounds bounds interactive completion when Options.MaxRounds
// is zero.
const DefaultMaxRounds = 3

// Result is the outcome of a generation request. Optional fields are nil
// unless the corresponding option was set and the stage ran.
type Result struct {
	Intent   *model.ParsedIntent
	Spec     *model.TemplateSpec
	Template *model.GeneratedArtifact
	Preview  *generator.Preview

	MaturityAssessment []string
	Deployment         *model.DeploymentRecord
	WorkflowState      workflow.State

	// UsedFallback reports that full generation failed recoverably and the
	// template is the minimal bootstrap-only artifact.
	UsedFallback bool
	Warnings     []string
}

// Engine wires the pipeline components. The workflow may be nil when
// deployment is never requested.
type Engine struct {
	reg *registry.Registry
	wf  *workflow.Workflow
	log *zap.Logger
}

// New assembles an engine. A nil logger disables logging.
func New(reg *registry.Registry, wf *workflow.Workflow, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{reg: reg, wf: wf, log: log}
}

// GenerateFromIntent parses prose into an intent, completes it
// interactively when requested, promotes it to a spec, and continues as
// GenerateFromSpec.
func (e *Engine) GenerateFromIntent(ctx context.Context, text string, opts Options) (*Result, error) {
	cur, err := e.parse(text, opts)
	if err != nil {
		return nil, err
	}

	minReqs := opts.MinRequirements
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	var warnings []string
	if opts.Interactive && opts.Ask != nil {
		cur, err = e.completeInteractively(cur, opts.Ask, minReqs, maxRounds)
		if err != nil {
			return nil, err
		}
	}

	// Remaining gaps are filled with phase-appropriate defaults; the
	// result records that defaults were applied rather than applying them
	// silently.
	if v := intent.Validate(cur, minReqs); len(v.Warnings) > 0 {
		cur, err = e.applyDefaults(cur, minReqs)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, "incomplete intent: phase-appropriate defaults applied")
	}

	if v := intent.Validate(cur, minReqs); !v.IsValid {
		return nil, fmt.Errorf("intent is invalid: %s", strings.Join(v.Errors, "; "))
	}

	s := spec.Promote(cur)
	result, err := e.GenerateFromSpec(ctx, s, opts)
	if result != nil {
		result.Intent = cur
		result.Warnings = append(warnings, result.Warnings...)
	}
	return result, err
}

// GenerateFromSpec generates the artifact bundle for a structured spec,
// bypassing the intent parser.
func (e *Engine) GenerateFromSpec(ctx context.Context, s *model.TemplateSpec, opts Options) (*Result, error) {
	result := &Result{Spec: s}

	artifact, err := generator.Generate(s)
	if err != nil {
		var unsupported *model.UnsupportedTypeError
		var downgrade *model.ValidationFailureError
		if errors.As(err, &unsupported) || errors.As(err, &downgrade) {
			// Configuration mismatches are fatal for the request; a fallback
			// artifact would paper over a caller bug.
			return nil, err
		}
		e.log.Warn("generation failed, falling back to minimal artifact", zap.Error(err))
		artifact = generator.Minimal(s)
		result.UsedFallback = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("generation fell back to a minimal artifact: %v", err))
	}
	result.Template = artifact

	if opts.Preview {
		result.Preview = generator.BuildPreview(artifact)
	}
	if opts.MaturityAssessment {
		result.MaturityAssessment = generator.EvolutionRecommendations(artifact)
	}

	if opts.Deploy {
		if e.wf == nil {
			return result, fmt.Errorf("deploy requested but no workflow is configured")
		}
		run, err := e.wf.Run(ctx, artifact, capabilityFor(s, artifact))
		if run != nil {
			result.Deployment = &run.Record
			result.WorkflowState = run.State
		}
		if err != nil {
			return result, fmt.Errorf("deploying %s: %w", artifact.Metadata.Name, err)
		}
	}

	return result, nil
}

func (e *Engine) parse(text string, opts Options) (*model.ParsedIntent, error) {
	if opts.PhaseOverride != 0 {
		return intent.ParseWithOverride(text, opts.PhaseOverride)
	}
	return intent.Parse(text)
}

// completeInteractively asks one clarifying question per missing field and
// refines the intent with the answers, up to maxRounds rounds.
func (e *Engine) completeInteractively(cur *model.ParsedIntent, ask QuestionFunc, minReqs, maxRounds int) (*model.ParsedIntent, error) {
	for round := 0; round < maxRounds; round++ {
		v := intent.Validate(cur, minReqs)
		if len(v.Warnings) == 0 {
			return cur, nil
		}

		var answers []string
		for _, q := range intent.Questions(cur, minReqs) {
			answer, err := ask(q)
			if err != nil {
				return nil, fmt.Errorf("collecting answer for %s: %w", q.Field, err)
			}
			if answer = strings.TrimSpace(answer); answer != "" {
				answers = append(answers, answer)
			}
		}
		if len(answers) == 0 {
			return cur, nil
		}

		refined, err := intent.Refine(cur, strings.Join(answers, ". "))
		if err != nil {
			return nil, err
		}
		cur = refined
	}
	return cur, nil
}

// applyDefaults refines the intent with each outstanding question's
// default answer.
func (e *Engine) applyDefaults(cur *model.ParsedIntent, minReqs int) (*model.ParsedIntent, error) {
	var defaults []string
	for _, q := range intent.Questions(cur, minReqs) {
		defaults = append(defaults, q.Default)
	}
	if len(defaults) == 0 {
		return cur, nil
	}
	return intent.Refine(cur, strings.Join(defaults, ". "))
}

// capabilityFor builds the registry entry a successful deployment
// registers.
func capabilityFor(s *model.TemplateSpec, a *model.GeneratedArtifact) model.Capability {
	return model.Capability{
		ID:          s.Metadata.Name,
		DisplayName: s.Metadata.Name,
		Description: s.Metadata.Description,
		Maturity:    a.Metadata.Maturity,
		Phase:       a.Metadata.Phase,
		Tags:        append([]string{}, a.Metadata.Tags...),
		Templates: []model.TemplateRef{
			{Name: a.Metadata.Name, Version: "0.1.0", Type: a.Metadata.Type},
		},
		Dependencies: append([]string{}, a.Metadata.Dependencies...),
	}
}
