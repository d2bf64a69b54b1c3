package healing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuivet/tuivet/internal/rules"
	"github.com/tuivet/tuivet/internal/types"
)

// DefaultMaxIterations is the hard ceiling on fix rounds per session.
const DefaultMaxIterations = 5

// Validator runs the tiered pipeline over one source snapshot.
type Validator interface {
	Validate(ctx context.Context, source string, depth types.Depth) *types.ValidationResult
}

// Config carries the healing engine dependencies. The rule registry is
// an explicit value here, constructed once by the caller; there is no
// ambient process-wide registry.
type Config struct {
	// Validator is the pipeline orchestrator. Required.
	Validator Validator

	// Rules is the correction registry. Defaults to the builtin set.
	Rules *rules.Engine

	// MaxIterations caps fix rounds. Defaults to DefaultMaxIterations.
	MaxIterations int

	// Depth selects the validation depth for every round. Defaults to
	// full so sandbox regressions are caught between fixes.
	Depth types.Depth
}

// Engine runs healing sessions. Safe for concurrent use; all mutable
// state lives in the per-call Session.
type Engine struct {
	validator Validator
	rules     *rules.Engine
	maxIters  int
	depth     types.Depth
}

// New creates a healing engine.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil || cfg.Validator == nil {
		return nil, fmt.Errorf("healing: validator is required")
	}
	e := &Engine{
		validator: cfg.Validator,
		rules:     cfg.Rules,
		maxIters:  cfg.MaxIterations,
		depth:     cfg.Depth,
	}
	if e.rules == nil {
		e.rules = rules.NewEngine()
	}
	if e.maxIters <= 0 {
		e.maxIters = DefaultMaxIterations
	}
	if e.depth == "" {
		e.depth = types.DepthFull
	}
	return e, nil
}

// Heal validates source and repeatedly applies matching corrections
// until no fixable finding remains or the iteration budget is spent.
// The session converges when the final result passes and nothing more
// is fixable; unfixable findings are returned verbatim on the final
// result. Infrastructure faults abort the session in StateError.
func (e *Engine) Heal(ctx context.Context, source string) *Session {
	sess := &Session{
		ID:    uuid.NewString(),
		State: StateRunning,
	}

	current := source
	result := e.validator.Validate(ctx, current, e.depth)

	for {
		if result.Status == types.StatusError {
			sess.State = StateError
			break
		}

		sess.State = StateFixing
		applied, deferred, next := e.fixRound(current, result)
		if len(applied) == 0 {
			if result.Status == types.StatusFail {
				sess.State = StateExhausted
			} else {
				sess.State = StateConverged
				sess.Converged = true
			}
			break
		}
		if sess.IterationCount >= e.maxIters {
			sess.State = StateExhausted
			break
		}
		if next == current {
			// A rule reported an edit that changed nothing; there is no
			// progress to be made.
			sess.State = StateExhausted
			break
		}

		diff := unifiedDiff(current, next)
		current = next

		sess.State = StateRunning
		result = e.validator.Validate(ctx, current, e.depth)
		sess.IterationCount++
		sess.Iterations = append(sess.Iterations, Iteration{
			Number:        sess.IterationCount,
			AppliedRules:  applied,
			DeferredRules: deferred,
			Diff:          diff,
			Result:        result,
		})
	}

	sess.FinalResult = result
	sess.FinalSource = current
	return sess
}

// fixRound computes one round of corrections against a single snapshot.
// Rules run in registry priority order; an edit whose span overlaps an
// already accepted edit is deferred to the next round rather than
// applied to shifted text.
func (e *Engine) fixRound(source string, result *types.ValidationResult) (applied, deferred []string, next string) {
	var (
		edits    []rules.Edit
		accepted []rules.Span
	)
	appliedSet := make(map[string]bool)
	deferredSet := make(map[string]bool)

	for _, match := range e.rules.Match(result) {
		for _, finding := range match.Findings {
			edit, ok := match.Rule.Apply(source, finding)
			if !ok {
				continue
			}
			if overlapsAny(edit.Span, accepted) {
				if !deferredSet[match.Rule.ID] {
					deferredSet[match.Rule.ID] = true
					deferred = append(deferred, match.Rule.ID)
				}
				continue
			}
			accepted = append(accepted, edit.Span)
			edits = append(edits, edit)
			if !appliedSet[match.Rule.ID] {
				appliedSet[match.Rule.ID] = true
				applied = append(applied, match.Rule.ID)
			}
		}
	}
	if len(edits) == 0 {
		return nil, nil, source
	}
	return applied, deferred, rules.ApplyEdits(source, edits)
}

func overlapsAny(s rules.Span, spans []rules.Span) bool {
	for _, other := range spans {
		if s.Overlaps(other) {
			return true
		}
	}
	return false
}
