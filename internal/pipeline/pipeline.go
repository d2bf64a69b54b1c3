// Package pipeline sequences the four validation tiers into one run:
// L1 syntax, L2 static analysis, then - at full depth - L3 structure and
// L4 sandboxed execution. The orchestrator enforces the tier
// preconditions (nothing runs after a fatal L1 error; L2 warnings never
// block deeper tiers), aggregates findings into a single ordered result,
// and converts every failure mode, including its own panics, into a
// result instead of an error.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/sandbox"
	"github.com/tuivet/tuivet/internal/types"
	"github.com/tuivet/tuivet/internal/validators"
)

// Version is stamped into result metadata. Overridden at release time.
var Version = "0.1.0"

// SandboxRunner is the L4 capability the orchestrator depends on. The
// concrete executor lives in the sandbox package; tests plug in fakes.
type SandboxRunner interface {
	// Run executes source in isolation and reports the outcome
	Run(ctx context.Context, source string) *types.ValidationResult

	// Isolated reports whether the platform gives full isolation
	Isolated() bool
}

// Config holds orchestrator configuration.
type Config struct {
	// Timeout bounds each sandbox run (default sandbox.DefaultTimeout)
	Timeout time.Duration

	// ProjectDir is probed for the framework version (default ".")
	ProjectDir string

	// GoBin overrides the Go toolchain binary for the sandbox
	GoBin string

	// WorkRoot overrides where sandbox directories are created
	WorkRoot string

	// Sandbox overrides the L4 runner (defaults to the real executor)
	Sandbox SandboxRunner
}

// Orchestrator runs the tiered validation pipeline.
type Orchestrator struct {
	sandbox   SandboxRunner
	framework oracle.FrameworkInfo
}

// New creates a pipeline orchestrator.
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	projectDir := cfg.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	framework, err := oracle.Probe(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to probe framework: %w", err)
	}

	runner := cfg.Sandbox
	if runner == nil {
		runner, err = sandbox.NewExecutor(&sandbox.Config{
			Timeout:   cfg.Timeout,
			GoBin:     cfg.GoBin,
			WorkRoot:  cfg.WorkRoot,
			Framework: framework,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sandbox executor: %w", err)
		}
	}

	return &Orchestrator{
		sandbox:   runner,
		framework: framework,
	}, nil
}

// Validate runs the pipeline at the requested depth and returns one
// aggregated result. This method never returns a Go error and never
// panics past its boundary; infrastructure faults come back as a result
// with status error.
func (o *Orchestrator) Validate(ctx context.Context, source string, depth types.Depth) (res *types.ValidationResult) {
	meta := o.metadata()

	defer func() {
		if r := recover(); r != nil {
			res = &types.ValidationResult{
				Status: types.StatusError,
				Errors: []types.ValidationError{{
					Code:     "S403",
					Level:    types.LevelSandbox,
					Message:  fmt.Sprintf("Internal pipeline fault: %v", r),
					Severity: types.SeverityError,
				}},
				Summary:  types.Summary{Total: 1, Errors: 1},
				Metadata: meta,
			}
		}
	}()

	if !depth.IsValid() {
		depth = types.DepthFast
	}

	// L1: a fatal parse error short-circuits everything else.
	parsed, l1 := validators.Syntax(source)
	if l1.Status != types.StatusPass {
		out := types.NewResult(l1.Errors, meta)
		return out
	}

	var all []types.ValidationError

	// L2 findings are advisory toward deeper tiers: even hard L2 errors
	// do not stop L3/L4, they only shape the final status.
	l2 := validators.Static(parsed)
	all = append(all, l2.Errors...)

	if depth == types.DepthFull {
		if runtime.GOOS == "windows" {
			all = append(all, types.ValidationError{
				Code:     "D304",
				Level:    types.LevelStructure,
				Message:  "Structural checking has reduced coverage on Windows",
				Severity: types.SeverityWarning,
			})
		}

		l3 := validators.Structure(parsed)
		if l3.Status == types.StatusSkipped {
			meta.Skipped = append(meta.Skipped, "L3")
			all = append(all, types.ValidationError{
				Code:          "D300",
				Level:         types.LevelStructure,
				Message:       "Structural validation skipped: no recognizable application found",
				Severity:      types.SeverityWarning,
				FixSuggestion: "Declare a huh form or a Bubble Tea model so the component tree can be checked",
				LLMAction:     "Add a huh.NewForm construction (or an Init/Update/View model) to the program",
			})
		} else {
			all = append(all, l3.Errors...)
		}

		l4 := o.sandbox.Run(ctx, source)
		if l4.Status == types.StatusError {
			// Infrastructure fault: surface everything found so far
			// plus the fault, with the whole run marked as error.
			all = append(all, l4.Errors...)
			all = dedupe(all)
			return &types.ValidationResult{
				Status:   types.StatusError,
				Errors:   all,
				Summary:  types.Summarize(all),
				Metadata: meta,
			}
		}
		if !o.sandbox.Isolated() {
			meta.Notes = append(meta.Notes, "reduced sandbox isolation on this platform")
		}
		all = append(all, l4.Errors...)
	}

	all = dedupe(all)
	return types.NewResult(all, meta)
}

// dedupe drops exact (code, line) repeats, keeping first occurrences in
// detection order.
func dedupe(errs []types.ValidationError) []types.ValidationError {
	type seenKey struct {
		code string
		line int
	}
	seen := make(map[seenKey]bool, len(errs))
	out := errs[:0]
	for _, e := range errs {
		key := seenKey{code: e.Code, line: e.Line}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func (o *Orchestrator) metadata() types.Metadata {
	return types.Metadata{
		Version:   Version,
		GoVersion: runtime.Version(),
		Framework: o.framework.FormVersion,
		Platform:  runtime.GOOS,
	}
}
