package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/modfile"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/types"
)

// Fallback module versions for the throwaway go.mod when the host project
// pins nothing.
const (
	defaultFormVersion    = "v0.6.0"
	defaultRuntimeVersion = "v1.3.10"
)

// envAllowlist is the only part of the parent environment a sandboxed
// child may see. Everything else is scrubbed.
var envAllowlist = []string{
	"PATH", "HOME", "TMPDIR",
	"GOPATH", "GOCACHE", "GOMODCACHE", "GOPROXY", "GOFLAGS", "GOTOOLCHAIN",
}

// Executor runs candidate programs in isolation.
type Executor struct {
	timeout   time.Duration
	goBin     string
	workRoot  string
	framework oracle.FrameworkInfo
	command   []string
	proc      processController
}

// NewExecutor creates a sandbox executor.
func NewExecutor(cfg *Config) (*Executor, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	goBin := cfg.GoBin
	if goBin == "" {
		goBin = "go"
	}
	workRoot := cfg.WorkRoot
	if workRoot == "" {
		workRoot = os.TempDir()
	}
	return &Executor{
		timeout:   timeout,
		goBin:     goBin,
		workRoot:  workRoot,
		framework: cfg.Framework,
		command:   cfg.Command,
		proc:      newProcessController(),
	}, nil
}

// Isolated reports whether the platform gives full process-group
// isolation. Callers surface a reduced-isolation warning when false.
func (e *Executor) Isolated() bool {
	return e.proc.isolated()
}

// Run executes the source under the wall-clock limit and reports the
// outcome as a result. Only infrastructure failures (the child could not
// be started at all) produce a result with status error; crashes and
// timeouts are ordinary findings.
func (e *Executor) Run(ctx context.Context, source string) *types.ValidationResult {
	workdir, err := e.materialize(source)
	if err != nil {
		return e.infraFailure(err)
	}
	defer os.RemoveAll(workdir)

	argv := e.command
	if len(argv) == 0 {
		argv = []string{e.goBin, "run", "."}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workdir
	cmd.Env = e.childEnv()
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.proc.setup(cmd)

	if err := cmd.Start(); err != nil {
		return e.infraFailure(fmt.Errorf("failed to spawn sandbox process: %w", err))
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		// Cancellation must terminate the child, not just stop waiting.
		_ = e.proc.terminate(cmd)
		<-done
		return e.infraFailure(fmt.Errorf("sandbox canceled: %w", ctx.Err()))

	case <-timer.C:
		_ = e.proc.terminate(cmd)
		<-done
		return e.findings(types.ValidationError{
			Code:          "S401",
			Level:         types.LevelSandbox,
			Message:       fmt.Sprintf("Execution timeout after %s; possible infinite loop", e.timeout),
			Severity:      types.SeverityError,
			FixSuggestion: "Check for infinite loops and add early exit conditions",
			LLMAction:     "Find and break the infinite loop; the program must finish its smoke probe promptly",
		})

	case waitErr := <-done:
		if waitErr != nil {
			return e.findings(types.ValidationError{
				Code:          "S402",
				Level:         types.LevelSandbox,
				Message:       fmt.Sprintf("Execution failed: %s", faultSummary(waitErr, stderr.String())),
				Severity:      types.SeverityError,
				FixSuggestion: "Fix the runtime fault reported above",
				LLMAction:     fmt.Sprintf("Fix the runtime error: %s", faultSummary(waitErr, stderr.String())),
			})
		}
		return e.findings()
	}
}

// findings wraps sandbox findings in a result, attaching the
// reduced-isolation warning on platforms without process-group control.
func (e *Executor) findings(errs ...types.ValidationError) *types.ValidationResult {
	if !e.proc.isolated() {
		errs = append(errs, types.ValidationError{
			Code:          "S400",
			Level:         types.LevelSandbox,
			Message:       "Reduced sandbox isolation on this platform: no process-group resource ceiling",
			Severity:      types.SeverityWarning,
			FixSuggestion: "Run validation on a Unix host for full isolation guarantees",
		})
	}
	return types.NewResult(errs, types.Metadata{})
}

// infraFailure converts an environment fault into a status=error result.
// This is the only class of failure allowed to abort a session.
func (e *Executor) infraFailure(err error) *types.ValidationResult {
	r := types.NewResult([]types.ValidationError{{
		Code:      "S403",
		Level:     types.LevelSandbox,
		Message:   fmt.Sprintf("Sandbox could not start: %v", err),
		Severity:  types.SeverityError,
		LLMAction: "This is an environment problem, not a source defect; do not edit the program",
	}}, types.Metadata{})
	r.Status = types.StatusError
	return r
}

// materialize writes the candidate into a fresh single-file module.
func (e *Executor) materialize(source string) (string, error) {
	workdir := filepath.Join(e.workRoot, "tuivet-"+uuid.NewString()[:8])
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sandbox dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(workdir, "main.go"), []byte(source), 0644); err != nil {
		os.RemoveAll(workdir)
		return "", fmt.Errorf("failed to write candidate source: %w", err)
	}

	gomod, err := e.buildGoMod()
	if err != nil {
		os.RemoveAll(workdir)
		return "", err
	}
	if err := os.WriteFile(filepath.Join(workdir, "go.mod"), gomod, 0644); err != nil {
		os.RemoveAll(workdir)
		return "", fmt.Errorf("failed to write sandbox go.mod: %w", err)
	}

	return workdir, nil
}

// buildGoMod emits the throwaway module file requiring the framework.
func (e *Executor) buildGoMod() ([]byte, error) {
	mf := new(modfile.File)
	if err := mf.AddModuleStmt("tuivet.sandbox/app"); err != nil {
		return nil, fmt.Errorf("failed to build sandbox go.mod: %w", err)
	}
	if err := mf.AddGoStmt("1.25"); err != nil {
		return nil, fmt.Errorf("failed to build sandbox go.mod: %w", err)
	}

	formVersion := e.framework.FormVersion
	if formVersion == "" {
		formVersion = defaultFormVersion
	}
	runtimeVersion := e.framework.RuntimeVersion
	if runtimeVersion == "" {
		runtimeVersion = defaultRuntimeVersion
	}
	if err := mf.AddRequire(oracle.FrameworkImport, formVersion); err != nil {
		return nil, fmt.Errorf("failed to build sandbox go.mod: %w", err)
	}
	if err := mf.AddRequire(oracle.RuntimeImport, runtimeVersion); err != nil {
		return nil, fmt.Errorf("failed to build sandbox go.mod: %w", err)
	}

	return mf.Format()
}

// childEnv scrubs the environment down to the allowlist plus the smoke
// probe flag.
func (e *Executor) childEnv() []string {
	env := []string{SmokeEnv + "=1", "GO111MODULE=on"}
	for _, key := range envAllowlist {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return env
}

// faultSummary prefers captured stderr over the bare exit status and
// truncates it to a reportable size.
func faultSummary(waitErr error, stderr string) string {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = waitErr.Error()
	}
	const limit = 200
	if len(msg) > limit {
		msg = msg[:limit]
	}
	return msg
}
