package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tuivet/tuivet/internal/types"
)

// fakeSandbox is a pluggable L4 runner for orchestrator tests.
type fakeSandbox struct {
	result   *types.ValidationResult
	isolated bool
	runs     int
}

func (f *fakeSandbox) Run(ctx context.Context, source string) *types.ValidationResult {
	f.runs++
	if f.result != nil {
		return f.result
	}
	return types.NewResult(nil, types.Metadata{})
}

func (f *fakeSandbox) Isolated() bool { return f.isolated }

func newTestOrchestrator(t *testing.T, sb SandboxRunner) *Orchestrator {
	t.Helper()
	if sb == nil {
		sb = &fakeSandbox{isolated: true}
	}
	o, err := New(&Config{ProjectDir: t.TempDir(), Sandbox: sb})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return o
}

const passingApp = `package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

func main() {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Key("name"),
		),
	)
	if os.Getenv("TUIVET_SMOKE") != "" {
		fmt.Println("APP_CREATED")
		return
	}
	_ = form.Run()
}
`

func TestValidateParseFaultShortCircuits(t *testing.T) {
	sb := &fakeSandbox{isolated: true}
	o := newTestOrchestrator(t, sb)

	res := o.Validate(context.Background(), "package main\nfunc main() {", types.DepthFull)
	if res.Status != types.StatusFail {
		t.Fatalf("expected fail, got %s", res.Status)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("parse fault must yield exactly one finding, got %d", len(res.Errors))
	}
	if res.Errors[0].Level != types.LevelSyntax {
		t.Errorf("expected level 1 finding, got %d", res.Errors[0].Level)
	}
	if sb.runs != 0 {
		t.Error("sandbox must not run after a fatal L1 error")
	}
}

func TestValidateCleanFullDepth(t *testing.T) {
	sb := &fakeSandbox{isolated: true}
	o := newTestOrchestrator(t, sb)

	res := o.Validate(context.Background(), passingApp, types.DepthFull)
	if res.Status != types.StatusPass {
		t.Fatalf("expected pass, got %s: %+v", res.Status, res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected empty error list, got %+v", res.Errors)
	}
	if sb.runs != 1 {
		t.Errorf("expected one sandbox run, got %d", sb.runs)
	}
	if res.Summary.Total != 0 {
		t.Errorf("unexpected summary: %+v", res.Summary)
	}
}

func TestValidateFastDepthSkipsDeepTiers(t *testing.T) {
	sb := &fakeSandbox{isolated: true}
	o := newTestOrchestrator(t, sb)

	res := o.Validate(context.Background(), passingApp, types.DepthFast)
	if res.Status != types.StatusPass {
		t.Fatalf("expected pass, got %s", res.Status)
	}
	if sb.runs != 0 {
		t.Error("fast depth must not reach the sandbox")
	}
}

func TestValidateL2WarningsDoNotBlockDeepTiers(t *testing.T) {
	src := `package main

import (
	"strings"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = huh.NewForm(huh.NewGroup(huh.NewInput().Key("n")))
}
`
	sb := &fakeSandbox{isolated: true}
	o := newTestOrchestrator(t, sb)

	res := o.Validate(context.Background(), src, types.DepthFull)
	if res.Status != types.StatusPass {
		t.Fatalf("warnings alone must not fail, got %s: %+v", res.Status, res.Errors)
	}
	if len(res.FindingsByCode("W204")) != 1 {
		t.Errorf("expected unused-import warning, got %+v", res.Errors)
	}
	if sb.runs != 1 {
		t.Error("L2 warnings must not block L3/L4")
	}
}

func TestValidateL2ErrorsStillReachSandbox(t *testing.T) {
	src := `package main

import (
	"os/exec"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = exec.Command("ls")
	_ = huh.NewForm(huh.NewGroup(huh.NewInput().Key("n")))
}
`
	sb := &fakeSandbox{isolated: true}
	o := newTestOrchestrator(t, sb)

	res := o.Validate(context.Background(), src, types.DepthFull)
	if res.Status != types.StatusFail {
		t.Fatalf("expected fail, got %s", res.Status)
	}
	if sb.runs != 1 {
		t.Error("non-fatal L2 findings must not block deeper tiers")
	}
}

func TestValidateSkippedStructureRecordedInMetadata(t *testing.T) {
	src := `package main

import "fmt"

func main() {
	fmt.Println("no app here")
}
`
	o := newTestOrchestrator(t, nil)

	res := o.Validate(context.Background(), src, types.DepthFull)
	if res.Status != types.StatusPass {
		t.Fatalf("skipped L3 must not fail the run, got %s: %+v", res.Status, res.Errors)
	}
	found := false
	for _, tier := range res.Metadata.Skipped {
		if tier == "L3" {
			found = true
		}
	}
	if !found {
		t.Error("expected L3 in metadata skipped list")
	}
	if len(res.FindingsByCode("D300")) != 1 {
		t.Errorf("expected D300 advisory, got %+v", res.Errors)
	}
}

func TestValidateSandboxInfraFault(t *testing.T) {
	infra := types.NewResult([]types.ValidationError{{
		Code:     "S403",
		Level:    types.LevelSandbox,
		Message:  "Sandbox could not start: no go binary",
		Severity: types.SeverityError,
	}}, types.Metadata{})
	infra.Status = types.StatusError

	o := newTestOrchestrator(t, &fakeSandbox{result: infra, isolated: true})

	res := o.Validate(context.Background(), passingApp, types.DepthFull)
	if res.Status != types.StatusError {
		t.Fatalf("infrastructure faults must surface as status=error, got %s", res.Status)
	}
	if len(res.FindingsByCode("S403")) != 1 {
		t.Errorf("expected the fault entry, got %+v", res.Errors)
	}
}

func TestValidateReducedIsolationNoted(t *testing.T) {
	warn := types.NewResult([]types.ValidationError{{
		Code:     "S400",
		Level:    types.LevelSandbox,
		Message:  "Reduced sandbox isolation on this platform",
		Severity: types.SeverityWarning,
	}}, types.Metadata{})

	o := newTestOrchestrator(t, &fakeSandbox{result: warn, isolated: false})

	res := o.Validate(context.Background(), passingApp, types.DepthFull)
	if res.Status != types.StatusPass {
		t.Fatalf("isolation warnings must not fail, got %s", res.Status)
	}
	if len(res.Metadata.Notes) == 0 {
		t.Error("reduced isolation must be noted in metadata")
	}
	if len(res.FindingsByCode("S400")) != 1 {
		t.Errorf("expected S400 warning, got %+v", res.Errors)
	}
}

func TestDedupe(t *testing.T) {
	errs := []types.ValidationError{
		{Code: "E201", Line: 4, Message: "first"},
		{Code: "E201", Line: 4, Message: "repeat"},
		{Code: "E201", Line: 9, Message: "different line"},
		{Code: "W204", Line: 4, Message: "different code"},
	}
	out := dedupe(errs)
	if len(out) != 3 {
		t.Fatalf("expected 3 findings after dedupe, got %d", len(out))
	}
	if out[0].Message != "first" {
		t.Error("dedupe must keep the first occurrence")
	}
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.go")
	bad := filepath.Join(dir, "bad.go")
	if err := os.WriteFile(good, []byte(passingApp), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("package main\nfunc main() {"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.go")

	o := newTestOrchestrator(t, nil)
	results := o.ValidateFiles(context.Background(), []string{good, bad, missing}, types.DepthFast, BatchConfig{Concurrency: 2})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Path != good || results[0].Result.Status != types.StatusPass {
		t.Errorf("expected %s to pass, got %+v", good, results[0].Result.Status)
	}
	if results[1].Result.Status != types.StatusFail {
		t.Errorf("expected %s to fail, got %s", bad, results[1].Result.Status)
	}
	if results[2].Result.Status != types.StatusError {
		t.Errorf("unreadable file must be status=error, got %s", results[2].Result.Status)
	}
}
