package sandbox

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/types"
)

func TestNewExecutorDefaults(t *testing.T) {
	e, err := NewExecutor(nil)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	if e.timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, e.timeout)
	}
	if e.goBin != "go" {
		t.Errorf("expected go binary default, got %q", e.goBin)
	}
}

func TestBuildGoMod(t *testing.T) {
	e, err := NewExecutor(&Config{
		Framework: oracle.FrameworkInfo{FormVersion: "v0.7.0"},
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := e.buildGoMod()
	if err != nil {
		t.Fatalf("buildGoMod failed: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "module tuivet.sandbox/app") {
		t.Errorf("missing module statement:\n%s", text)
	}
	if !strings.Contains(text, oracle.FrameworkImport+" v0.7.0") {
		t.Errorf("expected pinned framework version:\n%s", text)
	}
	if !strings.Contains(text, oracle.RuntimeImport+" "+defaultRuntimeVersion) {
		t.Errorf("expected fallback runtime version:\n%s", text)
	}
}

func TestChildEnvScrubbed(t *testing.T) {
	t.Setenv("SECRET_TOKEN", "hunter2")
	e, err := NewExecutor(nil)
	if err != nil {
		t.Fatal(err)
	}
	env := e.childEnv()
	for _, kv := range env {
		if strings.HasPrefix(kv, "SECRET_TOKEN=") {
			t.Error("scrubbed environment leaked a non-allowlisted variable")
		}
	}
	found := false
	for _, kv := range env {
		if kv == SmokeEnv+"=1" {
			found = true
		}
	}
	if !found {
		t.Error("smoke probe flag missing from child environment")
	}
}

func TestRunCleanExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("override commands in this test are Unix-only")
	}
	e, err := NewExecutor(&Config{
		Timeout:  2 * time.Second,
		WorkRoot: t.TempDir(),
		Command:  []string{"true"},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := e.Run(context.Background(), "package main\nfunc main() {}\n")
	if res.Status != types.StatusPass {
		t.Fatalf("expected pass, got %s: %+v", res.Status, res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected no findings, got %+v", res.Errors)
	}
}

func TestRunRuntimeFault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("override commands in this test are Unix-only")
	}
	e, err := NewExecutor(&Config{
		Timeout:  2 * time.Second,
		WorkRoot: t.TempDir(),
		Command:  []string{"sh", "-c", "echo boom >&2; exit 3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := e.Run(context.Background(), "package main\nfunc main() {}\n")
	if res.Status != types.StatusFail {
		t.Fatalf("expected fail, got %s", res.Status)
	}
	findings := res.FindingsByCode("S402")
	if len(findings) != 1 {
		t.Fatalf("expected one S402 finding, got %+v", res.Errors)
	}
	if !strings.Contains(findings[0].Message, "boom") {
		t.Errorf("expected captured stderr in message, got %q", findings[0].Message)
	}
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("override commands in this test are Unix-only")
	}
	e, err := NewExecutor(&Config{
		Timeout:  150 * time.Millisecond,
		WorkRoot: t.TempDir(),
		Command:  []string{"sleep", "30"},
	})
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	res := e.Run(context.Background(), "package main\nfunc main() {}\n")
	elapsed := time.Since(start)

	if res.Status != types.StatusFail {
		t.Fatalf("expected fail, got %s", res.Status)
	}
	if len(res.FindingsByCode("S401")) != 1 {
		t.Fatalf("expected one S401 finding, got %+v", res.Errors)
	}
	if elapsed > 5*time.Second {
		t.Errorf("timeout did not terminate the child promptly (took %v)", elapsed)
	}
}

func TestRunSpawnFailureIsInfra(t *testing.T) {
	e, err := NewExecutor(&Config{
		Timeout:  time.Second,
		WorkRoot: t.TempDir(),
		Command:  []string{"/nonexistent/binary/for/tuivet/tests"},
	})
	if err != nil {
		t.Fatal(err)
	}
	res := e.Run(context.Background(), "package main\nfunc main() {}\n")
	if res.Status != types.StatusError {
		t.Fatalf("spawn failure must be status=error, got %s", res.Status)
	}
	if len(res.FindingsByCode("S403")) != 1 {
		t.Fatalf("expected one S403 finding, got %+v", res.Errors)
	}
}

func TestRunCancellation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("override commands in this test are Unix-only")
	}
	e, err := NewExecutor(&Config{
		Timeout:  10 * time.Second,
		WorkRoot: t.TempDir(),
		Command:  []string{"sleep", "30"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := e.Run(ctx, "package main\nfunc main() {}\n")
	if res.Status != types.StatusError {
		t.Fatalf("cancellation is an infrastructure outcome, got %s", res.Status)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation did not terminate the child promptly")
	}
}
