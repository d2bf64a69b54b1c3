// Package sandbox implements tier L4: executing the candidate program in
// an isolated child process under a wall-clock limit. The executor
// materializes a throwaway module in a fresh temp directory, spawns the
// Go toolchain with a scrubbed environment, and converts every runtime
// outcome - clean exit, crash, timeout, failure to spawn - into a
// ValidationResult. Nothing escapes the executor boundary except results.
package sandbox

import (
	"os/exec"
	"time"

	"github.com/tuivet/tuivet/internal/oracle"
)

// DefaultTimeout bounds one sandbox run unless overridden.
const DefaultTimeout = 5 * time.Second

// SmokeEnv is set in the child environment. Generated programs check it
// and construct their form then exit instead of entering the event loop,
// so a run proves constructibility without needing a TTY.
const SmokeEnv = "TUIVET_SMOKE"

// Config holds sandbox executor configuration.
type Config struct {
	// Timeout is the wall-clock limit per run (default DefaultTimeout)
	Timeout time.Duration

	// GoBin is the Go toolchain binary (default "go")
	GoBin string

	// WorkRoot is where throwaway module directories are created
	// (default the system temp directory)
	WorkRoot string

	// Framework pins the module versions written into the throwaway
	// go.mod; zero values fall back to known-good versions
	Framework oracle.FrameworkInfo

	// Command overrides the executed argv for testing; the default is
	// {GoBin, "run", "."}
	Command []string
}

// processController is the platform capability behind the executor:
// prepare a command for isolated execution and terminate it without
// leaking children. Implementations are selected at build time.
type processController interface {
	// setup configures platform process attributes before start
	setup(cmd *exec.Cmd)

	// terminate forcibly kills the process and any children it spawned
	terminate(cmd *exec.Cmd) error

	// isolated reports whether the platform gives a hard resource
	// ceiling (process-group control); false must be surfaced to the
	// caller as a warning, never silently ignored
	isolated() bool
}
