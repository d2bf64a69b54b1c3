package oracle

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// FrameworkInfo describes the framework modules visible to a project.
type FrameworkInfo struct {
	// FormVersion is the huh module version, empty if not required
	FormVersion string

	// RuntimeVersion is the bubbletea module version, empty if not required
	RuntimeVersion string
}

// Available reports whether the form framework is present, which is what
// the sandbox needs to materialize a runnable module.
func (f FrameworkInfo) Available() bool {
	return f.FormVersion != ""
}

// Probe reads the go.mod at or above dir and extracts the framework
// module versions. A missing or unparsable go.mod is not an error - the
// caller degrades gracefully - so Probe only fails on I/O problems with
// an existing file.
func Probe(dir string) (FrameworkInfo, error) {
	var info FrameworkInfo

	path, ok := findGoMod(dir)
	if !ok {
		return info, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return info, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mf, err := modfile.Parse(path, data, nil)
	if err != nil {
		// A broken go.mod means no framework info, not a probe failure.
		return info, nil
	}

	for _, req := range mf.Require {
		switch req.Mod.Path {
		case FrameworkImport:
			info.FormVersion = req.Mod.Version
		case RuntimeImport:
			info.RuntimeVersion = req.Mod.Version
		}
	}
	return info, nil
}

// findGoMod walks from dir toward the filesystem root looking for go.mod.
func findGoMod(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
