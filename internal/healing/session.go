// Package healing drives the validate-fix-revalidate loop. Each run is
// a bounded session: the engine validates a snapshot, asks the rule
// registry for applicable corrections, applies the non-conflicting ones,
// and resubmits until the program is clean or the retry budget runs out.
package healing

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/tuivet/tuivet/internal/types"
)

// State is the lifecycle position of a healing session.
type State string

const (
	StateRunning   State = "running"
	StateFixing    State = "fixing"
	StateConverged State = "converged"
	StateExhausted State = "exhausted"
	StateError     State = "error"
)

// Iteration records one fix round: the rules that fired, the ones that
// were pushed to the next round because their edits overlapped, the
// unified diff of the change, and the validation result of the
// transformed snapshot.
type Iteration struct {
	Number        int                     `json:"number"`
	AppliedRules  []string                `json:"applied_rules"`
	DeferredRules []string                `json:"deferred_rules,omitempty"`
	Diff          string                  `json:"diff,omitempty"`
	Result        *types.ValidationResult `json:"result"`
}

// Session is the full record of one healing invocation. It is built up
// by the engine and handed to the caller for reporting; it is never
// persisted. Results stored here are read-only snapshots.
type Session struct {
	ID             string                  `json:"id"`
	State          State                   `json:"state"`
	Iterations     []Iteration             `json:"iterations"`
	IterationCount int                     `json:"iteration_count"`
	Converged      bool                    `json:"converged"`
	FinalResult    *types.ValidationResult `json:"final_result"`
	FinalSource    string                  `json:"final_source"`
}

// unifiedDiff renders the change between two snapshots of the candidate
// source as a unified diff for session reporting.
func unifiedDiff(before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath("candidate.go"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("candidate.go", "candidate.go", before, edits))
}
