// Package rules holds the correction-rule registry used by the healing
// engine. A rule matches findings by error code and produces a pure,
// span-scoped line edit against a source snapshot; it either returns a
// complete edit or reports "not applicable" - transforms are never
// partially applied. The registry order is a fixed priority: removals
// run before the framework-import insertion, which runs before
// identifier insertion.
package rules

import (
	"sort"
	"strings"

	"github.com/tuivet/tuivet/internal/types"
)

// Span is an inclusive 1-based line range in a source snapshot. It marks
// the region a rule's edit depends on; two edits whose spans overlap
// must not be applied in the same healing round.
type Span struct {
	Start int
	End   int
}

// Overlaps reports whether two spans share any line.
func (s Span) Overlaps(other Span) bool {
	return s.Start <= other.End && other.Start <= s.End
}

// Edit is one span-scoped line transformation. The replaced range is
// [Start, End]; End == Start-1 encodes a pure insertion before Start.
// Span may be wider than the replaced range when the rule's correctness
// depends on surrounding lines (e.g. the whole import block).
type Edit struct {
	Span  Span
	Start int
	End   int
	Lines []string
}

// Rule is one deterministic correction. Apply inspects the snapshot and
// the finding and returns an edit, or false when the rule does not apply
// to this particular finding. Apply must be side-effect-free.
type Rule struct {
	// ID is the stable rule identifier
	ID string

	// Codes lists the error codes this rule addresses
	Codes []string

	// Apply builds the edit for one finding against one snapshot
	Apply func(source string, finding types.ValidationError) (Edit, bool)
}

// matchesCode reports whether the rule addresses the finding's code.
func (r *Rule) matchesCode(code string) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Match pairs a rule with the findings it accepted, in detection order.
type Match struct {
	Rule     *Rule
	Findings []types.ValidationError
}

// Engine is the immutable rule registry. It is constructed once and
// passed into the healing engine; it is read-only after initialization,
// so one engine is safe to share across concurrent sessions.
type Engine struct {
	rules []*Rule
}

// NewEngine creates an engine with the built-in registry.
func NewEngine() *Engine {
	return &Engine{rules: builtinRules()}
}

// NewEngineWithRules creates an engine with an explicit registry, in the
// given priority order. Used by tests and embedders.
func NewEngineWithRules(rules []*Rule) *Engine {
	return &Engine{rules: rules}
}

// Match returns the rules whose matcher accepts at least one finding of
// the result, preserving registry order, each paired with its findings.
func (e *Engine) Match(result *types.ValidationResult) []Match {
	var matches []Match
	for _, rule := range e.rules {
		var accepted []types.ValidationError
		for _, finding := range result.Errors {
			if rule.matchesCode(finding.Code) {
				accepted = append(accepted, finding)
			}
		}
		if len(accepted) > 0 {
			matches = append(matches, Match{Rule: rule, Findings: accepted})
		}
	}
	return matches
}

// ApplyEdits applies non-overlapping edits to a snapshot. Edits are
// applied bottom-up so earlier edits cannot shift the line numbers later
// ones were computed against.
func ApplyEdits(source string, edits []Edit) string {
	if len(edits) == 0 {
		return source
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	lines := strings.Split(source, "\n")
	for _, edit := range sorted {
		start := edit.Start - 1
		end := edit.End // exclusive index of the line after the range
		if start < 0 || start > len(lines) || end > len(lines) || end < start {
			continue
		}
		replaced := make([]string, 0, len(lines)-(end-start)+len(edit.Lines))
		replaced = append(replaced, lines[:start]...)
		replaced = append(replaced, edit.Lines...)
		replaced = append(replaced, lines[end:]...)
		lines = replaced
	}
	return strings.Join(lines, "\n")
}
