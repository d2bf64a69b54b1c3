package types

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Level identifies the validation tier that produced a finding.
type Level int

const (
	LevelSyntax    Level = 1 // L1: parse
	LevelStatic    Level = 2 // L2: static analysis
	LevelStructure Level = 3 // L3: component tree
	LevelSandbox   Level = 4 // L4: sandboxed execution
)

// IsValid checks if the level value is valid
func (l Level) IsValid() bool {
	return l >= LevelSyntax && l <= LevelSandbox
}

func (l Level) String() string {
	return fmt.Sprintf("L%d", int(l))
}

// Severity classifies a finding. Warnings alone never force a fail status.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	return s == SeverityError || s == SeverityWarning
}

// Status represents the overall outcome of a validation run.
//
// StatusError is reserved for infrastructure failures (e.g. the sandbox
// process could not start). Validator-reported findings produce StatusFail.
// StatusSkipped only appears on per-tier results (a tier that could not
// run on this input or platform); the orchestrator never returns it as the
// top-level status.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusFail, StatusError, StatusSkipped:
		return true
	}
	return false
}

// codePattern is the error-code grammar: letter (E=error, W=warning,
// D=structural, S=sandbox), tier digit 1-4, then sequence digits.
// Downstream tooling matches on this format, so it must not drift.
var codePattern = regexp.MustCompile(`^[EWDS][1-4]\d{2}$`)

// ValidCode reports whether code conforms to the error-code grammar.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidationError is a single finding from one validation tier.
// It is immutable once created; validators build a fresh value per finding.
type ValidationError struct {
	// Code is the stable machine-readable identifier (e.g. "E201")
	Code string `json:"code"`

	// Level is the tier (1-4) that produced this finding
	Level Level `json:"level"`

	// Message is the human-readable description
	Message string `json:"message"`

	// Line is the 1-based source line, 0 when not applicable
	Line int `json:"line,omitempty"`

	// Column is the 1-based source column, 0 when not applicable
	Column int `json:"column,omitempty"`

	// Severity is "error" or "warning"
	Severity Severity `json:"severity"`

	// FixSuggestion is advice for a human reader
	FixSuggestion string `json:"fix_suggestion,omitempty"`

	// LLMAction is an imperative, machine-actionable correction instruction
	LLMAction string `json:"llm_action,omitempty"`
}

// Validate checks the finding against the code grammar and enum ranges.
func (e *ValidationError) Validate() error {
	if !ValidCode(e.Code) {
		return fmt.Errorf("invalid error code %q (want letter+tier+sequence, e.g. E201)", e.Code)
	}
	if !e.Level.IsValid() {
		return fmt.Errorf("invalid level: %d", e.Level)
	}
	if !e.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", e.Severity)
	}
	if e.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// Summary holds aggregate counts per severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Metadata describes the tool and environment a result was produced under.
type Metadata struct {
	// Version is the tuivet version
	Version string `json:"version"`

	// GoVersion is the runtime Go version
	GoVersion string `json:"go_version"`

	// Framework is the detected framework module version, empty if unknown
	Framework string `json:"framework,omitempty"`

	// Platform is the host GOOS
	Platform string `json:"platform"`

	// Skipped lists tiers that degraded to skipped (e.g. "L3")
	Skipped []string `json:"skipped,omitempty"`

	// Notes carries platform-capability caveats (reduced isolation etc.)
	Notes []string `json:"notes,omitempty"`
}

// ValidationResult is the canonical output of every tier and of the
// orchestrator. The caller owns it; nothing mutates a result after the
// producing stage returns it.
type ValidationResult struct {
	Status   Status            `json:"status"`
	Errors   []ValidationError `json:"errors"`
	Summary  Summary           `json:"summary"`
	Metadata Metadata          `json:"metadata"`
}

// NewResult builds a result from findings, deriving status and summary.
// Status is fail iff at least one finding has severity error; warnings
// alone leave the status at pass.
func NewResult(errors []ValidationError, meta Metadata) *ValidationResult {
	summary := Summarize(errors)
	status := StatusPass
	if summary.Errors > 0 {
		status = StatusFail
	}
	if errors == nil {
		errors = []ValidationError{}
	}
	return &ValidationResult{
		Status:   status,
		Errors:   errors,
		Summary:  summary,
		Metadata: meta,
	}
}

// Summarize counts findings by severity.
func Summarize(errors []ValidationError) Summary {
	s := Summary{Total: len(errors)}
	for _, e := range errors {
		switch e.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		}
	}
	return s
}

// HasErrors reports whether any finding has severity error.
func (r *ValidationResult) HasErrors() bool {
	return r.Summary.Errors > 0
}

// FindingsByCode returns the findings carrying the given code, in
// detection order.
func (r *ValidationResult) FindingsByCode(code string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}

// ToJSON renders the result in the canonical wire format.
func (r *ValidationResult) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}

// Depth selects how deep the pipeline runs.
type Depth string

const (
	// DepthFast runs L1+L2 only
	DepthFast Depth = "fast"

	// DepthFull runs L1-L4
	DepthFull Depth = "full"
)

// IsValid checks if the depth value is valid
func (d Depth) IsValid() bool {
	return d == DepthFast || d == DepthFull
}
