// Package report renders validation results and healing sessions for
// terminals and machine consumers.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tuivet/tuivet/internal/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// WriteResult renders one validation result to w.
func WriteResult(w io.Writer, result *types.ValidationResult, format Format) error {
	if format == FormatJSON {
		data, err := result.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	writeText(w, result)
	return nil
}

func writeText(w io.Writer, result *types.ValidationResult) {
	bold := color.New(color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", statusBadge(result.Status), bold(statusHeadline(result)))

	for _, finding := range result.Errors {
		fmt.Fprintf(w, "  %s %s %s\n", severityBadge(finding.Severity), findingLocation(finding), finding.Message)
		if finding.FixSuggestion != "" {
			fmt.Fprintf(w, "      %s\n", gray(finding.FixSuggestion))
		}
	}

	if len(result.Metadata.Skipped) > 0 {
		fmt.Fprintf(w, "  %s\n", gray("skipped tiers: "+strings.Join(result.Metadata.Skipped, ", ")))
	}
	for _, note := range result.Metadata.Notes {
		fmt.Fprintf(w, "  %s\n", gray(note))
	}
}

func statusHeadline(result *types.ValidationResult) string {
	switch result.Status {
	case types.StatusPass:
		if result.Summary.Warnings > 0 {
			return fmt.Sprintf("passed with %d warning(s)", result.Summary.Warnings)
		}
		return "passed"
	case types.StatusFail:
		return fmt.Sprintf("failed with %d error(s), %d warning(s)", result.Summary.Errors, result.Summary.Warnings)
	case types.StatusError:
		return "validation could not complete"
	default:
		return string(result.Status)
	}
}

func statusBadge(status types.Status) string {
	switch status {
	case types.StatusPass:
		return color.New(color.FgGreen, color.Bold).Sprint("PASS")
	case types.StatusFail:
		return color.New(color.FgRed, color.Bold).Sprint("FAIL")
	case types.StatusError:
		return color.New(color.FgRed, color.Bold).Sprint("ERROR")
	case types.StatusSkipped:
		return color.New(color.FgYellow).Sprint("SKIP")
	default:
		return string(status)
	}
}

func severityBadge(severity types.Severity) string {
	if severity == types.SeverityError {
		return color.New(color.FgRed).Sprint("error")
	}
	return color.New(color.FgYellow).Sprint("warn ")
}

func findingLocation(finding types.ValidationError) string {
	gray := color.New(color.FgHiBlack).SprintFunc()
	loc := fmt.Sprintf("[%s %s]", finding.Level, finding.Code)
	if finding.Line > 0 {
		loc += fmt.Sprintf(" line %d", finding.Line)
	}
	return gray(loc)
}
