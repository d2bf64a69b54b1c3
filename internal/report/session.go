package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tuivet/tuivet/internal/healing"
)

// WriteSession renders a healing session to w.
func WriteSession(w io.Writer, sess *healing.Session, format Format) error {
	if format == FormatJSON {
		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	writeSessionText(w, sess)
	return nil
}

func writeSessionText(w io.Writer, sess *healing.Session) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s %s\n", stateBadge(sess.State),
		bold(fmt.Sprintf("healing finished after %d fix round(s)", sess.IterationCount)),
		gray("session "+sess.ID))

	for _, iter := range sess.Iterations {
		fmt.Fprintf(w, "\n%s applied %s\n", cyan(fmt.Sprintf("round %d:", iter.Number)),
			strings.Join(iter.AppliedRules, ", "))
		if len(iter.DeferredRules) > 0 {
			fmt.Fprintf(w, "  %s\n", gray("deferred: "+strings.Join(iter.DeferredRules, ", ")))
		}
		if iter.Diff != "" {
			writeDiff(w, iter.Diff)
		}
	}

	if sess.FinalResult != nil {
		fmt.Fprintln(w)
		writeText(w, sess.FinalResult)
	}
}

func writeDiff(w io.Writer, diff string) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			fmt.Fprintf(w, "  %s\n", gray(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(w, "  %s\n", green(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(w, "  %s\n", red(line))
		default:
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func stateBadge(state healing.State) string {
	switch state {
	case healing.StateConverged:
		return color.New(color.FgGreen, color.Bold).Sprint("CONVERGED")
	case healing.StateExhausted:
		return color.New(color.FgYellow, color.Bold).Sprint("EXHAUSTED")
	case healing.StateError:
		return color.New(color.FgRed, color.Bold).Sprint("ERROR")
	default:
		return strings.ToUpper(string(state))
	}
}
