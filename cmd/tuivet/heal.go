package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/healing"
	"github.com/tuivet/tuivet/internal/history"
	"github.com/tuivet/tuivet/internal/report"
)

var (
	healInPlace bool
	healOutput  string
)

var healCmd = &cobra.Command{
	Use:   "heal <file>",
	Short: "Repair a program with the iterative healing loop",
	Long: `Run the validate-fix-revalidate loop over the program until it is
clean, no rule applies, or the iteration ceiling is reached
(--max-iterations, default 5).

The per-round report shows which rules fired and the diff each round
produced. Write the healed source back with --in-place or --output.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runHeal(args[0]))
	},
}

func runHeal(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", path, err)
		return 2
	}
	source := string(data)

	orch, err := newOrchestrator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	healer, err := newHealer(orch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	start := time.Now()
	sess := healer.Heal(context.Background(), source)
	recordHealing(path, sess, time.Since(start))

	if err := report.WriteSession(os.Stdout, sess, outputFormat()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if sess.FinalSource != source {
		green := color.New(color.FgGreen).SprintFunc()
		switch {
		case healInPlace:
			if err := os.WriteFile(path, []byte(sess.FinalSource), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", path, err)
				return 2
			}
			fmt.Fprintf(os.Stderr, "%s Updated %s\n", green("✓"), path)
		case healOutput != "":
			if err := os.WriteFile(healOutput, []byte(sess.FinalSource), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", healOutput, err)
				return 2
			}
			fmt.Fprintf(os.Stderr, "%s Wrote %s\n", green("✓"), healOutput)
		}
	}

	switch sess.State {
	case healing.StateConverged:
		return 0
	case healing.StateExhausted:
		return 1
	default:
		return 2
	}
}

func recordHealing(path string, sess *healing.Session, elapsed time.Duration) {
	run := &history.Run{
		File:       path,
		Depth:      configuredDepth(),
		Healed:     true,
		Iterations: sess.IterationCount,
		Converged:  sess.Converged,
		Duration:   elapsed,
	}
	if sess.FinalResult != nil {
		run.Status = sess.FinalResult.Status
		run.ErrorCount = sess.FinalResult.Summary.Errors
		run.WarningCount = sess.FinalResult.Summary.Warnings
	}
	recordRun(run)
}

func init() {
	healCmd.Flags().BoolVarP(&healInPlace, "in-place", "i", false, "rewrite the input file with the healed source")
	healCmd.Flags().StringVarP(&healOutput, "output", "o", "", "write the healed source to this file")
	rootCmd.AddCommand(healCmd)
}
