package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/ai"
	"github.com/tuivet/tuivet/internal/rules"
	"github.com/tuivet/tuivet/internal/types"
)

var (
	fixInPlace bool
	fixOutput  string
	fixWithAI  bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Apply one round of deterministic corrections",
	Long: `Validate the program and apply every matching correction rule once,
without the iterative healing loop. The corrected source goes to stdout
unless --in-place or --output is given.

With --ai, findings that no deterministic rule covers are sent to the
Anthropic API for a proposed rewrite (requires ANTHROPIC_API_KEY). The
proposal is printed; it is not validated or written automatically.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runFix(args[0]))
	},
}

func runFix(path string) int {
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
	ctx := context.Background()
	result := orch.Validate(ctx, source, configuredDepth())
	if result.Status == types.StatusError {
		fmt.Fprintln(os.Stderr, "Error: validation could not complete")
		return 2
	}

	engine := rules.NewEngine()
	var (
		edits   []rules.Edit
		spans   []rules.Span
		applied []string
	)
	for _, match := range engine.Match(result) {
		for _, finding := range match.Findings {
			edit, ok := match.Rule.Apply(source, finding)
			if !ok {
				continue
			}
			conflict := false
			for _, s := range spans {
				if edit.Span.Overlaps(s) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}
			spans = append(spans, edit.Span)
			edits = append(edits, edit)
			applied = append(applied, match.Rule.ID)
		}
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if len(edits) == 0 {
		if result.Status == types.StatusPass {
			fmt.Fprintf(os.Stderr, "%s Nothing to fix\n", green("✓"))
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s No deterministic rule covers the remaining findings\n", yellow("!"))
		if fixWithAI {
			return suggestWithAI(ctx, source, result)
		}
		return 1
	}

	fixed := rules.ApplyEdits(source, edits)
	for _, id := range applied {
		fmt.Fprintf(os.Stderr, "%s %s\n", green("✓"), id)
	}

	switch {
	case fixInPlace:
		if err := os.WriteFile(path, []byte(fixed), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", path, err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "%s Updated %s\n", green("✓"), path)
	case fixOutput != "":
		if err := os.WriteFile(fixOutput, []byte(fixed), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", fixOutput, err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "%s Wrote %s\n", green("✓"), fixOutput)
	default:
		fmt.Print(fixed)
	}
	return 0
}

func suggestWithAI(ctx context.Context, source string, result *types.ValidationResult) int {
	fixer, err := ai.NewFixer(&ai.Config{Model: cfg.Model})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	proposal, err := fixer.Suggest(ctx, source, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	fmt.Print(proposal)
	return 0
}

func init() {
	fixCmd.Flags().BoolVarP(&fixInPlace, "in-place", "i", false, "rewrite the input file")
	fixCmd.Flags().StringVarP(&fixOutput, "output", "o", "", "write the corrected source to this file")
	fixCmd.Flags().BoolVar(&fixWithAI, "ai", false, "ask the AI model when no rule applies")
	rootCmd.AddCommand(fixCmd)
}
