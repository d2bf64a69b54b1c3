package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/history"
	"github.com/tuivet/tuivet/internal/pipeline"
	"github.com/tuivet/tuivet/internal/report"
	"github.com/tuivet/tuivet/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Run the validation pipeline over one or more programs",
	Long: `Validate Go terminal UI programs through the staged pipeline.

With a single file the full report is printed. With several files the
programs are validated concurrently and one summary line is printed per
file; use --format json for machine-readable output either way.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		orch, err := newOrchestrator()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		ctx := context.Background()
		depth := configuredDepth()

		if len(args) == 1 {
			os.Exit(validateOne(ctx, orch, args[0], depth))
		}
		os.Exit(validateMany(ctx, orch, args, depth))
	},
}

func validateOne(ctx context.Context, orch *pipeline.Orchestrator, path string, depth types.Depth) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", path, err)
		return 2
	}

	start := time.Now()
	result := orch.Validate(ctx, string(data), depth)
	recordRun(&history.Run{
		File:         path,
		Status:       result.Status,
		Depth:        depth,
		ErrorCount:   result.Summary.Errors,
		WarningCount: result.Summary.Warnings,
		Duration:     time.Since(start),
	})

	if err := report.WriteResult(os.Stdout, result, outputFormat()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return exitCode(result.Status)
}

func validateMany(ctx context.Context, orch *pipeline.Orchestrator, paths []string, depth types.Depth) int {
	start := time.Now()
	results := orch.ValidateFiles(ctx, paths, depth, pipeline.BatchConfig{
		Concurrency: int64(cfg.Concurrency),
	})
	elapsed := time.Since(start)

	worst := 0
	for _, fr := range results {
		recordRun(&history.Run{
			File:         fr.Path,
			Status:       fr.Result.Status,
			Depth:        depth,
			ErrorCount:   fr.Result.Summary.Errors,
			WarningCount: fr.Result.Summary.Warnings,
			Duration:     elapsed,
		})
		if code := exitCode(fr.Result.Status); code > worst {
			worst = code
		}
	}

	if outputFormat() == report.FormatJSON {
		if err := report.WriteBatch(os.Stdout, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		return worst
	}

	bold := color.New(color.Bold).SprintFunc()
	passed := 0
	for _, fr := range results {
		fmt.Printf("%-40s %s\n", fr.Path, statusWord(fr.Result))
		if fr.Result.Status == types.StatusPass {
			passed++
		}
	}
	fmt.Printf("\n%s %d/%d passed in %v\n", bold("Summary:"), passed, len(results), elapsed.Round(time.Millisecond))
	return worst
}

func statusWord(result *types.ValidationResult) string {
	switch result.Status {
	case types.StatusPass:
		return color.New(color.FgGreen).Sprint("pass")
	case types.StatusFail:
		return color.New(color.FgRed).Sprintf("fail (%d error(s))", result.Summary.Errors)
	default:
		return color.New(color.FgRed, color.Bold).Sprint("error")
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
