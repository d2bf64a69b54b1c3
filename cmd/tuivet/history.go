package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/history"
	"github.com/tuivet/tuivet/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "Show past validation and healing runs",
	Long: `List recorded runs from the local run log, newest first. With a file
argument only that file's runs are shown.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runHistory(args))
	},
}

func runHistory(args []string) int {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer store.Close()

	ctx := context.Background()
	var runs []*history.Run
	if len(args) == 1 {
		runs, err = store.ForFile(ctx, args[0], historyLimit)
	} else {
		runs, err = store.Recent(ctx, historyLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return 0
	}

	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, run := range runs {
		mode := "validate"
		if run.Healed {
			mode = fmt.Sprintf("heal ×%d", run.Iterations)
			if run.Converged {
				mode += " ✓"
			}
		}
		fmt.Printf("%s  %-30s %-12s %s  %s\n",
			run.CreatedAt.Format(time.DateTime),
			run.File,
			mode,
			historyStatus(run.Status),
			gray(fmt.Sprintf("%de/%dw in %v", run.ErrorCount, run.WarningCount, run.Duration.Round(time.Millisecond))))
	}
	return 0
}

func historyStatus(status types.Status) string {
	switch status {
	case types.StatusPass:
		return color.New(color.FgGreen).Sprint("pass ")
	case types.StatusFail:
		return color.New(color.FgRed).Sprint("fail ")
	default:
		return color.New(color.FgRed, color.Bold).Sprint("error")
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to show")
	rootCmd.AddCommand(historyCmd)
}
