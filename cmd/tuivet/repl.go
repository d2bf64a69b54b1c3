package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell for iterating on a single program:
load it, validate it, heal it, and save the result without re-running
the command line each time.

Type 'help' in the shell for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		orch, err := newOrchestrator()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		r, err := repl.New(&repl.Config{
			Orchestrator:  orch,
			MaxIterations: cfg.MaxIterations,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create shell: %v\n", err)
			os.Exit(2)
		}

		if err := r.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
