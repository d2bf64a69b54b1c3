package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/generate"
	"github.com/tuivet/tuivet/internal/types"
)

var (
	generateTitle  string
	generateOutput string
	generateCheck  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <sketch-file>",
	Short: "Generate a form program from an ASCII layout sketch",
	Long: `Turn an ASCII layout sketch into a runnable form program.

Sketch elements:
  ╭────╮ ... ╰────╯   container box
  [Label]             button
  [____] or [Name__]  input field (letters become the placeholder)
  │ text │            static label

Pass "-" to read the sketch from stdin. With --check the generated
program is run through the validation pipeline before it is emitted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runGenerate(args[0]))
	},
}

func runGenerate(path string) int {
	var (
		sketch []byte
		err    error
	)
	if path == "-" {
		sketch, err = io.ReadAll(os.Stdin)
	} else {
		sketch, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read sketch: %v\n", err)
		return 2
	}

	code := generate.FromSketch(string(sketch), &generate.Options{Title: generateTitle})

	if generateCheck {
		orch, err := newOrchestrator()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		result := orch.Validate(context.Background(), code, types.DepthFast)
		if result.Status != types.StatusPass {
			fmt.Fprintln(os.Stderr, "Error: generated program failed validation")
			for _, finding := range result.Errors {
				fmt.Fprintf(os.Stderr, "  [%s] %s\n", finding.Code, finding.Message)
			}
			return 2
		}
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(code), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", generateOutput, err)
			return 2
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s Wrote %s\n", green("✓"), generateOutput)
		return 0
	}
	fmt.Print(code)
	return 0
}

func init() {
	generateCmd.Flags().StringVarP(&generateTitle, "title", "t", "", "form title rendered above the fields")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write the program to this file")
	generateCmd.Flags().BoolVar(&generateCheck, "check", false, "validate the generated program before emitting it")
	rootCmd.AddCommand(generateCmd)
}
