package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tuivet/tuivet/internal/history"
	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/sandbox"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the installation and environment health",
	Long: `Run health checks to diagnose common configuration and environment
issues.

This command checks for:
- Go toolchain availability (required by the sandbox tier)
- Framework versions resolvable from the working directory
- Sandbox isolation support on this platform
- Run log accessibility
- AI credentials (optional, for --ai fixes)

Exit codes:
  0 - All checks passed
  1 - Warnings only (reduced functionality)
  2 - Critical failures`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDoctor())
	},
}

func runDoctor() int {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("Running tuivet health checks...\n\n")

	var warnings, failures int

	fmt.Printf("%s Go toolchain\n", cyan("→"))
	goBin := cfg.GoBin
	if goBin == "" {
		goBin = "go"
	}
	if path, err := exec.LookPath(goBin); err != nil {
		failures++
		fmt.Printf("  %s %q not found; the sandbox tier cannot run\n", red("✗"), goBin)
	} else {
		fmt.Printf("  %s %s\n", green("✓"), path)
	}

	fmt.Printf("%s Framework versions\n", cyan("→"))
	info, err := oracle.Probe(".")
	switch {
	case err != nil:
		warnings++
		fmt.Printf("  %s probe failed: %v\n", yellow("!"), err)
	case info.Available():
		fmt.Printf("  %s huh %s, bubbletea %s\n", green("✓"), info.FormVersion, info.RuntimeVersion)
	default:
		warnings++
		fmt.Printf("  %s no go.mod with framework requirements here; sandbox modules use pinned defaults\n", yellow("!"))
	}

	fmt.Printf("%s Sandbox isolation\n", cyan("→"))
	executor, err := sandbox.NewExecutor(&sandbox.Config{GoBin: cfg.GoBin, WorkRoot: cfg.WorkRoot})
	switch {
	case err != nil:
		failures++
		fmt.Printf("  %s %v\n", red("✗"), err)
	case executor.Isolated():
		fmt.Printf("  %s process-group isolation available\n", green("✓"))
	default:
		warnings++
		fmt.Printf("  %s reduced isolation on %s; runaway children may survive a timeout\n", yellow("!"), runtime.GOOS)
	}

	fmt.Printf("%s Run log\n", cyan("→"))
	if store, err := history.Open(cfg.HistoryPath); err != nil {
		warnings++
		fmt.Printf("  %s cannot open %s: %v\n", yellow("!"), cfg.HistoryPath, err)
	} else {
		store.Close()
		fmt.Printf("  %s %s\n", green("✓"), cfg.HistoryPath)
	}

	fmt.Printf("%s AI credentials\n", cyan("→"))
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		warnings++
		fmt.Printf("  %s ANTHROPIC_API_KEY not set; 'fix --ai' is unavailable\n", yellow("!"))
	} else {
		fmt.Printf("  %s ANTHROPIC_API_KEY set\n", green("✓"))
	}

	fmt.Println()
	switch {
	case failures > 0:
		fmt.Printf("%s %d check(s) failed\n", red("✗"), failures)
		return 2
	case warnings > 0:
		fmt.Printf("%s %d warning(s)\n", yellow("!"), warnings)
		return 1
	default:
		fmt.Printf("%s All checks passed\n", green("✓"))
		return 0
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
