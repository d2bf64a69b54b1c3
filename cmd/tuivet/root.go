package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tuivet/tuivet/internal/config"
	"github.com/tuivet/tuivet/internal/healing"
	"github.com/tuivet/tuivet/internal/history"
	"github.com/tuivet/tuivet/internal/pipeline"
	"github.com/tuivet/tuivet/internal/report"
	"github.com/tuivet/tuivet/internal/types"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tuivet",
	Short: "Validate and heal terminal UI programs",
	Long: `tuivet runs generated terminal UI programs through a staged
validation pipeline: syntax parsing, static safety analysis, structural
form checks, and an isolated sandbox execution. Failing programs can be
repaired automatically with deterministic correction rules.

Exit codes:
  0 - Validation passed (or healing converged)
  1 - Findings remain
  2 - Validation could not complete`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .tuivet.yaml)")
	rootCmd.PersistentFlags().String("depth", "", "validation depth: fast or full")
	rootCmd.PersistentFlags().String("timeout", "", "sandbox timeout, e.g. 5s")
	rootCmd.PersistentFlags().String("format", "", "output format: text or json")
	rootCmd.PersistentFlags().String("history", "", "run log path")
	rootCmd.PersistentFlags().Int("max-iterations", 0, "healing fix-round ceiling")
	rootCmd.PersistentFlags().Int("concurrency", 0, "parallel files in batch validation")

	viper.SetEnvPrefix("TUIVET")
	viper.AutomaticEnv()
	viper.BindPFlag("depth", rootCmd.PersistentFlags().Lookup("depth"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("history", rootCmd.PersistentFlags().Lookup("history"))
	viper.BindPFlag("max_iterations", rootCmd.PersistentFlags().Lookup("max-iterations"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
}

// initConfig resolves the effective configuration: defaults, then the
// YAML file, then TUIVET_* environment, then explicit flags.
func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg = loaded

	if s := viper.GetString("depth"); s != "" {
		cfg.Depth = s
	}
	if s := viper.GetString("timeout"); s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid timeout %q: %v\n", s, err)
			os.Exit(2)
		}
		cfg.Timeout = parsed
	}
	if s := viper.GetString("format"); s != "" {
		cfg.Format = s
	}
	if s := viper.GetString("history"); s != "" {
		cfg.HistoryPath = s
	}
	if n := viper.GetInt("max_iterations"); n > 0 {
		cfg.MaxIterations = n
	}
	if n := viper.GetInt("concurrency"); n > 0 {
		cfg.Concurrency = n
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newOrchestrator() (*pipeline.Orchestrator, error) {
	return pipeline.New(&pipeline.Config{
		Timeout:  cfg.Timeout,
		GoBin:    cfg.GoBin,
		WorkRoot: cfg.WorkRoot,
	})
}

func newHealer(orch *pipeline.Orchestrator) (*healing.Engine, error) {
	return healing.New(&healing.Config{
		Validator:     orch,
		MaxIterations: cfg.MaxIterations,
		Depth:         configuredDepth(),
	})
}

func configuredDepth() types.Depth {
	if cfg.Depth == "fast" {
		return types.DepthFast
	}
	return types.DepthFull
}

func outputFormat() report.Format {
	if cfg.Format == "json" {
		return report.FormatJSON
	}
	return report.FormatText
}

// recordRun appends to the local run log. The log is advisory, so
// failures only warn.
func recordRun(run *history.Run) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run log unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
	}
}

// exitCode maps a result status to the process exit code.
func exitCode(status types.Status) int {
	switch status {
	case types.StatusPass, types.StatusSkipped:
		return 0
	case types.StatusFail:
		return 1
	default:
		return 2
	}
}
