// Package repl is the interactive shell: load a candidate program, run
// the pipeline over it, apply fixes, and inspect the working copy
// without leaving the session.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/tuivet/tuivet/internal/healing"
	"github.com/tuivet/tuivet/internal/pipeline"
	"github.com/tuivet/tuivet/internal/report"
	"github.com/tuivet/tuivet/internal/rules"
	"github.com/tuivet/tuivet/internal/types"
)

// REPL represents the interactive shell.
type REPL struct {
	orchestrator *pipeline.Orchestrator
	healer       *healing.Engine
	rl           *readline.Instance
	ctx          context.Context
	out          io.Writer
	commands     map[string]CommandHandler

	// working copy
	file   string
	source string
}

// CommandHandler handles a specific command.
type CommandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Orchestrator  *pipeline.Orchestrator
	MaxIterations int
	Out           io.Writer
}

// New creates a new REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg == nil || cfg.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}

	healer, err := healing.New(&healing.Config{
		Validator:     cfg.Orchestrator,
		Rules:         rules.NewEngine(),
		MaxIterations: cfg.MaxIterations,
	})
	if err != nil {
		return nil, err
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		orchestrator: cfg.Orchestrator,
		healer:       healer,
		out:          out,
		commands:     make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("tuivet> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(ctx, line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	r.ctx = ctx
	if handler, ok := r.commands[parts[0]]; ok {
		return handler(parts[1:])
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(r.out, "%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), parts[0])
	return nil
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["load"] = r.cmdLoad
	r.commands["validate"] = r.cmdValidate
	r.commands["heal"] = r.cmdHeal
	r.commands["show"] = r.cmdShow
	r.commands["save"] = r.cmdSave
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("tuivet interactive shell"))
	fmt.Fprintln(r.out, "Validate and heal terminal UI programs")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"load <file>", "Load a program as the working copy"},
		{"validate [fast|full]", "Run the pipeline over the working copy"},
		{"heal", "Run the healing loop and adopt the result"},
		{"show", "Print the working copy"},
		{"save [file]", "Write the working copy back to disk"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %-22s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *REPL) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	r.file = args[0]
	r.source = string(data)

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Loaded %s (%d bytes)\n", green("✓"), args[0], len(data))
	return nil
}

func (r *REPL) cmdValidate(args []string) error {
	if r.source == "" {
		return fmt.Errorf("no working copy; use 'load <file>' first")
	}
	depth := types.DepthFull
	if len(args) > 0 {
		switch args[0] {
		case "fast":
			depth = types.DepthFast
		case "full":
		default:
			return fmt.Errorf("usage: validate [fast|full]")
		}
	}
	result := r.orchestrator.Validate(r.ctx, r.source, depth)
	return report.WriteResult(r.out, result, report.FormatText)
}

func (r *REPL) cmdHeal(args []string) error {
	if r.source == "" {
		return fmt.Errorf("no working copy; use 'load <file>' first")
	}
	sess := r.healer.Heal(r.ctx, r.source)
	if err := report.WriteSession(r.out, sess, report.FormatText); err != nil {
		return err
	}
	if sess.FinalSource != r.source {
		r.source = sess.FinalSource
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(r.out, "%s Working copy updated; 'save' to write it back\n", green("✓"))
	}
	return nil
}

func (r *REPL) cmdShow(args []string) error {
	if r.source == "" {
		return fmt.Errorf("no working copy; use 'load <file>' first")
	}
	fmt.Fprintln(r.out, r.source)
	return nil
}

func (r *REPL) cmdSave(args []string) error {
	if r.source == "" {
		return fmt.Errorf("no working copy; use 'load <file>' first")
	}
	target := r.file
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("usage: save <file>")
	}
	if err := os.WriteFile(target, []byte(r.source), 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", target, err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Saved %s\n", green("✓"), target)
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return io.EOF
}
