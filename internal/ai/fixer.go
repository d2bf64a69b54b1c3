// Package ai asks an Anthropic model to repair findings the
// deterministic correction rules cannot handle. It is strictly
// best-effort: whatever comes back is resubmitted to the pipeline, never
// trusted directly.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tuivet/tuivet/internal/types"
)

const (
	// ModelSonnet is the default model for code repair
	ModelSonnet = "claude-sonnet-4-5-20250929"

	// ModelHaiku is the cost-efficient model for small programs
	ModelHaiku = "claude-3-5-haiku-20241022"

	defaultMaxTokens = 4096
	maxAttempts      = 3
)

// DefaultModel returns the repair model, honoring the TUIVET_MODEL
// override.
func DefaultModel() string {
	if m := os.Getenv("TUIVET_MODEL"); m != "" {
		return m
	}
	return ModelSonnet
}

// Config holds fixer settings.
type Config struct {
	// APIKey overrides the ANTHROPIC_API_KEY environment variable
	APIKey string

	// Model overrides DefaultModel()
	Model string

	// MaxTokens caps the response size (default 4096)
	MaxTokens int
}

// Fixer requests whole-program rewrites from the model.
type Fixer struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewFixer creates a fixer.
func NewFixer(cfg *Config) (*Fixer, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel()
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Fixer{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Suggest sends the source and its findings to the model and returns
// the proposed replacement program.
func (f *Fixer) Suggest(ctx context.Context, source string, result *types.ValidationResult) (string, error) {
	prompt := buildFixPrompt(source, result)

	var response *anthropic.Message
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		resp, err := f.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(f.model),
			MaxTokens: f.maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		response = resp
		break
	}
	if response == nil {
		return "", fmt.Errorf("anthropic API call failed: %w", lastErr)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	code := ExtractCode(text)
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("model returned no code")
	}
	return code, nil
}

// buildFixPrompt lists the findings with their repair directives and
// asks for the complete corrected program.
func buildFixPrompt(source string, result *types.ValidationResult) string {
	var b strings.Builder
	b.WriteString("The following Go terminal UI program failed validation.\n\n")
	b.WriteString("Findings:\n")
	for _, finding := range result.Errors {
		fmt.Fprintf(&b, "- [%s %s] %s", finding.Level, finding.Code, finding.Message)
		if finding.Line > 0 {
			fmt.Fprintf(&b, " (line %d)", finding.Line)
		}
		b.WriteString("\n")
		if finding.LLMAction != "" {
			fmt.Fprintf(&b, "  Action: %s\n", finding.LLMAction)
		}
	}
	b.WriteString("\nProgram:\n```go\n")
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")
	b.WriteString("Return the complete corrected program in a single ```go code block. ")
	b.WriteString("Fix every finding, change nothing else, and keep the program runnable with `go run`.")
	return b.String()
}

// ExtractCode pulls the first fenced code block out of a model
// response, or returns the trimmed response when there is no fence.
func ExtractCode(response string) string {
	start := strings.Index(response, "```")
	if start < 0 {
		return strings.TrimSpace(response)
	}
	rest := response[start+3:]
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		// Drop the language tag on the fence line.
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, "\n") + "\n"
}
