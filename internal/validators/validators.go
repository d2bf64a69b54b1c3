// Package validators implements the first three tiers of the validation
// pipeline: L1 syntax (go/parser), L2 static analysis (go/ast walk), and
// L3 structural validation of the declared component tree. Tier L4 lives
// in the sandbox package because its isolation concerns are separate.
//
// Validators never return Go errors for findings. Every failure mode of a
// tier is expressed as a ValidationResult; the orchestrator decides what
// runs next.
package validators

import (
	"go/ast"
	"go/token"

	"github.com/tuivet/tuivet/internal/types"
)

// Parsed carries the structural tree from L1 to the later analysis tiers
// so the source is parsed exactly once per pipeline run.
type Parsed struct {
	File    *ast.File
	FileSet *token.FileSet
	Source  string
}

// position resolves a token.Pos to 1-based line/column, 0 when absent.
func (p *Parsed) position(pos token.Pos) (line, col int) {
	if !pos.IsValid() {
		return 0, 0
	}
	position := p.FileSet.Position(pos)
	return position.Line, position.Column
}

// result wraps findings in a tier result without metadata; the
// orchestrator owns metadata.
func result(errors []types.ValidationError) *types.ValidationResult {
	return types.NewResult(errors, types.Metadata{})
}
