package validators

import (
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
	"unicode/utf8"

	"github.com/tuivet/tuivet/internal/types"
)

// Syntax is tier L1: parse the candidate source into a structural tree.
// On success it returns the parsed tree and a passing result; on failure
// the tree is nil and the result carries exactly one level-1 error.
// Parse failures are converted to results, never propagated as faults.
func Syntax(source string) (*Parsed, *types.ValidationResult) {
	if strings.TrimSpace(source) == "" {
		return nil, result([]types.ValidationError{{
			Code:      "E103",
			Level:     types.LevelSyntax,
			Message:   "Source cannot be empty",
			Severity:  types.SeverityError,
			LLMAction: "Write the Go program before validating it",
		}})
	}

	if !utf8.ValidString(source) {
		return nil, result([]types.ValidationError{{
			Code:      "E102",
			Level:     types.LevelSyntax,
			Message:   "Source is not valid UTF-8",
			Severity:  types.SeverityError,
			LLMAction: "Re-encode the file as UTF-8",
		}})
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", source, parser.ParseComments)
	if err != nil {
		line, col, msg := firstParseError(err)
		return nil, result([]types.ValidationError{{
			Code:      "E101",
			Level:     types.LevelSyntax,
			Message:   fmt.Sprintf("Syntax error at line %d: %s", line, msg),
			Line:      line,
			Column:    col,
			Severity:  types.SeverityError,
			LLMAction: fmt.Sprintf("Fix the syntax error at line %d: %s", line, msg),
		}})
	}

	return &Parsed{File: file, FileSet: fset, Source: source}, result(nil)
}

// firstParseError extracts the first positioned error from the parser.
// go/parser returns a scanner.ErrorList for syntax problems; anything
// else is reported without a position.
func firstParseError(err error) (line, col int, msg string) {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		first := list[0]
		return first.Pos.Line, first.Pos.Column, first.Msg
	}
	return 0, 0, err.Error()
}
