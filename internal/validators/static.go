package validators

import (
	"fmt"
	"go/ast"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/types"
)

// knownPackageNames maps import paths whose package name differs from the
// last path element. Needed so usage tracking follows the real identifier.
var knownPackageNames = map[string]string{
	oracle.RuntimeImport: "tea",
}

// importInfo is one import declaration as seen by the analyzer.
type importInfo struct {
	path  string
	name  string // identifier the file refers to the package by
	line  int
	blank bool
	dot   bool
}

// Static is tier L2: a single read-only traversal of the parsed tree that
// flags forbidden imports, dangerous calls, blocking calls inside the
// cooperative event loop, a missing framework import, and unused imports.
// Findings are appended in pre-order traversal order. The orchestrator
// guarantees this never runs when L1 failed.
func Static(p *Parsed) *types.ValidationResult {
	a := &staticAnalyzer{parsed: p, used: make(map[string]bool)}
	a.collectImports()
	a.walk()
	a.checkRequiredImport()
	a.checkUnusedImports()
	return result(a.findings)
}

type staticAnalyzer struct {
	parsed   *Parsed
	imports  []importInfo
	used     map[string]bool // package identifiers referenced outside imports
	findings []types.ValidationError
}

func (a *staticAnalyzer) collectImports() {
	for _, spec := range a.parsed.File.Imports {
		impPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		info := importInfo{path: impPath}
		info.line, _ = a.parsed.position(spec.Pos())

		switch {
		case spec.Name == nil:
			if name, ok := knownPackageNames[impPath]; ok {
				info.name = name
			} else {
				info.name = path.Base(impPath)
			}
		case spec.Name.Name == "_":
			info.blank = true
		case spec.Name.Name == ".":
			info.dot = true
		default:
			info.name = spec.Name.Name
		}
		a.imports = append(a.imports, info)

		if forbidden, ok := oracle.LookupForbidden(impPath); ok {
			a.findings = append(a.findings, types.ValidationError{
				Code:          "E201",
				Level:         types.LevelStatic,
				Message:       fmt.Sprintf("Forbidden import %q (%s)", impPath, forbidden.Reason),
				Line:          info.line,
				Severity:      types.SeverityError,
				FixSuggestion: forbidden.Alternative,
				LLMAction:     fmt.Sprintf("Remove the import %q; %s", impPath, forbidden.Alternative),
			})
		}
	}
}

// walk visits every node once. Top-level function declarations are
// inspected with the cooperative-context flag set when they are Update or
// Init methods, since blocking there stalls the whole event loop.
func (a *staticAnalyzer) walk() {
	for _, decl := range a.parsed.File.Decls {
		if gen, isGen := decl.(*ast.GenDecl); isGen && gen.Tok == token.IMPORT {
			// Alias identifiers in the import block must not count as
			// usage.
			continue
		}
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			ast.Inspect(decl, a.visitor(false))
			continue
		}
		coop := fn.Recv != nil && (fn.Name.Name == "Update" || fn.Name.Name == "Init")
		// Signature types count toward import usage but are never a
		// cooperative context.
		ast.Inspect(fn.Type, a.visitor(false))
		if fn.Recv != nil {
			ast.Inspect(fn.Recv, a.visitor(false))
		}
		if fn.Body != nil {
			ast.Inspect(fn.Body, a.visitor(coop))
		}
	}
}

func (a *staticAnalyzer) visitor(coop bool) func(ast.Node) bool {
	return func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.SelectorExpr:
			if base, ok := node.X.(*ast.Ident); ok {
				a.used[base.Name] = true
			}
		case *ast.Ident:
			a.used[node.Name] = true
		case *ast.CallExpr:
			a.checkCall(node, coop)
		}
		return true
	}
}

func (a *staticAnalyzer) checkCall(call *ast.CallExpr, coop bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	base, ok := sel.X.(*ast.Ident)
	if !ok {
		return
	}
	line, _ := a.parsed.position(call.Pos())

	// Dangerous calls are flagged through the import table so renamed
	// imports cannot hide them.
	if impPath, found := a.resolvePackage(base.Name); found {
		if forbidden, isForbidden := oracle.LookupForbidden(impPath); isForbidden {
			a.findings = append(a.findings, types.ValidationError{
				Code:          "E201",
				Level:         types.LevelStatic,
				Message:       fmt.Sprintf("Dangerous call %s.%s (%s)", base.Name, sel.Sel.Name, forbidden.Reason),
				Line:          line,
				Severity:      types.SeverityError,
				FixSuggestion: forbidden.Alternative,
				LLMAction:     fmt.Sprintf("Remove the %s.%s call on line %d; %s", base.Name, sel.Sel.Name, line, forbidden.Alternative),
			})
			return
		}
	}

	if !coop {
		return
	}
	if blocking, isBlocking := oracle.LookupBlocking(base.Name, sel.Sel.Name); isBlocking {
		a.findings = append(a.findings, types.ValidationError{
			Code:          "E202",
			Level:         types.LevelStatic,
			Message:       fmt.Sprintf("Blocking call %s.%s inside the event loop", base.Name, sel.Sel.Name),
			Line:          line,
			Severity:      types.SeverityError,
			FixSuggestion: blocking.Replacement,
			LLMAction:     fmt.Sprintf("Replace %s.%s on line %d: %s", base.Name, sel.Sel.Name, line, blocking.Replacement),
		})
	}
}

// resolvePackage maps a package identifier back to its import path.
func (a *staticAnalyzer) resolvePackage(name string) (string, bool) {
	for _, imp := range a.imports {
		if !imp.blank && !imp.dot && imp.name == name {
			return imp.path, true
		}
	}
	return "", false
}

func (a *staticAnalyzer) checkRequiredImport() {
	for _, imp := range a.imports {
		if imp.path == oracle.FrameworkImport {
			return
		}
	}
	a.findings = append(a.findings, types.ValidationError{
		Code:          "W203",
		Level:         types.LevelStatic,
		Message:       fmt.Sprintf("Required framework import %q is missing", oracle.FrameworkImport),
		Severity:      types.SeverityWarning,
		FixSuggestion: "Add the framework import so the form components resolve",
		LLMAction:     fmt.Sprintf("Add the import %q to the import block", oracle.FrameworkImport),
	})
}

func (a *staticAnalyzer) checkUnusedImports() {
	for _, imp := range a.imports {
		if imp.blank || imp.dot {
			continue
		}
		// The framework imports are exempt: removing and reinserting
		// them would oscillate against the missing-import check.
		if imp.path == oracle.FrameworkImport || imp.path == oracle.RuntimeImport {
			continue
		}
		if a.used[imp.name] {
			continue
		}
		a.findings = append(a.findings, types.ValidationError{
			Code:          "W204",
			Level:         types.LevelStatic,
			Message:       fmt.Sprintf("Unused import %q", imp.path),
			Line:          imp.line,
			Severity:      types.SeverityWarning,
			FixSuggestion: "Delete the import; Go programs must not import packages they never reference",
			LLMAction:     fmt.Sprintf("Remove the unused import %q on line %d", imp.path, imp.line),
		})
	}
}

// QuotedImport extracts the first double-quoted import path from a
// finding message. Correction rules use it to locate the target line.
func QuotedImport(message string) string {
	start := strings.Index(message, `"`)
	if start < 0 {
		return ""
	}
	rest := message[start+1:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
