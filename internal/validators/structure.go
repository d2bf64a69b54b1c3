package validators

import (
	"fmt"
	"go/ast"
	"sort"
	"strconv"
	"strings"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/types"
)

// field is one materialized component from the declared form tree.
type field struct {
	constructor string
	key         string
	line        int
	interactive bool
	known       bool
}

// Structure is tier L3: materialize the component tree the framework
// would build and check its invariants - recognized component kinds,
// keys on interactive fields, key uniqueness across the whole tree.
//
// When the source declares no recognizable application (no form
// construction and no event-loop model), the tier degrades to a skipped
// result rather than pass or fail; the three outcomes stay distinct so
// callers on installs without the framework can still use L1/L2 results.
func Structure(p *Parsed) *types.ValidationResult {
	b := &treeBuilder{parsed: p}
	b.build()

	if !b.appFound {
		r := result(nil)
		r.Status = types.StatusSkipped
		return r
	}

	var findings []types.ValidationError
	missingSeen := make(map[int]bool) // dedupe missing-key findings by line

	for _, f := range b.fields {
		if !f.known {
			findings = append(findings, types.ValidationError{
				Code:          "D301",
				Level:         types.LevelStructure,
				Message:       fmt.Sprintf("Unknown component kind huh.%s", f.constructor),
				Line:          f.line,
				Severity:      types.SeverityError,
				FixSuggestion: fmt.Sprintf("Use one of the supported constructors: %s", strings.Join(sortedConstructors(), ", ")),
				LLMAction:     fmt.Sprintf("Replace huh.%s on line %d with a supported field constructor", f.constructor, f.line),
			})
			continue
		}
		if f.interactive && f.key == "" && !missingSeen[f.line] {
			missingSeen[f.line] = true
			findings = append(findings, types.ValidationError{
				Code:          "D302",
				Level:         types.LevelStructure,
				Message:       fmt.Sprintf("Interactive field huh.%s has no key", f.constructor),
				Line:          f.line,
				Severity:      types.SeverityWarning,
				FixSuggestion: "Give every interactive field a unique .Key so its value can be read back",
				LLMAction:     fmt.Sprintf(`Append .Key("...") to the huh.%s builder chain on line %d`, f.constructor, f.line),
			})
		}
	}

	findings = append(findings, b.duplicateKeys()...)
	return result(findings)
}

type treeBuilder struct {
	parsed   *Parsed
	fields   []field
	appFound bool
}

// build scans for form construction and event-loop models. Fields are
// collected in source order so findings come out in detection order.
func (b *treeBuilder) build() {
	methods := make(map[string]map[string]bool) // receiver type -> method set

	ast.Inspect(b.parsed.File, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			if node.Recv != nil && len(node.Recv.List) == 1 {
				recv := receiverTypeName(node.Recv.List[0].Type)
				if recv != "" {
					if methods[recv] == nil {
						methods[recv] = make(map[string]bool)
					}
					methods[recv][node.Name.Name] = true
				}
			}
		case *ast.CallExpr:
			if name, ok := frameworkCall(node); ok && name == "NewForm" {
				b.appFound = true
				for _, arg := range node.Args {
					b.collectNode(arg)
				}
				return false // children already harvested
			}
		}
		return true
	})

	// A hand-rolled Bubble Tea model also counts as an application.
	for _, set := range methods {
		if set["Init"] && set["Update"] && set["View"] {
			b.appFound = true
		}
	}
}

// collectNode resolves one builder chain down to its root constructor,
// extracting the .Key argument if present. Containers recurse into their
// children; everything else is recorded as a field.
func (b *treeBuilder) collectNode(arg ast.Expr) {
	call, ok := arg.(*ast.CallExpr)
	if !ok {
		return
	}

	key := ""
	root := call
	for {
		sel, isSel := root.Fun.(*ast.SelectorExpr)
		if !isSel {
			return
		}
		if sel.Sel.Name == "Key" && len(root.Args) == 1 {
			if lit, isLit := root.Args[0].(*ast.BasicLit); isLit {
				if unquoted, err := strconv.Unquote(lit.Value); err == nil {
					key = unquoted
				}
			}
		}
		inner, isCall := sel.X.(*ast.CallExpr)
		if !isCall {
			// Chain bottomed out at a package selector: sel.X is the
			// huh package identifier and root is the constructor call.
			if ident, isIdent := sel.X.(*ast.Ident); isIdent && ident.Name == "huh" {
				if oracle.IsContainer(sel.Sel.Name) {
					for _, child := range root.Args {
						b.collectNode(child)
					}
				} else {
					b.recordField(sel.Sel.Name, key, root)
				}
			}
			return
		}
		root = inner
	}
}

func (b *treeBuilder) recordField(constructor, key string, call *ast.CallExpr) {
	line, _ := b.parsed.position(call.Pos())
	kind, known := oracle.LookupField(constructor)
	b.fields = append(b.fields, field{
		constructor: constructor,
		key:         key,
		line:        line,
		interactive: known && kind.Interactive,
		known:       known,
	})
}

// duplicateKeys flags every key collision, naming both locations.
func (b *treeBuilder) duplicateKeys() []types.ValidationError {
	var findings []types.ValidationError
	firstAt := make(map[string]int)
	for _, f := range b.fields {
		if f.key == "" {
			continue
		}
		if prev, seen := firstAt[f.key]; seen {
			findings = append(findings, types.ValidationError{
				Code:          "D303",
				Level:         types.LevelStructure,
				Message:       fmt.Sprintf("Duplicate key %q on line %d (first declared on line %d)", f.key, f.line, prev),
				Line:          f.line,
				Severity:      types.SeverityError,
				FixSuggestion: "Keys must be unique across the whole form",
				LLMAction:     fmt.Sprintf("Rename the key %q on line %d so it does not collide with line %d", f.key, f.line, prev),
			})
			continue
		}
		firstAt[f.key] = f.line
	}
	return findings
}

// frameworkCall reports whether call is huh.<Constructor>(...) and
// returns the constructor name.
func frameworkCall(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok || ident.Name != "huh" {
		return "", false
	}
	if !strings.HasPrefix(sel.Sel.Name, "New") {
		return "", false
	}
	return sel.Sel.Name, true
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

func sortedConstructors() []string {
	names := oracle.FieldConstructors()
	sort.Strings(names)
	return names
}
