package rules

import (
	"fmt"
	"strings"

	"github.com/tuivet/tuivet/internal/oracle"
	"github.com/tuivet/tuivet/internal/types"
	"github.com/tuivet/tuivet/internal/validators"
)

// builtinRules returns the default registry in priority order. Removals
// come first so a stale import is gone before any insertion into the
// same block, and import surgery comes before identifier insertion.
func builtinRules() []*Rule {
	return []*Rule{
		{
			ID:    "remove-forbidden-import",
			Codes: []string{"E201"},
			Apply: removeForbiddenImport,
		},
		{
			ID:    "remove-unused-import",
			Codes: []string{"W204"},
			Apply: removeUnusedImport,
		},
		{
			ID:    "insert-framework-import",
			Codes: []string{"W203"},
			Apply: insertFrameworkImport,
		},
		{
			ID:    "insert-field-key",
			Codes: []string{"D302"},
			Apply: insertFieldKey,
		},
		{
			ID:    "rename-duplicate-key",
			Codes: []string{"D303"},
			Apply: renameDuplicateKey,
		},
	}
}

// removeForbiddenImport deletes the import line named by an E201 import
// finding. E201 also covers dangerous calls, which have no mechanical
// fix; those findings are declined.
func removeForbiddenImport(source string, finding types.ValidationError) (Edit, bool) {
	if !strings.HasPrefix(finding.Message, "Forbidden import") {
		return Edit{}, false
	}
	return removeImportLine(source, finding)
}

// removeUnusedImport deletes the import line named by a W204 finding.
func removeUnusedImport(source string, finding types.ValidationError) (Edit, bool) {
	return removeImportLine(source, finding)
}

func removeImportLine(source string, finding types.ValidationError) (Edit, bool) {
	path := validators.QuotedImport(finding.Message)
	if path == "" || finding.Line < 1 {
		return Edit{}, false
	}
	lines := strings.Split(source, "\n")
	if finding.Line > len(lines) {
		return Edit{}, false
	}
	line := lines[finding.Line-1]
	if !strings.Contains(line, fmt.Sprintf("%q", path)) {
		return Edit{}, false
	}
	return Edit{
		Span:  Span{Start: finding.Line, End: finding.Line},
		Start: finding.Line,
		End:   finding.Line,
	}, true
}

// insertFrameworkImport adds the framework import. Its span covers the
// whole import block: the insertion point is only valid while no other
// rule is rewriting the block in the same round.
func insertFrameworkImport(source string, finding types.ValidationError) (Edit, bool) {
	lines := strings.Split(source, "\n")
	imported := fmt.Sprintf("\t%q", oracle.FrameworkImport)

	if start, end, ok := importBlock(lines); ok {
		return Edit{
			Span:  Span{Start: start, End: end},
			Start: end,
			End:   end - 1,
			Lines: []string{imported},
		}, true
	}

	// No import block: fall back to a standalone import after the last
	// existing import line, or after the package clause.
	after := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") {
			after = i + 1
		} else if after == 0 && strings.HasPrefix(trimmed, "package ") {
			after = i + 1
		}
	}
	if after == 0 {
		return Edit{}, false
	}
	return Edit{
		Span:  Span{Start: after, End: after},
		Start: after + 1,
		End:   after,
		Lines: []string{fmt.Sprintf("import %q", oracle.FrameworkImport)},
	}, true
}

// importBlock locates a parenthesized import declaration, returning the
// 1-based lines of the opening and closing delimiters.
func importBlock(lines []string) (start, end int, ok bool) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "import (" || strings.HasPrefix(trimmed, "import (") {
			for j := i + 1; j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) == ")" {
					return i + 1, j + 1, true
				}
			}
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// insertFieldKey appends a .Key call to the builder chain flagged by a
// D302 finding. The key name is derived from the constructor kind and
// the line number, which keeps it deterministic and collision-free.
// Chains wrapped onto a following line are declined.
func insertFieldKey(source string, finding types.ValidationError) (Edit, bool) {
	constructor := constructorFromMessage(finding.Message)
	if constructor == "" || finding.Line < 1 {
		return Edit{}, false
	}
	lines := strings.Split(source, "\n")
	if finding.Line > len(lines) {
		return Edit{}, false
	}
	line := lines[finding.Line-1]
	if !strings.Contains(line, "huh."+constructor) {
		return Edit{}, false
	}

	key := fmt.Sprintf("%s_%d", strings.ToLower(strings.TrimPrefix(constructor, "New")), finding.Line)
	call := fmt.Sprintf(".Key(%q)", key)

	trailing := ""
	body := strings.TrimRight(line, " \t")
	if strings.HasSuffix(body, ",") {
		body = strings.TrimSuffix(body, ",")
		trailing = ","
	}
	// The chain continues on the next line; appending here would not
	// parse. Leave the finding for a non-mechanical fix.
	if strings.HasSuffix(body, ".") || strings.HasSuffix(body, "(") {
		return Edit{}, false
	}
	return Edit{
		Span:  Span{Start: finding.Line, End: finding.Line},
		Start: finding.Line,
		End:   finding.Line,
		Lines: []string{body + call + trailing},
	}, true
}

// firstQuoted extracts the first double-quoted fragment of a message.
func firstQuoted(message string) string {
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

// constructorFromMessage pulls the huh constructor name out of a
// structural finding message.
func constructorFromMessage(message string) string {
	idx := strings.Index(message, "huh.")
	if idx < 0 {
		return ""
	}
	rest := message[idx+len("huh."):]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}

// renameDuplicateKey rewrites the later of two colliding keys with a
// line-number suffix, leaving the first declaration untouched.
func renameDuplicateKey(source string, finding types.ValidationError) (Edit, bool) {
	key := firstQuoted(finding.Message)
	if key == "" || finding.Line < 1 {
		return Edit{}, false
	}
	lines := strings.Split(source, "\n")
	if finding.Line > len(lines) {
		return Edit{}, false
	}
	line := lines[finding.Line-1]
	old := fmt.Sprintf(".Key(%q)", key)
	if !strings.Contains(line, old) {
		return Edit{}, false
	}
	renamed := fmt.Sprintf(".Key(%q)", fmt.Sprintf("%s_%d", key, finding.Line))
	return Edit{
		Span:  Span{Start: finding.Line, End: finding.Line},
		Start: finding.Line,
		End:   finding.Line,
		Lines: []string{strings.Replace(line, old, renamed, 1)},
	}, true
}
