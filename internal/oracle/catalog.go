// Package oracle holds the framework knowledge the validators enforce:
// the catalogue of permitted component kinds and containers, the import
// policy, and a probe for the framework version available to the host
// project. tuivet is not a general linter - it checks one framework's
// conventions, and this package is the single source of truth for them.
package oracle

// FrameworkImport is the import path candidate programs must carry.
const FrameworkImport = "github.com/charmbracelet/huh"

// RuntimeImport is the event-loop module; programs that hand-roll their
// own models import it directly.
const RuntimeImport = "github.com/charmbracelet/bubbletea"

// FieldKind describes one catalogue entry for a form field constructor.
type FieldKind struct {
	// Constructor is the huh constructor name (e.g. "NewInput")
	Constructor string

	// Interactive fields must carry a unique Key for value retrieval
	Interactive bool
}

// fieldKinds is the fixed catalogue of permitted field constructors.
var fieldKinds = map[string]FieldKind{
	"NewInput":       {Constructor: "NewInput", Interactive: true},
	"NewText":        {Constructor: "NewText", Interactive: true},
	"NewSelect":      {Constructor: "NewSelect", Interactive: true},
	"NewMultiSelect": {Constructor: "NewMultiSelect", Interactive: true},
	"NewConfirm":     {Constructor: "NewConfirm", Interactive: true},
	"NewFilePicker":  {Constructor: "NewFilePicker", Interactive: true},
	"NewNote":        {Constructor: "NewNote", Interactive: false},
}

// containerKinds is the fixed catalogue of permitted containers.
var containerKinds = map[string]bool{
	"NewForm":  true,
	"NewGroup": true,
}

// layoutHelpers is the set of permitted lipgloss layout functions.
var layoutHelpers = map[string]bool{
	"JoinHorizontal": true,
	"JoinVertical":   true,
	"Place":          true,
}

// LookupField resolves a constructor name against the field catalogue.
func LookupField(name string) (FieldKind, bool) {
	k, ok := fieldKinds[name]
	return k, ok
}

// IsContainer reports whether name is a permitted container constructor.
func IsContainer(name string) bool {
	return containerKinds[name]
}

// IsLayoutHelper reports whether name is a permitted lipgloss helper.
func IsLayoutHelper(name string) bool {
	return layoutHelpers[name]
}

// FieldConstructors returns the catalogue constructor names, for reporting.
func FieldConstructors() []string {
	names := make([]string, 0, len(fieldKinds))
	for name := range fieldKinds {
		names = append(names, name)
	}
	return names
}

// ForbiddenImport describes a disallowed import and its safe alternative.
type ForbiddenImport struct {
	Path        string
	Reason      string
	Alternative string
}

// forbiddenImports maps disallowed import paths to guidance. The sandbox
// already denies these capabilities at runtime; flagging them at L2 gives
// the generator a correction target before anything executes.
var forbiddenImports = map[string]ForbiddenImport{
	"os/exec": {
		Path:        "os/exec",
		Reason:      "process spawning",
		Alternative: "remove the subprocess call; TUI programs must not shell out",
	},
	"net": {
		Path:        "net",
		Reason:      "raw network sockets",
		Alternative: "drop direct socket use; fetch data before entering the UI",
	},
	"syscall": {
		Path:        "syscall",
		Reason:      "direct kernel access",
		Alternative: "use the os package's portable wrappers instead of syscall",
	},
	"unsafe": {
		Path:        "unsafe",
		Reason:      "memory safety escape hatch",
		Alternative: "remove the unsafe import; nothing in a form UI needs it",
	},
	"plugin": {
		Path:        "plugin",
		Reason:      "dynamic code loading",
		Alternative: "link behavior statically instead of loading plugins",
	},
}

// LookupForbidden resolves an import path against the forbidden set.
func LookupForbidden(path string) (ForbiddenImport, bool) {
	f, ok := forbiddenImports[path]
	return f, ok
}

// BlockingCall describes a call that must not run on the event loop.
type BlockingCall struct {
	// Pkg and Func identify the call site (e.g. "time", "Sleep")
	Pkg  string
	Func string

	// Replacement is the non-blocking alternative
	Replacement string
}

// blockingCalls lists calls that stall the cooperative event loop when
// made inside Update or Init.
var blockingCalls = []BlockingCall{
	{Pkg: "time", Func: "Sleep", Replacement: "return a tea.Tick command instead of sleeping"},
	{Pkg: "http", Func: "Get", Replacement: "issue the request from a tea.Cmd, not the event loop"},
	{Pkg: "http", Func: "Post", Replacement: "issue the request from a tea.Cmd, not the event loop"},
	{Pkg: "http", Func: "Do", Replacement: "issue the request from a tea.Cmd, not the event loop"},
}

// LookupBlocking resolves a pkg.func selector against the blocking set.
func LookupBlocking(pkg, fn string) (BlockingCall, bool) {
	for _, b := range blockingCalls {
		if b.Pkg == pkg && b.Func == fn {
			return b, true
		}
	}
	return BlockingCall{}, false
}
