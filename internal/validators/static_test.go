package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuivet/tuivet/internal/types"
)

func mustParse(t *testing.T, src string) *Parsed {
	t.Helper()
	parsed, res := Syntax(src)
	require.Equal(t, types.StatusPass, res.Status, "fixture must parse: %+v", res.Errors)
	return parsed
}

const cleanApp = `package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

func main() {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Key("name"),
			huh.NewConfirm().Title("Ready?").Key("ready"),
		),
	)
	if os.Getenv("TUIVET_SMOKE") != "" {
		fmt.Println("APP_CREATED")
		return
	}
	_ = form.Run()
}
`

func TestStaticClean(t *testing.T) {
	res := Static(mustParse(t, cleanApp))
	assert.Equal(t, types.StatusPass, res.Status)
	assert.Empty(t, res.Errors)
}

func TestStaticForbiddenImport(t *testing.T) {
	src := `package main

import (
	"os/exec"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = exec.Command("ls")
	_ = huh.NewForm()
}
`
	res := Static(mustParse(t, src))
	require.Equal(t, types.StatusFail, res.Status)

	findings := res.FindingsByCode("E201")
	require.Len(t, findings, 2, "import finding plus call finding")

	imp := findings[0]
	assert.Equal(t, types.LevelStatic, imp.Level)
	assert.Equal(t, types.SeverityError, imp.Severity)
	assert.Contains(t, imp.Message, "os/exec")
	assert.NotEmpty(t, imp.LLMAction, "forbidden import must carry a safe alternative")
	assert.NotZero(t, imp.Line)
}

func TestStaticRenamedImportStillCaught(t *testing.T) {
	src := `package main

import (
	run "os/exec"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = run.Command("ls")
	_ = huh.NewForm()
}
`
	res := Static(mustParse(t, src))
	findings := res.FindingsByCode("E201")
	require.Len(t, findings, 2)
	assert.Contains(t, findings[1].Message, "run.Command")
}

func TestStaticBlockingInUpdate(t *testing.T) {
	src := `package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type model struct{}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	time.Sleep(time.Second)
	return m, nil
}

func (m model) View() string { return "" }

func wait() {
	time.Sleep(time.Second)
}

func main() {
	_ = huh.NewForm()
	wait()
}
`
	res := Static(mustParse(t, src))
	require.Equal(t, types.StatusFail, res.Status)

	findings := res.FindingsByCode("E202")
	require.Len(t, findings, 1, "only the call inside Update blocks the event loop")
	assert.Contains(t, findings[0].Message, "time.Sleep")
	assert.Contains(t, findings[0].FixSuggestion, "tea.Tick")
}

func TestStaticMissingFrameworkImport(t *testing.T) {
	src := `package main

import "fmt"

func main() {
	fmt.Println("no form here")
}
`
	res := Static(mustParse(t, src))
	assert.Equal(t, types.StatusPass, res.Status, "warnings alone never fail")

	findings := res.FindingsByCode("W203")
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].LLMAction, "github.com/charmbracelet/huh")
}

func TestStaticUnusedImport(t *testing.T) {
	src := `package main

import (
	"strings"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = huh.NewForm()
}
`
	res := Static(mustParse(t, src))
	assert.Equal(t, types.StatusPass, res.Status)

	findings := res.FindingsByCode("W204")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, `"strings"`)
	assert.Equal(t, "strings", QuotedImport(findings[0].Message))
	assert.NotZero(t, findings[0].Line)
}

func TestStaticFrameworkImportNeverUnused(t *testing.T) {
	// The framework import is exempt from the unused check; flagging it
	// would oscillate against W203 during healing.
	src := `package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

func main() {
	fmt.Println("nothing composed yet")
}
`
	res := Static(mustParse(t, src))
	assert.Empty(t, res.FindingsByCode("W204"))
	assert.Empty(t, res.FindingsByCode("W203"))
}

func TestStaticBlankImportExempt(t *testing.T) {
	src := `package main

import (
	_ "embed"

	"github.com/charmbracelet/huh"
)

func main() {
	_ = huh.NewForm()
}
`
	res := Static(mustParse(t, src))
	assert.Empty(t, res.FindingsByCode("W204"))
}

func TestQuotedImport(t *testing.T) {
	assert.Equal(t, "strings", QuotedImport(`Unused import "strings"`))
	assert.Equal(t, "", QuotedImport("no quotes here"))
}
