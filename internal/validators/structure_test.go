package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuivet/tuivet/internal/types"
)

func TestStructureClean(t *testing.T) {
	res := Structure(mustParse(t, cleanApp))
	assert.Equal(t, types.StatusPass, res.Status)
	assert.Empty(t, res.Errors)
}

func TestStructureSkippedWithoutApp(t *testing.T) {
	src := `package main

import "fmt"

func main() {
	fmt.Println("just a script")
}
`
	res := Structure(mustParse(t, src))
	assert.Equal(t, types.StatusSkipped, res.Status, "no app means skipped, not pass or fail")
	assert.Empty(t, res.Errors)
}

func TestStructureBubbleTeaModelCountsAsApp(t *testing.T) {
	src := `package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

type model struct{}

func (m model) Init() tea.Cmd                           { return nil }
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { return m, nil }
func (m model) View() string                            { return "ok" }

func main() {
	_ = tea.NewProgram(model{})
}
`
	res := Structure(mustParse(t, src))
	assert.Equal(t, types.StatusPass, res.Status, "a hand-rolled model is an app with no form findings")
}

func TestStructureUnknownKind(t *testing.T) {
	src := `package main

import "github.com/charmbracelet/huh"

func main() {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewDropdown().Key("pick"),
		),
	)
	_ = form
}
`
	res := Structure(mustParse(t, src))
	require.Equal(t, types.StatusFail, res.Status)

	findings := res.FindingsByCode("D301")
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "NewDropdown")
	assert.Contains(t, findings[0].FixSuggestion, "NewInput")
}

func TestStructureMissingKey(t *testing.T) {
	src := `package main

import "github.com/charmbracelet/huh"

func main() {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name"),
			huh.NewNote().Title("Readonly"),
		),
	)
	_ = form
}
`
	res := Structure(mustParse(t, src))
	assert.Equal(t, types.StatusPass, res.Status, "missing keys are advisory")

	findings := res.FindingsByCode("D302")
	require.Len(t, findings, 1, "notes are exempt from the key requirement")
	assert.Equal(t, types.SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].LLMAction, ".Key(")
	assert.NotZero(t, findings[0].Line)
}

func TestStructureDuplicateKeys(t *testing.T) {
	src := `package main

import "github.com/charmbracelet/huh"

func main() {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First").Key("email"),
		),
		huh.NewGroup(
			huh.NewInput().Title("Second").Key("email"),
		),
	)
	_ = form
}
`
	res := Structure(mustParse(t, src))
	require.Equal(t, types.StatusFail, res.Status)

	findings := res.FindingsByCode("D303")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, `"email"`)
	// The collision names both locations.
	assert.Contains(t, findings[0].Message, "first declared on line")
}

func TestStructureFieldsDirectlyInForm(t *testing.T) {
	src := `package main

import "github.com/charmbracelet/huh"

func main() {
	form := huh.NewForm(
		huh.NewInput().Key("solo"),
	)
	_ = form
}
`
	res := Structure(mustParse(t, src))
	assert.Equal(t, types.StatusPass, res.Status)
	assert.Empty(t, res.Errors)
}
