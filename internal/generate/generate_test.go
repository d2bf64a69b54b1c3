package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuivet/tuivet/internal/types"
	"github.com/tuivet/tuivet/internal/validators"
)

const signupSketch = `╭──────────────────╮
│ Create Account   │
│ [Email_____]     │
│ [____]           │
│ [Submit]         │
╰──────────────────╯`

func TestParseSketch(t *testing.T) {
	layout := ParseSketch(signupSketch)

	require.Len(t, layout.Containers, 2)
	assert.True(t, layout.Containers[0].Start)
	assert.False(t, layout.Containers[1].Start)
	assert.Equal(t, 18, layout.Containers[0].Width)

	byID := make(map[string]Widget)
	for _, w := range layout.Widgets {
		byID[w.ID] = w
	}

	static := byID["static_1"]
	assert.Equal(t, KindStatic, static.Kind)
	assert.Equal(t, "Create Account", static.Label)

	labeled := byID["input_1"]
	assert.Equal(t, KindInput, labeled.Kind)
	assert.Equal(t, "Email", labeled.Placeholder)

	blank := byID["input_2"]
	assert.Equal(t, KindInput, blank.Kind)
	assert.Empty(t, blank.Placeholder)

	button := byID["btn_1"]
	assert.Equal(t, KindButton, button.Kind)
	assert.Equal(t, "Submit", button.Label)
	assert.Equal(t, 4, button.Row)
}

func TestParseSketchEmpty(t *testing.T) {
	layout := ParseSketch("")
	assert.Empty(t, layout.Widgets)
	assert.Empty(t, layout.Containers)
}

func TestParseSketchNumbersPerKind(t *testing.T) {
	layout := ParseSketch("[____]\n[____]\n[Go]")
	var ids []string
	for _, w := range layout.Widgets {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"input_1", "input_2", "btn_1"}, ids)
}

func TestCodeEmitsSmokeProbe(t *testing.T) {
	code := FromSketch(signupSketch, &Options{Title: "Sign Up"})

	assert.Contains(t, code, `os.Getenv("TUIVET_SMOKE")`)
	assert.Contains(t, code, `huh.NewNote().Title("Sign Up")`)
	assert.Contains(t, code, `huh.NewInput().Key("input_1").Placeholder("Email")`)
	assert.Contains(t, code, `huh.NewConfirm().Key("btn_1").Title("Submit")`)
}

func TestCodeEmptyLayoutStillBuildsForm(t *testing.T) {
	code := Code(&Layout{}, nil)
	assert.Contains(t, code, `huh.NewNote().Title("Empty form")`)
	assert.Contains(t, code, "form.Run()")
}

// Generator output must satisfy the same checks the pipeline enforces.
func TestGeneratedCodeValidatesClean(t *testing.T) {
	code := FromSketch(signupSketch, &Options{Title: "Sign Up"})

	parsed, res := validators.Syntax(code)
	require.Equal(t, types.StatusPass, res.Status)

	static := validators.Static(parsed)
	assert.Empty(t, static.Errors, "static findings: %+v", static.Errors)

	structural := validators.Structure(parsed)
	assert.NotEqual(t, types.StatusSkipped, structural.Status)
	assert.Empty(t, structural.Errors, "structural findings: %+v", structural.Errors)
}

func TestCodeEscapesLabels(t *testing.T) {
	layout := &Layout{Widgets: []Widget{{
		Kind:  KindStatic,
		ID:    "static_1",
		Label: `He said "hi"`,
	}}}
	code := Code(layout, nil)
	assert.Contains(t, code, `huh.NewNote().Title("He said \"hi\"")`)

	_, res := validators.Syntax(code)
	assert.Equal(t, types.StatusPass, res.Status)
}
