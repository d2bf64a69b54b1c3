package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuivet/tuivet/internal/healing"
	"github.com/tuivet/tuivet/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func failedResult() *types.ValidationResult {
	return types.NewResult([]types.ValidationError{
		{
			Code:          "E201",
			Level:         types.LevelStatic,
			Message:       `Forbidden import "os/exec" (spawns child processes)`,
			Line:          4,
			Severity:      types.SeverityError,
			FixSuggestion: "Remove the import",
		},
		{
			Code:     "W204",
			Level:    types.LevelStatic,
			Message:  `Unused import "strings"`,
			Line:     5,
			Severity: types.SeverityWarning,
		},
	}, types.Metadata{Skipped: []string{"L3"}})
}

func TestWriteResultText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, failedResult(), FormatText))

	out := buf.String()
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "failed with 1 error(s), 1 warning(s)")
	assert.Contains(t, out, "[L2 E201] line 4")
	assert.Contains(t, out, `Forbidden import "os/exec"`)
	assert.Contains(t, out, "Remove the import")
	assert.Contains(t, out, "skipped tiers: L3")
}

func TestWriteResultTextPass(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, types.NewResult(nil, types.Metadata{}), FormatText))
	assert.Contains(t, buf.String(), "PASS passed")
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, failedResult(), FormatJSON))

	var decoded types.ValidationResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, types.StatusFail, decoded.Status)
	assert.Len(t, decoded.Errors, 2)
}

func TestWriteSessionText(t *testing.T) {
	sess := &healing.Session{
		ID:             "abc-123",
		State:          healing.StateConverged,
		Converged:      true,
		IterationCount: 2,
		Iterations: []healing.Iteration{
			{
				Number:        1,
				AppliedRules:  []string{"remove-unused-import"},
				DeferredRules: []string{"insert-framework-import"},
				Diff:          "--- candidate.go\n+++ candidate.go\n@@ -4,2 +4,1 @@\n-\t\"strings\"\n",
				Result:        types.NewResult(nil, types.Metadata{}),
			},
			{
				Number:       2,
				AppliedRules: []string{"insert-framework-import"},
				Result:       types.NewResult(nil, types.Metadata{}),
			},
		},
		FinalResult: types.NewResult(nil, types.Metadata{}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSession(&buf, sess, FormatText))

	out := buf.String()
	assert.Contains(t, out, "CONVERGED")
	assert.Contains(t, out, "2 fix round(s)")
	assert.Contains(t, out, "session abc-123")
	assert.Contains(t, out, "round 1: applied remove-unused-import")
	assert.Contains(t, out, "deferred: insert-framework-import")
	assert.Contains(t, out, `-	"strings"`)
	assert.Contains(t, out, "round 2: applied insert-framework-import")
}

func TestWriteSessionJSON(t *testing.T) {
	sess := &healing.Session{ID: "abc", State: healing.StateExhausted, IterationCount: 1}

	var buf bytes.Buffer
	require.NoError(t, WriteSession(&buf, sess, FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded["id"])
	assert.Equal(t, "exhausted", decoded["state"])
}
