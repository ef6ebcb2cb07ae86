package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desmoke/desmoke/internal/history"
)

func testRun() *history.Run {
	return &history.Run{
		ID:        "run-1",
		StartedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Format:    "resmoke",
		Source:    "test.log",
		Count:     2,
	}
}

func testDiags() []history.StoredDiagnostic {
	return []history.StoredDiagnostic{
		{
			Seq: 0, File: "jstests/foo.js", Line: 10, Col: 5,
			Severity: "error",
			Message:  "assert equals failed: <no message>: 1 != 2",
			Rendered: "jstests/foo.js:10:5: error: assert equals failed: <no message>: 1 != 2\nLeft:1\nRight:2",
		},
		{
			Seq: 1, File: "src/x.cpp", Line: 42,
			Message:  "expected true",
			Rendered: "src/x.cpp:42: expected true",
		},
	}
}

func TestDiagItem_Title(t *testing.T) {
	diags := testDiags()
	assert.Equal(t, "jstests/foo.js:10:5", diagItem{d: diags[0]}.Title())
	assert.Equal(t, "src/x.cpp:42", diagItem{d: diags[1]}.Title())
	assert.Equal(t, "<unknown>", diagItem{d: history.StoredDiagnostic{}}.Title())
}

func TestDiagItem_DescriptionTruncates(t *testing.T) {
	d := history.StoredDiagnostic{Message: strings.Repeat("x", 200)}
	desc := diagItem{d: d}.Description()
	assert.True(t, strings.HasSuffix(desc, "…"))
	assert.Less(t, len([]rune(desc)), 200)
}

func TestRenderDetail_IncludesDiffLines(t *testing.T) {
	detail := renderDetail(testDiags()[0])
	assert.Contains(t, detail, "jstests/foo.js:10:5")
	assert.Contains(t, detail, "error")
	assert.Contains(t, detail, "assert equals failed")
	assert.Contains(t, detail, "Left:1")
	assert.Contains(t, detail, "Right:2")
}

func TestRenderDetail_NoSeverityOrExtras(t *testing.T) {
	detail := renderDetail(testDiags()[1])
	assert.Contains(t, detail, "expected true")
	assert.NotContains(t, detail, "Left:")
}

func TestExtraLines(t *testing.T) {
	assert.Equal(t, "Left:1\nRight:2", extraLines("headline\nLeft:1\nRight:2"))
	assert.Empty(t, extraLines("headline only"))
}

func TestModel_QuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	}
	for _, key := range keys {
		m := New(testRun(), testDiags())
		updated, cmd := m.Update(key)
		require.NotNil(t, cmd, "expected quit command for %q", key.String())
		assert.True(t, updated.(Model).quitting)
	}
}

func TestModel_ViewAfterResize(t *testing.T) {
	m := New(testRun(), testDiags())
	assert.Equal(t, "Loading...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := updated.(Model).View()
	assert.Contains(t, view, "resmoke")
	assert.Contains(t, view, "2 diagnostics")
	assert.Contains(t, view, "q: quit")
}
