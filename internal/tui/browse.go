// Package tui implements the interactive browser for recorded extraction
// runs. The left panel lists a run's diagnostics; the right panel shows the
// full rendered diagnostic, including the structural diff lines that are too
// wide for the list.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/desmoke/desmoke/internal/history"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	detailBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	severityErrorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	severityWarningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))

	positionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const maxDescriptionWidth = 70

// diagItem adapts a stored diagnostic to the bubbles list.
type diagItem struct {
	d history.StoredDiagnostic
}

func (i diagItem) Title() string {
	if i.d.File == "" {
		return "<unknown>"
	}
	if i.d.Col == 0 {
		return fmt.Sprintf("%s:%d", i.d.File, i.d.Line)
	}
	return fmt.Sprintf("%s:%d:%d", i.d.File, i.d.Line, i.d.Col)
}

func (i diagItem) Description() string {
	return truncate.StringWithTail(i.d.Message, maxDescriptionWidth, "…")
}

func (i diagItem) FilterValue() string {
	return i.d.File + " " + i.d.Message
}

// Model is the browse TUI. It is a plain bubbletea model; run it with
// tea.NewProgram.
type Model struct {
	run      *history.Run
	list     list.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// New builds a browse model for one recorded run and its diagnostics.
func New(run *history.Run, diags []history.StoredDiagnostic) Model {
	items := make([]list.Item, len(diags))
	for i, d := range diags {
		items[i] = diagItem{d: d}
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return Model{
		run:  run,
		list: l,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	before := m.list.Index()
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	if m.list.Index() != before {
		m.refreshDetail()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) layout() {
	contentHeight := m.height - 3 // header and help lines
	if contentHeight < 1 {
		contentHeight = 1
	}
	listWidth := m.width / 2
	m.list.SetSize(listWidth, contentHeight)
	m.viewport = viewport.New(m.width-listWidth-4, contentHeight-2)
}

func (m *Model) refreshDetail() {
	item, ok := m.list.SelectedItem().(diagItem)
	if !ok {
		m.viewport.SetContent("No diagnostics recorded for this run.")
		return
	}
	m.viewport.SetContent(renderDetail(item.d))
	m.viewport.GotoTop()
}

// renderDetail produces the full detail pane text for one diagnostic.
func renderDetail(d history.StoredDiagnostic) string {
	var b strings.Builder

	b.WriteString(positionStyle.Render(diagItem{d: d}.Title()))
	b.WriteString("\n")
	if d.Severity != "" {
		style := severityWarningStyle
		if d.Severity == "error" {
			style = severityErrorStyle
		}
		b.WriteString(style.Render(d.Severity))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(d.Message)

	// Rendered carries the Left:/Right: diff lines after the headline.
	if rest := extraLines(d.Rendered); rest != "" {
		b.WriteString("\n\n")
		b.WriteString(rest)
	}
	return b.String()
}

// extraLines strips the headline from a rendered diagnostic, leaving the
// supplementary lines.
func extraLines(rendered string) string {
	_, rest, found := strings.Cut(rendered, "\n")
	if !found {
		return ""
	}
	return rest
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf(
		"desmoke %s run %s (%d diagnostics)",
		m.run.Format,
		m.run.StartedAt.Format("2006-01-02 15:04:05"),
		m.run.Count,
	))

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.list.View(),
		detailBorderStyle.Render(m.viewport.View()),
	)

	help := helpStyle.Render("j/k: navigate • /: filter • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}
