package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desmoke/desmoke/internal/diag"
)

var (
	printerPosStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	printerErrStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	printerWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	printerDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// outputPrefix marks diagnostic lines in pass-through mode so editors can
// tell them apart from the forwarded log.
const outputPrefix = "[desmoke] "

// printer writes diagnostics to the output stream. In pass-through mode each
// diagnostic is prefixed so problem matchers can find it in the forwarded log.
type printer struct {
	out    io.Writer
	color  bool
	prefix bool
}

func (p *printer) print(d diag.Diagnostic) {
	text := d.String()
	if p.color {
		text = p.render(d)
	}
	if p.prefix {
		text = outputPrefix + text
	}
	fmt.Fprintln(p.out, text)
}

// render colors the diagnostic parts: position, severity, then the extra
// lines dimmed below the headline.
func (p *printer) render(d diag.Diagnostic) string {
	var parts []string
	parts = append(parts, printerPosStyle.Render(d.Pos.String()))
	if d.Severity != "" {
		style := printerWarnStyle
		if d.Severity == diag.SeverityError {
			style = printerErrStyle
		}
		parts = append(parts, style.Render(string(d.Severity)))
	}
	parts = append(parts, d.Message)

	text := strings.Join(parts, ": ")
	for _, extra := range d.Extra {
		text += "\n" + printerDimStyle.Render(extra)
	}
	return text
}
