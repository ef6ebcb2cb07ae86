package logparser

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// CleanLine strips ANSI escape sequences and a trailing carriage return from
// a raw log line before grammar matching. Test runners frequently colorize
// output, and CRLF logs are common when runs come from CI.
func CleanLine(line string) string {
	return ansi.Strip(strings.TrimRight(line, "\r"))
}
