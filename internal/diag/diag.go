// Package diag defines the uniform diagnostic records produced by the log
// parsers: a source position, a severity, and a rendered message that editors
// and CI summarizers can consume as path:line:col: severity: message.
package diag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a diagnostic for downstream consumers.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// tracePattern matches a single stack-trace line: [identifier@]path:line:column
var tracePattern = regexp.MustCompile(`^([\w\.]*@)?([\w\.\/]+):(\d+):(\d+)$`)

// Position is a location in a source file. It is immutable once constructed.
type Position struct {
	File   string
	Line   int
	Column int
}

// String renders file:line:column, omitting a zero column (unit-test log
// positions carry no column). A nil position renders as a placeholder so a
// report without a resolvable location still produces a diagnostic line.
func (p *Position) String() string {
	if p == nil {
		return "<unknown>"
	}
	if p.Column == 0 {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsTraceLine reports whether line satisfies the traceback line grammar.
func IsTraceLine(line string) bool {
	return tracePattern.MatchString(line)
}

// PositionFromTraceback extracts the first in-project position from a list of
// stack-trace lines. The relevant position is the top-most frame whose file
// path lies under sourceRoot (the project's test-source tree). A line that
// does not satisfy the traceback grammar is a fatal input error. Returns nil
// when no frame resolves to the source tree.
func PositionFromTraceback(traces []string, sourceRoot string) (*Position, error) {
	for _, trace := range traces {
		m := tracePattern.FindStringSubmatch(trace)
		if m == nil {
			return nil, fmt.Errorf("line did not match traceback grammar: %q", trace)
		}
		if !strings.HasPrefix(m[2], sourceRoot) {
			continue
		}
		line, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("invalid line number in traceback %q: %w", trace, err)
		}
		col, err := strconv.Atoi(m[4])
		if err != nil {
			return nil, fmt.Errorf("invalid column number in traceback %q: %w", trace, err)
		}
		return &Position{File: m[2], Line: line, Column: col}, nil
	}
	return nil, nil
}

// Diagnostic is one extracted failure record. Extra holds additional rendered
// lines that follow the main diagnostic line (e.g. structural diff residuals).
type Diagnostic struct {
	Pos      *Position
	Severity Severity
	Message  string
	Extra    []string
}

// String renders the uniform diagnostic line, followed by any extra lines.
// The severity segment is omitted when unset (unit-test log diagnostics).
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Pos.String())
	b.WriteString(": ")
	if d.Severity != "" {
		b.WriteString(string(d.Severity))
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	for _, extra := range d.Extra {
		b.WriteString("\n")
		b.WriteString(extra)
	}
	return b.String()
}
