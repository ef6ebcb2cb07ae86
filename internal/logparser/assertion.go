package logparser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desmoke/desmoke/internal/diag"
	"github.com/desmoke/desmoke/internal/jsonval"
)

// Assertion is one fully parsed failure report, ready to be rendered as a
// diagnostic.
type Assertion interface {
	Diagnostic() diag.Diagnostic
}

const noMessage = "<no message>"

var (
	// Failing assert.eq(): Error: <left-json> != <right-json> are not equal (: <extra>)? :
	inequalityPattern = regexp.MustCompile(`Error: (.+) != (.+) are not equal (:.*)?:`)

	// Thrown runtime error, e.g. TypeError or ReferenceError.
	runtimeErrorPattern = regexp.MustCompile(`(\w+Error): (.*) :`)

	// Anything else the shell reports with an Error: marker.
	genericPattern = regexp.MustCompile(`Error: (.*)?:$`)
)

// matchers lists the assertion grammars in precedence order. Inequality is
// the most specific and must be tried first so a looser grammar does not
// swallow a structured equality failure; do not reorder.
var matchers = []func(text string, pos *diag.Position) (Assertion, bool){
	parseInequality,
	parseRuntimeError,
	parseGeneric,
}

// ParseAssertion matches text against the known failure-report grammars and
// returns the typed assertion of the first grammar that matches. Text that
// matches no grammar is a fatal error: it indicates a new, unsupported
// failure format.
func ParseAssertion(text string, pos *diag.Position) (Assertion, error) {
	for _, match := range matchers {
		if a, ok := match(text, pos); ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("assertion did not match any existing patterns: %s", text)
}

// GenericAssertion is a free-text failure following an Error: marker.
type GenericAssertion struct {
	Pos     *diag.Position
	Message string
}

func parseGeneric(text string, pos *diag.Position) (Assertion, bool) {
	m := genericPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	msg := m[1]
	if msg == "" {
		msg = noMessage
	}
	return GenericAssertion{Pos: pos, Message: msg}, true
}

func (a GenericAssertion) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{Pos: a.Pos, Severity: diag.SeverityError, Message: a.Message}
}

// RuntimeErrorAssertion is a thrown error with its class name, e.g.
// "TypeError: foo is not a function".
type RuntimeErrorAssertion struct {
	Pos       *diag.Position
	ErrorType string
	Message   string
}

func parseRuntimeError(text string, pos *diag.Position) (Assertion, bool) {
	m := runtimeErrorPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return RuntimeErrorAssertion{Pos: pos, ErrorType: m[1], Message: m[2]}, true
}

func (a RuntimeErrorAssertion) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Pos:      a.Pos,
		Severity: diag.SeverityWarning,
		Message:  a.ErrorType + ": " + a.Message,
	}
}

// InequalityAssertion is a failing equality assertion carrying the two
// compared values.
type InequalityAssertion struct {
	Pos     *diag.Position
	Message string
	Left    jsonval.Value
	Right   jsonval.Value
}

func parseInequality(text string, pos *diag.Position) (Assertion, bool) {
	m := inequalityPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	// Either side failing to decode means this is not an equality report
	// after all; fall through to the next grammar rather than erroring.
	left, err := jsonval.Parse(strings.TrimSpace(m[1]))
	if err != nil {
		return nil, false
	}
	right, err := jsonval.Parse(strings.TrimSpace(m[2]))
	if err != nil {
		return nil, false
	}

	msg := noMessage
	if m[3] != "" {
		raw := m[3][1:] // drop the leading colon
		if v, err := jsonval.Parse(strings.TrimSpace(raw)); err == nil {
			if v.Kind == jsonval.KindString {
				msg = v.Str
			} else {
				msg = v.String()
			}
		} else {
			msg = raw
		}
	}
	return InequalityAssertion{Pos: pos, Message: msg, Left: left, Right: right}, true
}

func (a InequalityAssertion) Diagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Pos:      a.Pos,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf("assert equals failed: %s: %s != %s", a.Message, a.Left, a.Right),
	}
	if r := jsonval.Diff(a.Left, a.Right); r != nil {
		d.Extra = []string{"Left:" + r.Left.String(), "Right:" + r.Right.String()}
	}
	return d
}
