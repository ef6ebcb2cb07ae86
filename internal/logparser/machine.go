package logparser

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/desmoke/desmoke/internal/diag"
)

// assertionStart marks the first line of a failure report in shell-test logs.
const assertionStart = "uncaught exception:"

// linePattern matches the channel-tagged log line grammar: [<channel>] <payload>
var linePattern = regexp.MustCompile(`^\[([\w:]+)\] (.+)$`)

type phase int

const (
	// phaseStart discards lines until a failure report begins.
	phaseStart phase = iota
	// phaseAssertion collects the lines that make up the assertion message.
	// The shell's tojson() pretty-prints objects, so a single report often
	// spans several lines.
	phaseAssertion
	// phaseTraceback collects the stack-trace lines that follow the message.
	phaseTraceback
	// phaseComplete holds a fully collected report awaiting extraction.
	phaseComplete
)

// State is one immutable configuration of the line-reassembly machine. Every
// transition produces a fresh State; callers thread it through the loop. The
// zero value is the start state.
type State struct {
	phase     phase
	assertion []string
	traceback []string
	// carried is the line that terminated the traceback. It has not been
	// consumed for the next report yet and is replayed when a completed
	// state is stepped again.
	carried string
}

// IsComplete reports whether Extract will return a fully parsed assertion.
func (s State) IsComplete() bool {
	return s.phase == phaseComplete
}

// Machine holds the fixed configuration of the reassembly state machine. Its
// methods are pure functions over State.
type Machine struct {
	channelPrefix string
	sourceRoot    string
}

// NewMachine returns a machine that only processes lines whose bracketed
// channel tag begins with channelPrefix, and resolves positions against
// sourceRoot.
func NewMachine(channelPrefix, sourceRoot string) *Machine {
	return &Machine{channelPrefix: channelPrefix, sourceRoot: sourceRoot}
}

// Step processes a single raw log line. Lines that do not carry the expected
// channel tag are no-ops and return the state unchanged.
func (m *Machine) Step(s State, line string) State {
	match := linePattern.FindStringSubmatch(line)
	if match == nil || !strings.HasPrefix(match[1], m.channelPrefix) {
		return s
	}
	return m.process(s, match[2])
}

// process advances the machine by one pre-filtered payload line.
func (m *Machine) process(s State, contents string) State {
	switch s.phase {
	case phaseStart:
		if strings.HasPrefix(contents, assertionStart) {
			return State{
				phase:     phaseAssertion,
				assertion: []string{contents[len(assertionStart):]},
			}
		}
		return s

	case phaseAssertion:
		if diag.IsTraceLine(contents) {
			return State{
				phase:     phaseTraceback,
				assertion: s.assertion,
				traceback: []string{contents},
			}
		}
		return State{
			phase:     phaseAssertion,
			assertion: append(slices.Clone(s.assertion), strings.TrimSpace(contents)),
		}

	case phaseTraceback:
		if !diag.IsTraceLine(contents) {
			return State{
				phase:     phaseComplete,
				assertion: s.assertion,
				traceback: s.traceback,
				carried:   contents,
			}
		}
		return State{
			phase:     phaseTraceback,
			assertion: s.assertion,
			traceback: append(slices.Clone(s.traceback), contents),
		}

	case phaseComplete:
		// Restarting: the carried line must be replayed through start
		// processing before the new line, so the report that follows a
		// completed one is not lost. Extract must be called before this
		// point to collect the finished assertion.
		next := m.process(State{}, s.carried)
		return m.process(next, contents)
	}
	return s
}

// Extract parses the collected report out of a complete state: the position
// comes from the traceback lines, the assertion from the concatenated
// message text.
func (m *Machine) Extract(s State) (Assertion, error) {
	if !s.IsComplete() {
		return nil, errors.New("cannot extract from an incomplete parser state")
	}
	pos, err := diag.PositionFromTraceback(s.traceback, m.sourceRoot)
	if err != nil {
		return nil, err
	}
	return ParseAssertion(strings.Join(s.assertion, ""), pos)
}
