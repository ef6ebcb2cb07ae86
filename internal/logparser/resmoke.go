package logparser

import (
	"strings"

	"github.com/desmoke/desmoke/internal/diag"
)

// ResmokeDriver extracts failure reports from resmoke shell-test logs by
// threading each line through the reassembly state machine.
type ResmokeDriver struct {
	machine *Machine
	state   State
}

// NewResmokeDriver returns a fresh driver positioned at the start state.
func NewResmokeDriver(opts Options) *ResmokeDriver {
	opts = opts.withDefaults()
	return &ResmokeDriver{
		machine: NewMachine(opts.ChannelPrefix, opts.SourceRoot),
	}
}

func (d *ResmokeDriver) Name() string { return "resmoke" }

// Detect reports whether the first log line carries the resmoke runner tag.
func (d *ResmokeDriver) Detect(firstLine string) bool {
	return strings.HasPrefix(CleanLine(firstLine), "[resmoke]")
}

// Feed advances the state machine by one line. Whenever the machine becomes
// complete the assertion is extracted and emitted immediately; the machine
// then restarts itself on the next line.
func (d *ResmokeDriver) Feed(line string) ([]diag.Diagnostic, error) {
	wasComplete := d.state.IsComplete()
	d.state = d.machine.Step(d.state, CleanLine(line))
	if !d.state.IsComplete() || wasComplete {
		return nil, nil
	}
	assertion, err := d.machine.Extract(d.state)
	if err != nil {
		return nil, err
	}
	return []diag.Diagnostic{assertion.Diagnostic()}, nil
}
