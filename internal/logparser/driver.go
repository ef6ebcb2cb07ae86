// Package logparser extracts structured test-failure diagnostics from
// line-oriented test-runner logs. Two formats are recognized: the
// channel-tagged multi-line resmoke shell-test log and the one-JSON-object-
// per-line C++ unit-test log. Drivers are streaming: they consume one line at
// a time and emit diagnostics as soon as a failure report completes.
package logparser

import (
	"fmt"

	"github.com/desmoke/desmoke/internal/diag"
)

// Driver consumes raw log lines one at a time and returns the diagnostics
// completed by each line. A returned error is fatal for the stream;
// diagnostics already emitted remain valid.
type Driver interface {
	// Name identifies the log format, e.g. "resmoke".
	Name() string
	// Detect reports whether this driver recognizes the first log line.
	Detect(firstLine string) bool
	// Feed processes one line. Most lines complete nothing and return an
	// empty slice.
	Feed(line string) ([]diag.Diagnostic, error)
}

// Options carry the grammar constants that vary per project.
type Options struct {
	// ChannelPrefix selects the embedded shell channel in resmoke logs.
	ChannelPrefix string
	// SourceRoot is the path prefix of the project's test-source tree.
	SourceRoot string
}

// Defaults for MongoDB-layout repositories.
const (
	DefaultChannelPrefix = "js_test"
	DefaultSourceRoot    = "jstests"
)

func (o Options) withDefaults() Options {
	if o.ChannelPrefix == "" {
		o.ChannelPrefix = DefaultChannelPrefix
	}
	if o.SourceRoot == "" {
		o.SourceRoot = DefaultSourceRoot
	}
	return o
}

// factories lists the driver constructors in detection order. The cppunit
// driver matches anything and must stay last.
var factories = []func(Options) Driver{
	func(o Options) Driver { return NewResmokeDriver(o) },
	func(o Options) Driver { return NewCppUnitDriver(o) },
}

// New returns the driver for an explicitly requested format name.
func New(name string, opts Options) (Driver, error) {
	for _, f := range factories {
		if d := f(opts); d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown log format %q", name)
}

// Detect picks the driver for a stream based on its first line. Resmoke logs
// announce themselves with a [resmoke] tag; everything else is treated as
// unit-test output.
func Detect(firstLine string, opts Options) Driver {
	for _, f := range factories {
		if d := f(opts); d.Detect(firstLine) {
			return d
		}
	}
	// Unreachable: the cppunit driver detects everything.
	return NewCppUnitDriver(opts)
}
