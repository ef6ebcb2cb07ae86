package logparser

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/desmoke/desmoke/internal/diag"
)

// unittestErrorPattern matches the embedded error field of a failing unit
// test: <description> @<path>:<line>
var unittestErrorPattern = regexp.MustCompile(`^(.*)\s+@([\w\.\/]+):(\d+)$`)

// unitLogRecord is the subset of a structured unit-test log line that failure
// extraction needs.
type unitLogRecord struct {
	Channel string `json:"c"`
	Msg     string `json:"msg"`
	Attr    struct {
		Error string `json:"error"`
	} `json:"attr"`
}

// CppUnitDriver extracts failures from C++ unit-test output, where every log
// record is a single JSON object. No state machine is needed: extraction is
// per line.
type CppUnitDriver struct{}

// NewCppUnitDriver returns the unit-test log driver. It takes Options for
// interface symmetry; the unit-test grammar has no configurable parts.
func NewCppUnitDriver(Options) *CppUnitDriver {
	return &CppUnitDriver{}
}

func (d *CppUnitDriver) Name() string { return "cppunit" }

// Detect always reports true: cppunit is the fallback format.
func (d *CppUnitDriver) Detect(string) bool { return true }

// Feed decodes one line. Lines that are not JSON log records are skipped
// silently; they are interleaved build output, not malformed input. Failure
// records have their error field reformatted to the uniform
// path:line: description shape.
func (d *CppUnitDriver) Feed(line string) ([]diag.Diagnostic, error) {
	var rec unitLogRecord
	if err := json.Unmarshal([]byte(CleanLine(line)), &rec); err != nil {
		return nil, nil
	}
	if rec.Channel != "TEST" || rec.Msg != "FAIL" {
		return nil, nil
	}
	m := unittestErrorPattern.FindStringSubmatch(rec.Attr.Error)
	if m == nil {
		return nil, nil
	}
	lineNum, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, nil
	}
	return []diag.Diagnostic{{
		Pos:     &diag.Position{File: m[2], Line: lineNum},
		Message: m[1],
	}}, nil
}
