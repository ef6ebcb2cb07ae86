package logparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desmoke/desmoke/internal/diag"
)

var testPos = &diag.Position{File: "jstests/core/foo.js", Line: 10, Column: 5}

func TestParseAssertion_Generic(t *testing.T) {
	a, err := ParseAssertion(" Error: something went wrong :", testPos)
	require.NoError(t, err)

	generic, ok := a.(GenericAssertion)
	require.True(t, ok, "expected GenericAssertion, got %T", a)
	assert.Equal(t, "something went wrong ", generic.Message)

	d := a.Diagnostic()
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, testPos, d.Pos)
}

func TestParseAssertion_GenericEmptyMessage(t *testing.T) {
	a, err := ParseAssertion(" Error: :", testPos)
	require.NoError(t, err)

	generic, ok := a.(GenericAssertion)
	require.True(t, ok)
	assert.Equal(t, "<no message>", generic.Message)
}

func TestParseAssertion_RuntimeError(t *testing.T) {
	a, err := ParseAssertion(" TypeError: db.foo.findOne is not a function :", testPos)
	require.NoError(t, err)

	runtime, ok := a.(RuntimeErrorAssertion)
	require.True(t, ok, "expected RuntimeErrorAssertion, got %T", a)
	assert.Equal(t, "TypeError", runtime.ErrorType)
	assert.Equal(t, "db.foo.findOne is not a function", runtime.Message)

	d := a.Diagnostic()
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Equal(t, "TypeError: db.foo.findOne is not a function", d.Message)
}

func TestParseAssertion_RuntimeErrorBeatsGeneric(t *testing.T) {
	// "ReferenceError: ..." also contains the generic "Error: <text>:" shape;
	// the runtime-error grammar must win.
	a, err := ParseAssertion(" ReferenceError: x is not defined :", testPos)
	require.NoError(t, err)

	_, ok := a.(RuntimeErrorAssertion)
	assert.True(t, ok, "expected RuntimeErrorAssertion, got %T", a)
}

func TestParseAssertion_Inequality(t *testing.T) {
	a, err := ParseAssertion(" Error: 1 != 2 are not equal :", testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok, "expected InequalityAssertion, got %T", a)
	assert.Equal(t, "<no message>", ineq.Message)
	assert.Equal(t, "1", ineq.Left.String())
	assert.Equal(t, "2", ineq.Right.String())

	d := a.Diagnostic()
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, "assert equals failed: <no message>: 1 != 2", d.Message)
	assert.Equal(t, []string{"Left:1", "Right:2"}, d.Extra)
}

func TestParseAssertion_InequalityBeatsGeneric(t *testing.T) {
	// This text matches both the inequality and generic grammars; the fixed
	// precedence order must produce the inequality variant.
	a, err := ParseAssertion(" Error: 1 != 2 are not equal :", testPos)
	require.NoError(t, err)

	_, ok := a.(InequalityAssertion)
	assert.True(t, ok, "expected InequalityAssertion, got %T", a)
}

func TestParseAssertion_InequalityObjects(t *testing.T) {
	a, err := ParseAssertion(` Error: {"a" : 1, "b" : 2} != {"a" : 1, "b" : 3} are not equal :`, testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok)

	d := ineq.Diagnostic()
	assert.Equal(t, []string{`Left:{"b":2}`, `Right:{"b":3}`}, d.Extra)
}

func TestParseAssertion_InequalityRawTextMessage(t *testing.T) {
	a, err := ParseAssertion(" Error: 1 != 2 are not equal : checking counts :", testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok)
	assert.Equal(t, " checking counts ", ineq.Message)
}

func TestParseAssertion_InequalityJSONStringMessage(t *testing.T) {
	a, err := ParseAssertion(` Error: 1 != 2 are not equal : "checking counts" :`, testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok)
	assert.Equal(t, "checking counts", ineq.Message)
}

func TestParseAssertion_InequalityJSONObjectMessage(t *testing.T) {
	a, err := ParseAssertion(` Error: 1 != 2 are not equal : {"phase":"setup"} :`, testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok)
	assert.Equal(t, `{"phase":"setup"}`, ineq.Message)
}

func TestParseAssertion_InequalityBadJSONFallsThrough(t *testing.T) {
	// The inequality pattern matches textually, but the left side is not
	// valid JSON. That must be a non-match that falls through to the generic
	// grammar, not an error.
	a, err := ParseAssertion(" Error: {bad != 2 are not equal :", testPos)
	require.NoError(t, err)

	_, ok := a.(GenericAssertion)
	assert.True(t, ok, "expected fall-through to GenericAssertion, got %T", a)
}

func TestParseAssertion_Unrecognized(t *testing.T) {
	_, err := ParseAssertion("complete gibberish with no markers", testPos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete gibberish", "error must identify the unparsed text")
}

func TestParseAssertion_NilPosition(t *testing.T) {
	a, err := ParseAssertion(" Error: no location for this one :", nil)
	require.NoError(t, err)

	d := a.Diagnostic()
	assert.Equal(t, "<unknown>: error: no location for this one ", d.String())
}

func TestParseAssertion_InequalityEqualByValue(t *testing.T) {
	// 1 and 1.0 are textually different but equal by value; the residual
	// lines are omitted rather than rendering an empty diff.
	a, err := ParseAssertion(" Error: 1 != 1.0 are not equal :", testPos)
	require.NoError(t, err)

	ineq, ok := a.(InequalityAssertion)
	require.True(t, ok)
	assert.Empty(t, ineq.Diagnostic().Extra)
}
