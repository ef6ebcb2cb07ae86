package logparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_ResmokeFirstLine(t *testing.T) {
	d := Detect("[resmoke] YAML configuration of suite core", Options{})
	assert.Equal(t, "resmoke", d.Name())
}

func TestDetect_FallsBackToCppUnit(t *testing.T) {
	d := Detect(`{"t":{"$date":"2026-08-23"},"c":"TEST","msg":"Running"}`, Options{})
	assert.Equal(t, "cppunit", d.Name())

	d = Detect("arbitrary first line", Options{})
	assert.Equal(t, "cppunit", d.Name())
}

func TestNew_ByName(t *testing.T) {
	for _, name := range []string{"resmoke", "cppunit"} {
		d, err := New(name, Options{})
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("junit", Options{})
	assert.Error(t, err)
}

func TestCleanLine(t *testing.T) {
	assert.Equal(t, "[js_test] hello", CleanLine("\x1b[32m[js_test] hello\x1b[0m\r"))
	assert.Equal(t, "plain", CleanLine("plain"))
}
