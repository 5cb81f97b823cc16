package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(prev)
		SetVerbose(false)
	})
	return &buf
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv(DebugEnvVar, "")
	SetVerbose(false)
	assert.False(t, DebugEnabled(), "empty TASKS_DEBUG should disable debug")

	t.Setenv(DebugEnvVar, "1")
	assert.True(t, DebugEnabled(), "any TASKS_DEBUG value should enable debug")

	t.Setenv(DebugEnvVar, "")
	SetVerbose(true)
	defer SetVerbose(false)
	assert.True(t, DebugEnabled(), "SetVerbose should force debug on")
}

func TestDebugf(t *testing.T) {
	buf := captureOutput(t)

	t.Setenv(DebugEnvVar, "")
	Debugf("hidden: %s\n", "test")
	assert.Empty(t, buf.String())

	t.Setenv(DebugEnvVar, "1")
	Debugf("shown: %s\n", "test")
	assert.Equal(t, "shown: test\n", buf.String())
}

func TestDebugln(t *testing.T) {
	buf := captureOutput(t)

	t.Setenv(DebugEnvVar, "")
	Debugln("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debugln("shown", 42)
	assert.Equal(t, "shown 42\n", buf.String())
}
