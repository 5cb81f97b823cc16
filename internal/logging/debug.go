package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DebugEnvVar enables debug output when set to any non-empty value.
const DebugEnvVar = "TASKS_DEBUG"

var (
	mu     sync.RWMutex
	forced bool
	output io.Writer = os.Stderr
)

// DebugEnabled returns true if debug mode is enabled via TASKS_DEBUG or SetVerbose
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return forced || os.Getenv(DebugEnvVar) != ""
}

// SetVerbose forces debug output on regardless of the environment.
func SetVerbose(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	forced = enabled
}

// SetOutput replaces the debug writer and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}

// Output returns the current debug writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(Output(), format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(Output(), args...)
	}
}
