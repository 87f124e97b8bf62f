// Package logger provides leveled diagnostics for the Cadence CLI.
// Warnings are always written to stderr; debug and info messages only
// appear when verbose mode is enabled via the --verbose flag, tracing
// the outreach pipeline step by step.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables debug and info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects log output. Defaults to os.Stderr; tests point it
// at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(lvl level, gated bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", lvl, fmt.Sprintf(format, args...))
}

// Debug prints a message when verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(levelDebug, true, format, args...)
}

// Info prints an informational message when verbose mode is enabled.
func Info(format string, args ...any) {
	emit(levelInfo, true, format, args...)
}

// Warn prints a warning. Warnings are not gated on verbose mode: a
// degraded provider or a failed re-index should be visible on every run.
func Warn(format string, args ...any) {
	emit(levelWarn, false, format, args...)
}
