// Package logger provides verbose logging for ragkit.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace the ingestion and query pipelines.
// Errors are printed regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level tags a log line.
type Level string

// Log levels, in increasing severity.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one line. Lines below LevelError are dropped unless verbose.
func emit(level Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level != LevelError && !verbose {
		return
	}
	fmt.Fprintf(output, "["+string(level)+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { emit(LevelDebug, format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) { emit(LevelWarn, format, args...) }

// Error prints an error message. Unlike the other levels it is never suppressed.
func Error(format string, args ...any) { emit(LevelError, format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Stage logs the start of a pipeline stage and returns a func that logs
// its duration. Typical use: defer logger.Stage("embed")().
func Stage(name string) func() {
	start := time.Now()
	Debug("%s: started", name)
	return func() {
		Debug("%s: done in %s", name, time.Since(start).Round(time.Millisecond))
	}
}
