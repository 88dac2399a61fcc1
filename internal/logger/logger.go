// Package logger provides verbose logging for the usersearch CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr so users can follow each search pipeline:
// which term version fired, which collaborator answered, and which
// results were discarded as stale.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
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

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	printf(true, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	printf(true, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	printf(true, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	printf(false, "[ERROR] ", format, args...)
}

// Component returns a logger that prefixes every message with name.
func Component(name string) Scoped {
	return Scoped{prefix: "[" + name + "] "}
}

// Scoped is a logger bound to one component, e.g. a search pipeline.
type Scoped struct {
	prefix string
}

// Debug prints a component message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	printf(true, "[DEBUG] "+s.prefix, format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	printf(true, "[INFO] "+s.prefix, format, args...)
}

// Warn prints a component warning if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	printf(true, "[WARN] "+s.prefix, format, args...)
}

// printf holds the write lock so concurrent callers never interleave
// writes on the shared output.
func printf(onlyVerbose bool, level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if onlyVerbose && !verbose {
		return
	}
	fmt.Fprintf(output, level+format+"\n", args...)
}
