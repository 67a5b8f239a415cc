// Package logger wraps the standard logger with levels and a verbose switch.
// Info, Warn and Error always print; Debug prints only in verbose mode.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	std     = log.New(os.Stderr, "", log.LstdFlags)
)

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log output. Tests pass a buffer and disable
// timestamps with SetFlags(0).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// SetFlags sets the standard logger flags (log.LstdFlags by default).
func SetFlags(flags int) {
	mu.Lock()
	defer mu.Unlock()
	std.SetFlags(flags)
}

// Std returns the underlying logger, e.g. for gin's writers.
func Std() *log.Logger {
	return std
}

func output(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	_ = std.Output(3, prefix+fmt.Sprintf(format, args...))
}

// Debug prints only in verbose mode.
func Debug(format string, args ...any) {
	if !IsVerbose() {
		return
	}
	output("🔎 ", format, args...)
}

// Info prints an informational line.
func Info(format string, args ...any) {
	output("", format, args...)
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	output("⚠️  ", format, args...)
}

// Error prints an error line. It never exits.
func Error(format string, args ...any) {
	output("❌ ", format, args...)
}

// Section prints a separator header.
func Section(name string) {
	output("", "━━━━━━━━ %s ━━━━━━━━", name)
}
