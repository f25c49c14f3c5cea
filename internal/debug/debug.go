// Package debug provides flag-char filtered trace output.
//
// Each subsystem logs under a single character: 't' for threads, 'i' for
// interrupts, 'm' for the machine, 'p' for processes, 's' for
// synchronization. '+' enables everything. Output is off until Init is
// called with a non-empty flag set.
package debug

import (
	"log"
	"os"
	"strings"
)

var (
	flags  string
	logger = log.New(os.Stderr, "", 0)
)

// Init sets the enabled flag characters, replacing any previous set.
func Init(flagSet string) {
	flags = flagSet
}

// Enabled reports whether the given flag character is active.
func Enabled(flag byte) bool {
	if flags == "" {
		return false
	}
	return strings.IndexByte(flags, '+') >= 0 || strings.IndexByte(flags, flag) >= 0
}

// Printf logs a line if the flag character is active.
func Printf(flag byte, format string, args ...any) {
	if !Enabled(flag) {
		return
	}
	logger.Printf(format, args...)
}

// SetOutput redirects trace output, mainly for tests.
func SetOutput(l *log.Logger) {
	logger = l
}
