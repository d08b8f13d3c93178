// Package debug provides global debug logging flags for hot paths
// where structured logging per message would be too noisy.
package debug

import "fmt"

// Enabled controls whether debug logging is active.
var Enabled bool

// Log prints a message only if debug mode is enabled.
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled.
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}
