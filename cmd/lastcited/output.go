package main

import (
	"fmt"
	"os"
)

// infof writes progress and status messages to stderr, keeping stdout
// clean for command output.
func infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// warnf writes a warning to stderr.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
