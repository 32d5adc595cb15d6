// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

// Process exit codes.
const (
	ExitSuccess     = 0 // No problems encountered
	ExitNoNetwork   = 1 // No network detected, cannot proceed
	ExitInterrupted = 2 // The user interrupted execution
	ExitFatal       = 3 // An exception or fatal error occurred

	// ExitFailuresBase + n is returned when n articles ended the run
	// with a failed-* status.
	ExitFailuresBase = 100
)

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}
