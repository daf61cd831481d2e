package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing email, invalid config file)
	ExitDataError   = 3 // Data error (missing input, missing header column, malformed corpus)
)

// codedError carries an exit code with an error so fatal paths can still
// unwind normally (deferred cache flushes must run before the process
// exits).
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func exitErr(code int, err error) error {
	return &codedError{code: code, err: err}
}
