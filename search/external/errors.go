package external

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProcessFailure is matched by every *ProcessError.
	ErrProcessFailure = errors.New("search process failed")

	// ErrMissingOutput is returned when the search process exits cleanly
	// without writing its output file.
	ErrMissingOutput = errors.New("search process produced no output")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed search output")
)

// ProcessError describes a search process that exited with a non-zero
// status or was killed after its timeout.
type ProcessError struct {
	Command  []string
	ExitCode int
	// Stderr holds the tail of the process' standard error.
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s: %s (exit code %d)", ErrProcessFailure, strings.Join(e.Command, " "), e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

// Is reports whether target is ErrProcessFailure.
func (e *ProcessError) Is(target error) bool { return target == ErrProcessFailure }

// Unwrap returns the underlying cause, such as context.DeadlineExceeded.
func (e *ProcessError) Unwrap() error { return e.Err }

// ParseError describes an output file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrParse, e.Path, e.Err)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Unwrap returns the underlying decoding or validation error.
func (e *ParseError) Unwrap() error { return e.Err }
