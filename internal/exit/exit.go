// Package exit carries the message and status the esq command terminates with.
package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeSuccess  = 0
	CodeFailure  = 1
	CodeUsage    = 2
	CodeNotFound = 3
)

// Result is what the process prints before exiting with ExitCode.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeSuccess, Message: message}
}

// Error reports a failed operation on stderr.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeFailure, Message: message}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Usagef reports invalid arguments on stderr.
func Usagef(format string, a ...any) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeUsage, Message: fmt.Sprintf(format, a...)}
}

// NotFound reports a missing index or document without treating it as a failure
// of the tool itself.
func NotFound(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeNotFound, Message: message}
}
