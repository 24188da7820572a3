package executor

import (
	"context"
	"io"
)

// A Command describes one invocation of an external tool.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory of the child.  The working
	// directory of this process is never changed.
	Dir string
	Env []string

	// Capture collects stdout into the Result instead of passing it
	// through to the terminal.
	Capture bool
	// Quiet discards both stdout and stderr.
	Quiet bool

	Stdin io.Reader
}

// A Result is what came back from a finished command.  A nonzero
// exit code is not an error.
type Result struct {
	ExitCode int
	Stdout   []byte
}

// Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// A Runner runs commands.  An error is only returned if the command
// could not be started or was interrupted.
type Runner interface {
	Run(context.Context, Command) (Result, error)
}

// An Elevator rewrites a command so it runs with administrative
// privileges.
type Elevator interface {
	Elevate(context.Context, Command) Command
}

// Exec runs commands as child processes of this one.
type Exec struct{}

// Direct is an Elevator that leaves commands untouched, for when
// the process already holds the required privileges.
type Direct struct{}
