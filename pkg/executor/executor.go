package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// New returns a Runner that executes real processes.
func New() *Exec {
	return &Exec{}
}

// Run starts the command, wires the terminal to it unless output is
// captured or silenced, and waits for it to finish.
func (Exec) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	cmd.Stdin = c.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	var out bytes.Buffer
	switch {
	case c.Quiet:
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	case c.Capture:
		cmd.Stdout = &out
		cmd.Stderr = os.Stderr
	default:
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return Result{Stdout: out.Bytes()}, nil
	case ctx.Err() != nil:
		return Result{ExitCode: -1}, ctx.Err()
	case errors.As(err, &exitErr):
		return Result{ExitCode: exitErr.ExitCode(), Stdout: out.Bytes()}, nil
	default:
		return Result{ExitCode: -1}, err
	}
}

// Elevate returns the command unchanged.
func (Direct) Elevate(_ context.Context, c Command) Command {
	return c
}

// String renders the command the way it would be typed into a
// shell, which is what dry runs print.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, w := range append([]string{c.Name}, c.Args...) {
		parts = append(parts, Quote(w))
	}
	return strings.Join(parts, " ")
}

// Quote returns s quoted for a POSIX shell if it needs quoting.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// Only strings holding NUL bytes can't be quoted.
		return s
	}
	return q
}
