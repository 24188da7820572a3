package executor

import (
	"context"
	"strings"
	"sync"
)

// Fake records every command it is asked to run and answers with
// whatever Handler returns.  It exists so that the components which
// drive pacman, makepkg and friends can be tested without them.
type Fake struct {
	mu    sync.Mutex
	calls []Command

	// Handler produces the result of a call.  When nil every
	// command succeeds with no output.
	Handler func(Command) (Result, error)
}

// Run records the command and consults the handler.
func (f *Fake) Run(_ context.Context, c Command) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h := f.Handler
	f.mu.Unlock()

	if h == nil {
		return Result{}, nil
	}
	return h(c)
}

// Calls returns a copy of the recorded commands.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// Lines returns the recorded commands rendered as shell lines.
func (f *Fake) Lines() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Ran reports whether any recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
