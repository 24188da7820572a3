package privilege

import (
	"context"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
)

// Some sudoers files grant password-less access to only these
// tools, so they get checked directly.
var checkDirect = map[string]bool{
	"docker": true,
	"pacman": true,
}

// Sudo prefixes privileged commands with sudo when this process is
// not already running as root.
type Sudo struct {
	l   hclog.Logger
	run executor.Runner

	euid   int
	notify func(string)

	mu     sync.Mutex
	warmed map[string]bool
}

// Option configures the wrapper.
type Option func(*Sudo)

// WithEUID overrides the effective uid that decides whether sudo is
// needed at all.
func WithEUID(id int) Option {
	return func(s *Sudo) { s.euid = id }
}

// WithNotify sets the function used to warn the user that a
// password prompt is about to happen.  The function is expected to
// block until the user is ready.
func WithNotify(f func(string)) Option {
	return func(s *Sudo) { s.notify = f }
}

// New returns a sudo wrapper that checks with the given runner.
func New(l hclog.Logger, run executor.Runner, opts ...Option) *Sudo {
	x := Sudo{
		l:      l.Named("sudo"),
		run:    run,
		euid:   os.Geteuid(),
		warmed: make(map[string]bool),
	}
	for _, o := range opts {
		o(&x)
	}
	return &x
}

// Elevate returns c prefixed with sudo.  Before the first use for a
// given tool it checks whether sudo can proceed without a password
// and, if not, tells the user a prompt is coming.
func (s *Sudo) Elevate(ctx context.Context, c executor.Command) executor.Command {
	if s.euid == 0 {
		return c
	}
	s.check(ctx, c.Name)

	out := c
	out.Name = "sudo"
	out.Args = append([]string{c.Name}, c.Args...)
	return out
}

func (s *Sudo) check(ctx context.Context, tool string) {
	key := tool
	if !checkDirect[tool] {
		key = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warmed[key] {
		return
	}

	trial := executor.Command{Name: "sudo", Args: []string{"-n", "true"}, Quiet: true}
	if key != "" {
		trial.Args = []string{"-n", key, "--version"}
	}
	res, err := s.run.Run(ctx, trial)
	if err == nil && res.Success() {
		s.warmed[key] = true
		return
	}
	s.l.Debug("sudo requires a password", "tool", tool, "error", err)
	if s.notify != nil {
		s.notify("You are going to run a `sudo' command and a password will be prompted. Press Enter to continue.")
	}
}
