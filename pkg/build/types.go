package build

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/makepkg"
	"github.com/the-maldridge/quack/pkg/types"
)

// Kind names an execution strategy.
type Kind string

// The execution strategies quack knows about.  This set is closed.
const (
	None      Kind = "none"
	Chroot    Kind = "chroot"
	Container Kind = "container"
)

// A Job is one build handed to a Strategy.
type Job struct {
	Package *types.Package

	// Dir holds the recipe and receives the built archives.
	Dir string

	// Dependencies are archives of AUR dependencies, already copied
	// into Dir, that the build environment needs installed.
	Dependencies []string
}

// A Strategy runs builds in some environment.
type Strategy interface {
	Kind() Kind

	// Build runs the build and returns the exit code of the build
	// command.  An error means the environment itself failed.
	Build(context.Context, Job) (int, error)

	// Plan returns the commands Build would run, without running
	// anything.
	Plan(Job) ([]string, error)

	// Release frees whatever the strategy allocated for one job.
	Release(context.Context, Job) error

	// Close frees whatever the strategy keeps across jobs.
	Close(context.Context) error
}

// Env is what strategy factories are built from.
type Env struct {
	Config   *config.Config
	Runner   executor.Runner
	Elevator executor.Elevator
	Makepkg  *makepkg.Tool
}

// A Factory constructs a Strategy.  It takes a logger which should be
// used to report early init issues.
type Factory func(hclog.Logger, Env) (Strategy, error)

// A Cloner retrieves the recipe of a package base into a directory
// and reports the revision a checkout is at.
type Cloner interface {
	Clone(ctx context.Context, base, dir string) error
	At(dir string) (string, error)
}

// State is where a Session is in its life.
type State int

// The states of a Session.  Closed is reachable from every other
// state.
const (
	Created State = iota
	SourceFetched
	IntegrityChecked
	Building
	Succeeded
	Failed
	Closed
)

// ApprovalFunc is asked whether a fetched recipe may be built.
type ApprovalFunc func(pkg *types.Package, dir string) (types.Decision, error)

// Builder opens build sessions that share a strategy and tools.
type Builder struct {
	l hclog.Logger

	cloner   Cloner
	mk       *makepkg.Tool
	strategy Strategy

	scratch   string
	dryRun    bool
	removeAll func(string) error
	cloneURL  func(string) string
}

// Option configures a Builder.
type Option func(*Builder) error

// A Session is one attempt at building one package.  It owns a
// scratch directory that is removed by Close.
type Session struct {
	l hclog.Logger
	b *Builder

	pkg   *types.Package
	dir   string
	state State
	deps  []string
	plan  []string

	commit string

	closeOnce sync.Once
	closeErr  error
}
