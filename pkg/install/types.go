package install

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/pacman"
	"github.com/the-maldridge/quack/pkg/storage"
	"github.com/the-maldridge/quack/pkg/types"
)

// Policy is decided per call to Install.
type Policy struct {
	// Interactive asks the user to inspect the recipe before
	// building.
	Interactive bool

	// AsDeps installs the package as a dependency of something else.
	AsDeps bool

	// BuildOnly keeps the archives for later builds instead of
	// installing them.
	BuildOnly bool
}

// A Result describes a finished install.
type Result struct {
	Package *types.Package

	// Files are the archives handed to pacman.
	Files []string

	// Kept is where those archives can still be found once the
	// build directory is gone.
	Kept []string

	// Commands are what a dry run would have run.
	Commands []string

	// Commit is the recipe revision that was built.
	Commit string
}

// Resolver looks up packages and their dependencies.
type Resolver interface {
	Prepare(context.Context, string) (*types.Package, error)
	Resolve(context.Context, *types.Package) (*types.Package, error)
}

// Terminal is how the orchestrator talks to the user.
type Terminal interface {
	Info(string, ...interface{})
	Result(string, ...interface{})
	Warning(string, ...interface{})
	Error(string, ...interface{})
	Println(...interface{})

	Approve(*types.Package, string) (types.Decision, error)
	Choose([]string) (string, error)
}

// Inventory is the set of installed packages, kept current as quack
// installs more of them.
type Inventory struct {
	mu sync.RWMutex
	m  map[string]string
}

// Orchestrator installs AUR packages along with the AUR packages they
// need.
type Orchestrator struct {
	l hclog.Logger

	cfg     *config.Config
	res     Resolver
	builder *build.Builder
	pm      *pacman.Manager
	term    Terminal
	inv     *Inventory
	hist    *storage.History
	now     func() time.Time

	// kept maps the names installed or built for staging during
	// this run to archives of them.
	kept map[string][]string
	// pending holds installed packages being rebuilt for staging.
	pending map[string]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)
