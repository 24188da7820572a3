package upgrade

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/types"
)

// A Candidate is an installed AUR package with a newer version
// upstream.
type Candidate struct {
	Package *types.Package
	Current string
}

// Catalog is the official repository index.
type Catalog interface {
	Contains(string) bool
}

// MetadataSource fetches many AUR records in one request.
type MetadataSource interface {
	Info(context.Context, []string) ([]*types.Package, error)
}

// Oracle decides whether an installed version should be replaced.
type Oracle interface {
	ShouldUpgrade(ctx context.Context, pkg *types.Package, current string) bool
}

// Installer installs a batch of packages, reporting whether all of
// them succeeded.
type Installer interface {
	InstallAll(context.Context, []string) (bool, error)
}

// Terminal is how the planner talks to the user.
type Terminal interface {
	Info(string, ...interface{})
	Printf(string, ...interface{})
	Bold(string) string
	Red(string) string
	Green(string) string
	Confirm(string) (bool, error)
}

// Planner works out which AUR packages are out of date and upgrades
// them.
type Planner struct {
	l hclog.Logger

	installed map[string]string
	official  Catalog
	meta      MetadataSource
	oracle    Oracle
	inst      Installer
	term      Terminal
	withDevel bool
}
