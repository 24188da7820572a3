package resolve

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/types"
)

// MetadataSource returns the AUR record for a name, or nil if there
// is none.
type MetadataSource interface {
	Details(context.Context, string) (*types.Package, error)
}

// Catalog is the official repository index.
type Catalog interface {
	Contains(string) bool
}

// Resolver classifies the dependencies of AUR packages.
type Resolver struct {
	l hclog.Logger

	meta     MetadataSource
	official Catalog

	installed func(string) bool
	exists    func(string) bool

	cacheDir string
	arch     string
	pkgExt   string
	force    bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// walk is the state of one resolution.  Every name is visited at
// most once, which is what stops cycles.
type walk struct {
	root    *types.Package
	seen    map[string]bool
	fetched map[string]*types.Package
}
