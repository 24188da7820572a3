package build

import (
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/makepkg"
)

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(b *Builder) error {
		b.l = l.Named("build")
		return nil
	}
}

// WithCloner sets how recipes are retrieved.
func WithCloner(c Cloner) Option {
	return func(b *Builder) error {
		b.cloner = c
		return nil
	}
}

// WithMakepkg sets the build tool.
func WithMakepkg(t *makepkg.Tool) Option {
	return func(b *Builder) error {
		b.mk = t
		return nil
	}
}

// WithStrategy sets the execution strategy every session uses.
func WithStrategy(s Strategy) Option {
	return func(b *Builder) error {
		if s == nil {
			return errors.New("strategy must not be nil")
		}
		b.strategy = s
		return nil
	}
}

// WithScratchDir sets where session directories are created.
func WithScratchDir(d string) Option {
	return func(b *Builder) error {
		b.scratch = d
		return nil
	}
}

// WithDryRun makes sessions predict their output instead of
// building.
func WithDryRun(d bool) Option {
	return func(b *Builder) error {
		b.dryRun = d
		return nil
	}
}

// WithRemoveAll replaces the function used to delete session
// directories.
func WithRemoveAll(f func(string) error) Option {
	return func(b *Builder) error {
		b.removeAll = f
		return nil
	}
}

// WithCloneURL sets how the clone location printed in plans is
// derived from a package base.
func WithCloneURL(f func(string) string) Option {
	return func(b *Builder) error {
		b.cloneURL = f
		return nil
	}
}
