// Package none builds directly on the host with makepkg.
package none

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/makepkg"
)

// Host runs makepkg in the recipe directory.  Dependencies are
// expected to be installed on the host already.
type Host struct {
	l   hclog.Logger
	run executor.Runner
	mk  *makepkg.Tool
}

func init() {
	build.RegisterInitCallback(cb)
}

func cb() {
	build.RegisterStrategyFactory(build.None, New)
}

// New returns the host strategy.
func New(l hclog.Logger, env build.Env) (build.Strategy, error) {
	x := Host{
		l:   l.Named("none"),
		run: env.Runner,
		mk:  env.Makepkg,
	}
	return &x, nil
}

// Kind is build.None.
func (h *Host) Kind() build.Kind { return build.None }

// Build runs makepkg and returns its exit code.
func (h *Host) Build(ctx context.Context, j build.Job) (int, error) {
	res, err := h.run.Run(ctx, h.mk.BuildCommand(j.Dir))
	if err != nil {
		return -1, err
	}
	return res.ExitCode, nil
}

// Plan returns the makepkg invocation.
func (h *Host) Plan(j build.Job) ([]string, error) {
	return []string{h.mk.BuildCommand(j.Dir).String()}, nil
}

// Release does nothing, the session directory is all there is.
func (h *Host) Release(context.Context, build.Job) error { return nil }

// Close does nothing.
func (h *Host) Close(context.Context) error { return nil }
