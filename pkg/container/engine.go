// Package container drives a docker compatible container engine
// through its command line.
package container

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
)

// Engine runs docker or podman.
type Engine struct {
	l    hclog.Logger
	name string
	run  executor.Runner
	elev executor.Elevator
}

// BuildOptions describe an image build.
type BuildOptions struct {
	ContextDir string
	Dockerfile string
	Tag        string
}

// A Mount binds a host directory into the container.
type Mount struct {
	Source      string
	Destination string
}

// RunOptions describe a container run.
type RunOptions struct {
	Image  string
	Mounts []Mount
	Remove bool
}

// New returns an Engine for the named binary.  Both docker and
// podman accept the same arguments for what quack needs.
func New(l hclog.Logger, name string, run executor.Runner, elev executor.Elevator) *Engine {
	x := Engine{
		l:    l.Named(name),
		name: name,
		run:  run,
		elev: elev,
	}
	return &x
}

// Name returns the engine binary.
func (e *Engine) Name() string {
	return e.name
}

// BuildCommand returns the unprivileged image build invocation.
func (e *Engine) BuildCommand(o BuildOptions) executor.Command {
	args := []string{"build", "-t", o.Tag}
	if o.Dockerfile != "" {
		args = append(args, "-f", o.Dockerfile)
	}
	return executor.Command{Name: e.name, Args: append(args, o.ContextDir), Dir: o.ContextDir}
}

// Build builds an image.
func (e *Engine) Build(ctx context.Context, o BuildOptions) error {
	e.l.Info("Building image", "tag", o.Tag)
	res, err := e.run.Run(ctx, e.elev.Elevate(ctx, e.BuildCommand(o)))
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%s build exited %d", e.name, res.ExitCode)
	}
	return nil
}

// RunCommand returns the unprivileged container run invocation.
func (e *Engine) RunCommand(o RunOptions) executor.Command {
	args := []string{"run"}
	if o.Remove {
		args = append(args, "--rm")
	}
	for _, m := range o.Mounts {
		args = append(args, "--mount", "type=bind,source="+m.Source+",destination="+m.Destination)
	}
	return executor.Command{Name: e.name, Args: append(args, o.Image)}
}

// Run starts a container and waits for it, returning its exit code.
func (e *Engine) Run(ctx context.Context, o RunOptions) (int, error) {
	res, err := e.run.Run(ctx, e.elev.Elevate(ctx, e.RunCommand(o)))
	if err != nil {
		return -1, err
	}
	return res.ExitCode, nil
}
