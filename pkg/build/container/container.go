// Package container builds inside a throwaway container of a
// purpose built image.
package container

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/build"
	engine "github.com/the-maldridge/quack/pkg/container"
)

const (
	dockerfileName = "Dockerfile.quack"
	workDir        = "/home/package/pkg"
)

const dockerfile = `FROM archlinux/archlinux
RUN pacman -Syu --noconfirm && pacman -S --noconfirm --needed base-devel devtools sudo
RUN useradd -m -s /bin/sh package && echo 'package ALL=(ALL) NOPASSWD: ALL' > /etc/sudoers.d/package
USER package
WORKDIR ` + workDir + `
ENTRYPOINT ["/usr/bin/sh", "` + RoadmapName + `"]
`

// Isolated builds the image once per process and then runs one
// container per build with the recipe directory mounted in.
type Isolated struct {
	l      hclog.Logger
	engine *engine.Engine

	image    string
	scratch  string
	stepFile string

	mu       sync.Mutex
	imageDir string
	built    bool
}

func init() {
	build.RegisterInitCallback(cb)
}

func cb() {
	build.RegisterStrategyFactory(build.Container, New)
}

// New returns the container strategy.
func New(l hclog.Logger, env build.Env) (build.Strategy, error) {
	x := Isolated{
		l:        l.Named("container"),
		engine:   engine.New(l, env.Config.ContainerEngine, env.Runner, env.Elevator),
		image:    env.Config.ContainerImage,
		scratch:  env.Config.ScratchDir,
		stepFile: env.Config.RoadmapFile,
	}
	return &x, nil
}

// Kind is build.Container.
func (c *Isolated) Kind() build.Kind { return build.Container }

func (c *Isolated) buildOptions() engine.BuildOptions {
	d := c.imageDir
	if d == "" {
		d = filepath.Join(c.scratch, "quack_image_XXXXXX")
	}
	return engine.BuildOptions{ContextDir: d, Dockerfile: dockerfileName, Tag: c.image}
}

func (c *Isolated) runOptions(j build.Job) engine.RunOptions {
	return engine.RunOptions{
		Image:  c.image,
		Mounts: []engine.Mount{{Source: j.Dir, Destination: workDir}},
		Remove: true,
	}
}

// ensureImage builds the image the first time it is needed.  Callers
// hold mu.
func (c *Isolated) ensureImage(ctx context.Context) error {
	if c.built {
		return nil
	}
	if c.imageDir == "" {
		d, err := os.MkdirTemp(c.scratch, "quack_image_")
		if err != nil {
			return err
		}
		c.imageDir = d
	}
	if err := os.WriteFile(filepath.Join(c.imageDir, dockerfileName), []byte(dockerfile), 0644); err != nil {
		return err
	}
	if err := c.engine.Build(ctx, c.buildOptions()); err != nil {
		return err
	}
	c.built = true
	return nil
}

// roadmap collects the user steps from the recipe directory first and
// the config directory second.
func (c *Isolated) roadmap(j build.Job) (string, error) {
	var steps []string
	for _, p := range []string{filepath.Join(j.Dir, StepsName), c.stepFile} {
		if p == "" {
			continue
		}
		s, err := ReadSteps(p)
		if err != nil {
			return "", err
		}
		steps = append(steps, s...)
	}
	return Roadmap(steps, j.Dependencies)
}

// Build writes the roadmap into the recipe directory and runs it in a
// fresh container.
func (c *Isolated) Build(ctx context.Context, j build.Job) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureImage(ctx); err != nil {
		return -1, err
	}
	script, err := c.roadmap(j)
	if err != nil {
		return -1, err
	}
	if err := os.WriteFile(filepath.Join(j.Dir, RoadmapName), []byte(script), 0644); err != nil {
		return -1, err
	}
	c.l.Debug("Running roadmap", "script", script)
	return c.engine.Run(ctx, c.runOptions(j))
}

// Plan returns the image build, the roadmap as a here-document, and
// the container run.
func (c *Isolated) Plan(j build.Job) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	script, err := c.roadmap(j)
	if err != nil {
		return nil, err
	}
	var out []string
	if !c.built {
		out = append(out, c.engine.BuildCommand(c.buildOptions()).String())
	}
	out = append(out, "cat > "+filepath.Join(j.Dir, RoadmapName)+" <<'EOF'")
	out = append(out, strings.Split(strings.TrimSuffix(script, "\n"), "\n")...)
	out = append(out, "EOF")
	return append(out, c.engine.RunCommand(c.runOptions(j)).String()), nil
}

// Release does nothing, the container removes itself and the roadmap
// goes with the recipe directory.
func (c *Isolated) Release(context.Context, build.Job) error { return nil }

// Close removes the image build context.  The image itself is kept
// for the next run.
func (c *Isolated) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.imageDir == "" {
		return nil
	}
	err := os.RemoveAll(c.imageDir)
	c.imageDir = ""
	return err
}
