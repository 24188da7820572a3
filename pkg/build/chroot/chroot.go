// Package chroot builds inside a clean devtools chroot.
package chroot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/executor"
)

// Chroot keeps one sandbox per process under the configured chroot
// home.  The sandbox is created on the first build and refreshed
// before every build after that.  Each sandbox is guarded by a lock
// file so that sandboxes left behind by dead processes can be told
// apart from live ones and swept.
type Chroot struct {
	l    hclog.Logger
	run  executor.Runner
	elev executor.Elevator

	home        string
	pacmanConf  string
	makepkgConf string

	mu    sync.Mutex
	dir   string
	lock  *flock.Flock
	ready bool
}

func init() {
	build.RegisterInitCallback(cb)
}

func cb() {
	build.RegisterStrategyFactory(build.Chroot, New)
}

// New returns the chroot strategy.
func New(l hclog.Logger, env build.Env) (build.Strategy, error) {
	if env.Config.ChrootDir == "" {
		return nil, fmt.Errorf("chroot_dir must be set to use the chroot strategy")
	}
	x := Chroot{
		l:           l.Named("chroot"),
		run:         env.Runner,
		elev:        env.Elevator,
		home:        env.Config.ChrootDir,
		pacmanConf:  env.Config.PacmanConf,
		makepkgConf: env.Config.MakepkgConf,
	}
	return &x, nil
}

// Kind is build.Chroot.
func (c *Chroot) Kind() build.Kind { return build.Chroot }

func (c *Chroot) sandbox() string {
	if c.dir != "" {
		return c.dir
	}
	return filepath.Join(c.home, "sandbox_XXXXXX")
}

func (c *Chroot) createCommand() executor.Command {
	d := c.sandbox()
	return executor.Command{
		Name: "mkarchroot",
		Args: []string{
			"-C", filepath.Join(d, "pacman.conf"),
			"-M", filepath.Join(d, "makepkg.conf"),
			filepath.Join(d, "root"),
			"base-devel",
		},
	}
}

func (c *Chroot) refreshCommand() executor.Command {
	return executor.Command{
		Name: "arch-nspawn",
		Args: []string{filepath.Join(c.sandbox(), "root"), "pacman", "-Syu", "--noconfirm"},
	}
}

func copyName(j build.Job) string {
	return filepath.Base(j.Dir)
}

func (c *Chroot) buildCommand(j build.Job) executor.Command {
	args := []string{"-c", "-r", c.sandbox(), "-l", copyName(j)}
	for _, d := range j.Dependencies {
		args = append(args, "-I", d)
	}
	return executor.Command{Name: "makechrootpkg", Args: args, Dir: j.Dir}
}

func (c *Chroot) elevated(ctx context.Context, cmd executor.Command) (executor.Result, error) {
	return c.run.Run(ctx, c.elev.Elevate(ctx, cmd))
}

// prepare creates the sandbox of this process.  Callers hold mu.
func (c *Chroot) prepare(ctx context.Context) error {
	if c.ready {
		return nil
	}
	if err := os.MkdirAll(c.home, 0755); err != nil {
		return err
	}
	c.sweep(ctx)

	dir, err := os.MkdirTemp(c.home, "sandbox_")
	if err != nil {
		return err
	}
	lock := flock.New(dir + ".lock")
	ok, err := lock.TryLock()
	if err != nil || !ok {
		os.RemoveAll(dir)
		if err == nil {
			err = fmt.Errorf("sandbox %s is locked by another process", dir)
		}
		return err
	}
	c.dir = dir
	c.lock = lock

	if err := c.populate(ctx); err != nil {
		if derr := c.discard(ctx); derr != nil {
			c.l.Warn("Could not remove unfinished sandbox", "dir", dir, "error", derr)
		}
		return err
	}
	c.ready = true
	return nil
}

func (c *Chroot) populate(ctx context.Context) error {
	if err := config.CopyPacmanConf(c.pacmanConf, filepath.Join(c.dir, "pacman.conf")); err != nil {
		return err
	}
	if err := copyFile(c.makepkgConf, filepath.Join(c.dir, "makepkg.conf")); err != nil {
		return err
	}

	c.l.Info("Creating chroot", "dir", c.dir)
	res, err := c.elevated(ctx, c.createCommand())
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("mkarchroot exited %d", res.ExitCode)
	}
	return nil
}

// discard removes the sandbox and gives up its lock.
func (c *Chroot) discard(ctx context.Context) error {
	err := c.remove(ctx, c.dir)
	if c.lock != nil {
		c.lock.Unlock()
		os.Remove(c.lock.Path())
	}
	c.dir = ""
	c.lock = nil
	c.ready = false
	return err
}

// sweep removes sandboxes whose owning process is gone, which shows
// as their lock file being free.
func (c *Chroot) sweep(ctx context.Context) {
	dirs, err := filepath.Glob(filepath.Join(c.home, "sandbox_*"))
	if err != nil {
		return
	}
	for _, d := range dirs {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			continue
		}
		lock := flock.New(d + ".lock")
		ok, err := lock.TryLock()
		if err != nil || !ok {
			continue
		}
		c.l.Debug("Removing stale sandbox", "dir", d)
		c.remove(ctx, d)
		lock.Unlock()
		os.Remove(d + ".lock")
	}
}

// remove deletes a tree that contains root owned files.
func (c *Chroot) remove(ctx context.Context, paths ...string) error {
	res, err := c.elevated(ctx, executor.Command{Name: "rm", Args: append([]string{"-rf"}, paths...), Quiet: true})
	if err != nil {
		return err
	}
	for _, p := range paths {
		os.RemoveAll(p)
	}
	if !res.Success() {
		return fmt.Errorf("rm exited %d", res.ExitCode)
	}
	return nil
}

// Build refreshes the sandbox and builds a working copy of it.
func (c *Chroot) Build(ctx context.Context, j build.Job) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx); err != nil {
		return -1, err
	}
	res, err := c.elevated(ctx, c.refreshCommand())
	if err != nil {
		return -1, err
	}
	if !res.Success() {
		c.l.Warn("Chroot could not be updated", "code", res.ExitCode)
	}

	res, err = c.run.Run(ctx, c.buildCommand(j))
	if err != nil {
		return -1, err
	}
	return res.ExitCode, nil
}

// Plan returns the commands a build runs.  The sandbox name is a
// placeholder when none exists yet.
func (c *Chroot) Plan(j build.Job) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	if !c.ready {
		out = append(out, c.createCommand().String())
	}
	return append(out, c.refreshCommand().String(), c.buildCommand(j).String()), nil
}

// Release removes the working copy the job was built in.
func (c *Chroot) Release(ctx context.Context, j build.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	cp := filepath.Join(c.dir, copyName(j))
	return c.remove(ctx, cp, cp+".lock")
}

// Close removes the sandbox.
func (c *Chroot) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	return c.discard(ctx)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
