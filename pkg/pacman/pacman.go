// Package pacman wraps the system package manager.
package pacman

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
)

// Manager runs pacman on behalf of quack.
type Manager struct {
	l    hclog.Logger
	run  executor.Runner
	elev executor.Elevator

	color    string
	cacheDir string
}

// InstallOptions adjust an install transaction.
type InstallOptions struct {
	// Needed skips packages that are already up to date.
	Needed bool
}

// New returns a Manager.  color is passed to pacman's --color flag,
// cacheDir is where built packages are backed up.
func New(l hclog.Logger, run executor.Runner, elev executor.Elevator, color, cacheDir string) *Manager {
	x := Manager{
		l:        l.Named("pacman"),
		run:      run,
		elev:     elev,
		color:    color,
		cacheDir: cacheDir,
	}
	return &x
}

// InstallCommand returns the unprivileged form of the install call.
func (m *Manager) InstallCommand(files []string, o InstallOptions) executor.Command {
	args := []string{"--color", m.color, "-U"}
	if o.Needed {
		args = append(args, "--needed")
	}
	return executor.Command{Name: "pacman", Args: append(args, files...)}
}

// Install installs local package archives.
func (m *Manager) Install(ctx context.Context, files []string, o InstallOptions) error {
	m.l.Debug("Installing", "files", files, "needed", o.Needed)
	return m.privileged(ctx, m.InstallCommand(files, o))
}

// MarkAsDepsCommand returns the unprivileged form of MarkAsDeps.
func (m *Manager) MarkAsDepsCommand(names ...string) executor.Command {
	return executor.Command{Name: "pacman", Args: append([]string{"-D", "--asdeps"}, names...)}
}

// MarkAsDeps flags installed packages as not explicitly installed.
func (m *Manager) MarkAsDeps(ctx context.Context, names ...string) error {
	return m.privileged(ctx, m.MarkAsDepsCommand(names...))
}

// Backup copies built archives into the package cache so that later
// runs can reuse them.
func (m *Manager) Backup(ctx context.Context, files []string) error {
	for _, f := range files {
		dst := filepath.Join(m.cacheDir, filepath.Base(f))
		if err := m.privileged(ctx, executor.Command{Name: "cp", Args: []string{f, dst}}); err != nil {
			return err
		}
	}
	return nil
}

// CachePath returns where Backup stores file.
func (m *Manager) CachePath(file string) string {
	return filepath.Join(m.cacheDir, filepath.Base(file))
}

// Installed returns every installed package with its version.
func (m *Manager) Installed(ctx context.Context) (map[string]string, error) {
	res, err := m.run.Run(ctx, executor.Command{Name: "pacman", Args: []string{"--color=never", "-Q"}, Capture: true})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("pacman -Q exited %d", res.ExitCode)
	}
	return ParseQuery(res.Stdout), nil
}

// ParseQuery parses the "name version" lines printed by pacman -Q.
func ParseQuery(out []byte) map[string]string {
	pkgs := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		f := strings.Fields(scanner.Text())
		if len(f) != 2 {
			continue
		}
		pkgs[f[0]] = f[1]
	}
	return pkgs
}

func (m *Manager) privileged(ctx context.Context, c executor.Command) error {
	c = m.elev.Elevate(ctx, c)
	res, err := m.run.Run(ctx, c)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%s exited %d", c.String(), res.ExitCode)
	}
	return nil
}
