// Package makepkg drives the makepkg build tool.
package makepkg

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/pkgfile"
)

// Tool runs makepkg in recipe directories.
type Tool struct {
	l   hclog.Logger
	run executor.Runner

	arch string
	ext  string
}

// New returns a Tool producing packages for arch with the file
// extension ext.
func New(l hclog.Logger, run executor.Runner, arch, ext string) *Tool {
	x := Tool{
		l:    l.Named("makepkg"),
		run:  run,
		arch: arch,
		ext:  ext,
	}
	return &x
}

// PackageList asks makepkg which archives a build of the recipe in
// dir would produce, and keeps those installable on this machine.
func (t *Tool) PackageList(ctx context.Context, dir string) ([]string, error) {
	res, err := t.run.Run(ctx, executor.Command{Name: "makepkg", Args: []string{"--packagelist"}, Dir: dir, Capture: true})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("makepkg --packagelist exited %d", res.ExitCode)
	}
	return pkgfile.FilterForArch(strings.Split(string(res.Stdout), "\n"), t.arch, t.ext), nil
}

// VerifySourceCommand downloads the sources and checks them against
// the recipe's checksums and signatures.
func (t *Tool) VerifySourceCommand(dir string) executor.Command {
	return executor.Command{Name: "makepkg", Args: []string{"--verifysource"}, Dir: dir}
}

// VerifySource runs VerifySourceCommand and reports whether it passed.
func (t *Tool) VerifySource(ctx context.Context, dir string) (bool, error) {
	res, err := t.run.Run(ctx, t.VerifySourceCommand(dir))
	if err != nil {
		return false, err
	}
	if !res.Success() {
		t.l.Warn("Source verification failed", "dir", dir, "code", res.ExitCode)
	}
	return res.Success(), nil
}

// BuildCommand is the host build: sources were already verified, so
// integrity checks are skipped, and make dependencies get removed
// afterwards.
func (t *Tool) BuildCommand(dir string) executor.Command {
	return executor.Command{Name: "makepkg", Args: []string{"-sr", "--skipinteg"}, Dir: dir}
}

// Ext returns the package file extension.
func (t *Tool) Ext() string {
	return t.ext
}
