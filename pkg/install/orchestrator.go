// Package install builds AUR packages and hands them to pacman.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/pacman"
	"github.com/the-maldridge/quack/pkg/pkgfile"
	"github.com/the-maldridge/quack/pkg/types"
)

// New returns an Orchestrator.
func New(l hclog.Logger, cfg *config.Config, res Resolver, b *build.Builder, pm *pacman.Manager, term Terminal, opts ...Option) *Orchestrator {
	x := Orchestrator{
		l:       l.Named("install"),
		cfg:     cfg,
		res:     res,
		builder: b,
		pm:      pm,
		term:    term,
		inv:     NewInventory(nil),
		now:     time.Now,
		kept:    make(map[string][]string),
		pending: make(map[string]bool),
	}
	for _, o := range opts {
		o(&x)
	}
	return &x
}

// InstallAll installs each name in turn as an explicitly requested
// package.  It reports whether all of them succeeded, continuing past
// failures.  Only a user abort stops it early, and is returned.
func (o *Orchestrator) InstallAll(ctx context.Context, names []string) (bool, error) {
	ok := true
	for _, n := range names {
		_, err := o.Install(ctx, n, Policy{Interactive: !o.cfg.DryRun})
		switch {
		case err == nil:
		case errors.Is(err, types.ErrUserAbort):
			o.term.Error("%v", err)
			return false, err
		case errors.Is(err, types.ErrSkipped):
			o.term.Warning("%v", err)
		default:
			o.term.Error("%v", err)
			ok = false
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
	}
	return ok, nil
}

// Install builds name, after building and installing every AUR
// package it needs, and installs it.  Every attempt is recorded in
// the history.
func (o *Orchestrator) Install(ctx context.Context, name string, pol Policy) (*Result, error) {
	pkg, err := o.res.Prepare(ctx, name)
	if err != nil {
		return nil, err
	}
	return o.installPrepared(ctx, pkg, pol)
}

func (o *Orchestrator) installPrepared(ctx context.Context, pkg *types.Package, pol Policy) (*Result, error) {
	res, err := o.install(ctx, pkg, pol)
	o.record(pkg, res, err)
	return res, err
}

func (o *Orchestrator) record(pkg *types.Package, res *Result, err error) {
	if o.hist == nil {
		return
	}
	r := types.BuildRecord{
		Name:     pkg.Name,
		Base:     pkg.PackageBase,
		Version:  pkg.Version,
		Strategy: string(o.builder.Strategy().Kind()),
		Success:  err == nil,
		DryRun:   o.cfg.DryRun,
		When:     o.now().UTC(),
	}
	if res != nil {
		r.Commit = res.Commit
		for _, f := range res.Files {
			r.Artifacts = append(r.Artifacts, filepath.Base(f))
		}
	}
	if err := o.hist.Record(r); err != nil {
		o.l.Warn("Could not record build", "package", pkg.Name, "error", err)
	}
}

func (o *Orchestrator) install(ctx context.Context, pkg *types.Package, pol Policy) (*Result, error) {
	res := &Result{Package: pkg}

	var sess *build.Session
	if !pkg.FastForward {
		sess = o.builder.Open(pkg)
		defer sess.Close()

		o.term.Info("Retrieving %s", pkg.PackageBase)
		if err := sess.Fetch(ctx); err != nil {
			return nil, err
		}
		res.Commit = sess.Commit()
		var approve build.ApprovalFunc
		if pol.Interactive {
			approve = o.term.Approve
		}
		d, err := sess.Approve(approve)
		if err != nil {
			return nil, err
		}
		switch d {
		case types.Skip:
			return nil, types.NewPackageError("install", pkg.Name, types.ErrSkipped)
		case types.Abort:
			return nil, types.NewPackageError("install", pkg.Name, types.ErrUserAbort)
		}
	} else {
		o.term.Info("%s %s is already built, reusing %s", pkg.Name, pkg.Version, pkg.CachePath)
	}

	if _, err := o.res.Resolve(ctx, pkg); err != nil {
		return nil, err
	}
	depFiles, err := o.dependencies(ctx, pkg)
	if err != nil {
		return nil, err
	}

	var built []string
	if sess == nil {
		built = []string{pkg.CachePath}
	} else {
		if err := sess.Verify(ctx); err != nil {
			return nil, err
		}
		if err := sess.Stage(depFiles); err != nil {
			return nil, err
		}
		o.term.Info("Building %s %s", pkg.Name, pkg.Version)
		br, err := sess.Build(ctx)
		if err != nil {
			return nil, err
		}
		built = br.Artifacts
		res.Commands = append(res.Commands, br.Commands...)
	}

	files, err := o.pick(pkg, built, pol)
	if err != nil {
		return nil, types.NewPackageError("install", pkg.Name, err)
	}
	res.Files = files
	if pol.BuildOnly {
		if err := o.keep(pkg, res); err != nil {
			return res, err
		}
		return res, nil
	}
	if err := o.deliver(ctx, pkg, res, pol); err != nil {
		return res, err
	}
	return res, nil
}

// dependencies installs the external dependencies of pkg that are
// not installed yet, in order, and returns the archives every one of
// them was installed from.  Isolated builds start from a clean root,
// so for them the archives of AUR dependencies already installed on
// the host are returned too.
func (o *Orchestrator) dependencies(ctx context.Context, pkg *types.Package) ([]string, error) {
	var files []string
	for _, dep := range pkg.Deps.External {
		if kept, ok := o.kept[dep]; ok {
			files = append(files, kept...)
			continue
		}
		if o.inv.Has(dep) {
			continue
		}
		o.term.Info("%s needs %s, installing it first", pkg.Name, dep)
		child, err := o.Install(ctx, dep, o.childPolicy(false))
		if err := o.childFailed(pkg, dep, err); err != nil {
			return nil, err
		}
		if child != nil {
			files = append(files, child.Kept...)
		}
	}

	if o.builder.Strategy().Kind() == build.None {
		return files, nil
	}
	for _, dep := range pkg.Deps.Satisfied {
		kept, err := o.installedArchive(ctx, pkg, dep)
		if err := o.childFailed(pkg, dep, err); err != nil {
			return nil, err
		}
		files = append(files, kept...)
	}
	return files, nil
}

func (o *Orchestrator) childPolicy(buildOnly bool) Policy {
	return Policy{
		Interactive: o.cfg.InspectDependencies && !o.cfg.DryRun,
		AsDeps:      true,
		BuildOnly:   buildOnly,
	}
}

// childFailed decides what a failure of dep means for pkg.  Skipped
// dependencies only warn.
func (o *Orchestrator) childFailed(pkg *types.Package, dep string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrUserAbort):
		return err
	case errors.Is(err, types.ErrSkipped):
		o.term.Warning("Not building %s, it will have to come from somewhere else", dep)
		return nil
	default:
		return types.NewPackageError("install", pkg.Name, fmt.Errorf("%w %s: %v", types.ErrDependency, dep, err))
	}
}

// installedArchive returns an archive of dep, which is installed on
// the host.  One kept earlier in this run or found in the cache is
// used as is; otherwise dep is built again without being reinstalled.
func (o *Orchestrator) installedArchive(ctx context.Context, pkg *types.Package, dep string) ([]string, error) {
	if kept, ok := o.kept[dep]; ok {
		return kept, nil
	}
	if o.pending[dep] {
		o.l.Warn("Dependency cycle between installed packages", "package", pkg.Name, "dependency", dep)
		return nil, nil
	}
	rec, err := o.res.Prepare(ctx, dep)
	if err != nil {
		return nil, err
	}
	if rec.FastForward {
		o.kept[dep] = []string{rec.CachePath}
		return o.kept[dep], nil
	}

	o.term.Info("%s is installed but not cached, building it for %s", dep, pkg.Name)
	o.pending[dep] = true
	defer delete(o.pending, dep)
	child, err := o.installPrepared(ctx, rec, o.childPolicy(true))
	if err != nil {
		return nil, err
	}
	return child.Kept, nil
}

// keep holds on to archives that were built for staging only.  The
// build directory goes away with the session, so they are copied to
// the fallback directory.
func (o *Orchestrator) keep(pkg *types.Package, res *Result) error {
	res.Kept = res.Files
	if !o.cfg.DryRun && !pkg.FastForward {
		kept, err := preserve(res.Files, o.cfg.FallbackDir)
		if err != nil {
			return types.NewPackageError("build", pkg.Name, err)
		}
		res.Kept = kept
	}
	o.kept[pkg.Name] = res.Kept
	return nil
}

// deliver hands the chosen archives to pacman.  Built archives go to
// the package cache first so later runs can reuse them.  When pacman
// fails they are copied to the fallback directory instead of being
// lost with the build directory.
func (o *Orchestrator) deliver(ctx context.Context, pkg *types.Package, res *Result, pol Policy) error {
	opts := pacman.InstallOptions{Needed: !o.cfg.Force}
	names := archiveNames(res.Files, pkg.Name)

	res.Kept = res.Files
	if o.cfg.DryRun {
		res.Commands = append(res.Commands, o.pm.InstallCommand(res.Files, opts).String())
		if pol.AsDeps {
			res.Commands = append(res.Commands, o.pm.MarkAsDepsCommand(names...).String())
		}
		o.term.Info("Would install %s with:", pkg.Name)
		for _, c := range res.Commands {
			o.term.Println(c)
		}
		o.installed(pkg, res, names)
		return nil
	}

	if !pkg.FastForward {
		if err := o.pm.Backup(ctx, res.Files); err != nil {
			o.l.Warn("Could not back up archives to the cache", "error", err)
		} else {
			res.Kept = make([]string, len(res.Files))
			for i, f := range res.Files {
				res.Kept[i] = o.pm.CachePath(f)
			}
		}
	}

	if err := o.pm.Install(ctx, res.Files, opts); err != nil {
		kept, cerr := preserve(res.Files, o.cfg.FallbackDir)
		if cerr != nil {
			o.l.Error("Could not preserve archives", "error", cerr)
		} else {
			res.Kept = kept
			o.term.Warning("The built packages were copied to %s", o.cfg.FallbackDir)
		}
		return types.NewPackageError("install", pkg.Name, fmt.Errorf("%w: %v", types.ErrInstall, err))
	}

	if pol.AsDeps {
		if err := o.pm.MarkAsDeps(ctx, names...); err != nil {
			o.l.Warn("Could not mark as dependencies", "packages", names, "error", err)
		}
	}
	o.installed(pkg, res, names)
	o.term.Result("%s %s installed", pkg.Name, pkg.Version)
	return nil
}

func (o *Orchestrator) installed(pkg *types.Package, res *Result, names []string) {
	o.kept[pkg.Name] = res.Kept
	o.inv.Add(pkg.Name, pkg.Version)
	for i, n := range names {
		v := pkg.Version
		if fn, ok := pkgfile.ParseFilename(res.Files[i]); ok {
			v = fn.Version
		}
		o.inv.Add(n, v)
	}
}

// archiveNames returns the package name of each archive, using
// fallback for names that do not parse.
func archiveNames(files []string, fallback string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = fallback
		if fn, ok := pkgfile.ParseFilename(f); ok {
			out[i] = fn.Name
		}
	}
	return out
}

// preserve copies files into dir and returns the copies.
func preserve(files []string, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		dst := filepath.Join(dir, filepath.Base(f))
		if err := copyFile(f, dst); err != nil {
			return nil, err
		}
		out = append(out, dst)
	}
	return out, nil
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
