// Package resolve walks the dependency graph of AUR packages.
package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/aur"
	"github.com/the-maldridge/quack/pkg/types"
	"github.com/the-maldridge/quack/pkg/vercmp"
)

// New returns a Resolver that looks up records in meta and skips
// everything official contains.
func New(l hclog.Logger, meta MetadataSource, official Catalog, opts ...Option) *Resolver {
	x := Resolver{
		l:         l.Named("resolve"),
		meta:      meta,
		official:  official,
		installed: func(string) bool { return false },
		exists:    fileExists,
		cacheDir:  "/var/cache/pacman/pkg",
		arch:      types.HostArch(),
		pkgExt:    ".pkg.tar.zst",
	}
	for _, o := range opts {
		o(&x)
	}
	return &x
}

// BareName strips the version constraint from a dependency string,
// so "foo>=1.2" becomes "foo".
func BareName(dep string) string {
	if i := strings.IndexAny(dep, "<>="); i >= 0 {
		dep = dep[:i]
	}
	return strings.TrimSpace(dep)
}

// Prepare fetches the record of name and works out whether a cached
// build of that exact version can be reused.  Unknown names yield
// types.ErrNotFound.
func (r *Resolver) Prepare(ctx context.Context, name string) (*types.Package, error) {
	name = aur.StripPrefix(name)
	p, err := r.meta.Details(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, types.NewPackageError("resolve", name, types.ErrNotFound)
	}
	r.annotate(p)
	return p, nil
}

// annotate points CachePath at the archive a previous build of this
// exact version left in the cache, preferring the machine
// architecture over any.
func (r *Resolver) annotate(p *types.Package) {
	p.CachePath = ""
	for _, arch := range []string{r.arch, "any"} {
		c := filepath.Join(r.cacheDir, p.Name+"-"+p.Version+"-"+arch+r.pkgExt)
		if p.CachePath == "" {
			p.CachePath = c
		}
		if r.exists(c) {
			p.CachePath = c
			break
		}
	}
	p.FastForward = !r.force && !vercmp.IsDevel(p.Name) && r.exists(p.CachePath)
	if p.FastForward {
		r.l.Debug("Reusing cached build", "package", p.Name, "path", p.CachePath)
	}
}

// Resolve fills root.Deps.  External dependencies come out in an
// order where every package follows all the packages it needs.
func (r *Resolver) Resolve(ctx context.Context, root *types.Package) (*types.Package, error) {
	w := walk{
		root:    root,
		seen:    map[string]bool{root.Name: true},
		fetched: make(map[string]*types.Package),
	}
	if err := r.expand(ctx, &w, root); err != nil {
		return nil, err
	}
	return root, nil
}

// expand classifies the dependencies of cur.  Packages sharing the
// build base of cur are recorded on cur itself; external ones are
// recursed into first and then appended to both cur and the root, so
// the root list ends up in post-order.
func (r *Resolver) expand(ctx context.Context, w *walk, cur *types.Package) error {
	cur.Deps = types.DependencySet{ExternalData: make(map[string]*types.Package)}

	for _, dep := range cur.AllDepends() {
		name := BareName(dep)
		if name == "" || w.seen[name] {
			continue
		}
		w.seen[name] = true

		if r.official.Contains(name) {
			continue
		}

		rec, err := r.fetch(ctx, w, name)
		if err != nil {
			return err
		}
		if rec == nil {
			r.l.Warn("Not an AUR package, maybe a group or a virtual package", "dependency", name, "of", cur.Name)
			continue
		}

		if rec.PackageBase == cur.PackageBase || rec.PackageBase == w.root.PackageBase {
			owner := cur
			if rec.PackageBase == w.root.PackageBase {
				owner = w.root
			}
			owner.Deps.PackageBase = append(owner.Deps.PackageBase, name)
			continue
		}

		if r.installed(name) {
			w.root.Deps.Satisfied = append(w.root.Deps.Satisfied, name)
			continue
		}

		if err := r.expand(ctx, w, rec); err != nil {
			return err
		}
		for _, sub := range rec.Deps.External {
			data := rec.Deps.ExternalData[sub]
			// Transitive annotation on the copy kept for the
			// caller.  Cache reuse is decided by Prepare.
			data.FastForward = true
			cur.Deps.ExternalData[sub] = data
			cur.Deps.External = append(cur.Deps.External, sub)
		}
		cur.Deps.External = append(cur.Deps.External, name)
		cur.Deps.ExternalData[name] = rec
	}
	return nil
}

func (r *Resolver) fetch(ctx context.Context, w *walk, name string) (*types.Package, error) {
	if p, ok := w.fetched[name]; ok {
		return p, nil
	}
	p, err := r.meta.Details(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		r.annotate(p)
	}
	w.fetched[name] = p
	return p, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
