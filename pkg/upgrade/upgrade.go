// Package upgrade brings installed AUR packages up to date.
package upgrade

import (
	"context"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/vercmp"
)

// New returns a Planner over the installed name to version map.
// Development packages are only considered when withDevel is set.
func New(l hclog.Logger, installed map[string]string, official Catalog, meta MetadataSource, oracle Oracle, inst Installer, term Terminal, withDevel bool) *Planner {
	x := Planner{
		l:         l.Named("upgrade"),
		installed: installed,
		official:  official,
		meta:      meta,
		oracle:    oracle,
		inst:      inst,
		term:      term,
		withDevel: withDevel,
	}
	return &x
}

// Foreign returns the installed packages that no official repository
// provides, in order.
func Foreign(installed map[string]string, official Catalog) []string {
	var out []string
	for name := range installed {
		if !official.Contains(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Plan returns the packages to upgrade, in name order.
func (p *Planner) Plan(ctx context.Context) ([]Candidate, error) {
	var names []string
	for _, n := range Foreign(p.installed, p.official) {
		if vercmp.IsDevel(n) && !p.withDevel {
			continue
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, nil
	}

	pkgs, err := p.meta.Info(ctx, names)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(pkgs))
	var out []Candidate
	for _, pkg := range pkgs {
		found[pkg.Name] = true
		cur, ok := p.installed[pkg.Name]
		if !ok {
			continue
		}
		if p.oracle.ShouldUpgrade(ctx, pkg, cur) {
			out = append(out, Candidate{Package: pkg, Current: cur})
		}
	}
	for _, n := range names {
		if !found[n] {
			p.l.Debug("Foreign package is not in the AUR", "package", n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package.Name < out[j].Package.Name })
	return out, nil
}

// Run shows the plan, asks for confirmation and installs every
// candidate in turn.  It reports whether all of them succeeded.
func (p *Planner) Run(ctx context.Context) (bool, error) {
	cands, err := p.Plan(ctx)
	if err != nil {
		return false, err
	}
	if len(cands) == 0 {
		p.term.Info("Nothing to upgrade")
		return true, nil
	}

	p.term.Info("The following packages will be upgraded:")
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.Package.Name
		p.term.Printf("[%d] %s - %s - %s\n", i+1, p.term.Bold(c.Package.Name), p.term.Red(c.Current), p.term.Green(c.Package.Version))
	}
	ok, err := p.term.Confirm("Do you want to upgrade the above packages?")
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return p.inst.InstallAll(ctx, names)
}
