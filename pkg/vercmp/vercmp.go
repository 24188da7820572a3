// Package vercmp decides whether an installed package should be
// replaced by what the AUR currently offers.  Version ordering itself
// is left to pacman's vercmp tool.
package vercmp

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/types"
)

// Ordering is the result of comparing two versions.
type Ordering int

// The possible orderings of a against b.
const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// A Comparator orders two version strings.
type Comparator interface {
	Compare(ctx context.Context, a, b string) (Ordering, error)
}

var develRE = regexp.MustCompile(`-(?:bzr|cvs|git|hg|svn)$`)

// IsDevel reports whether name follows a version control system
// rather than releases.
func IsDevel(name string) bool {
	return develRE.MatchString(name)
}

// Tool compares versions by running vercmp.
type Tool struct {
	run executor.Runner
}

// NewTool returns a Comparator backed by the vercmp binary.
func NewTool(run executor.Runner) *Tool {
	return &Tool{run: run}
}

// Compare runs `vercmp a b`.  Any negative output means a is older,
// any positive output means a is newer.
func (t *Tool) Compare(ctx context.Context, a, b string) (Ordering, error) {
	res, err := t.run.Run(ctx, executor.Command{Name: "vercmp", Args: []string{a, b}, Capture: true})
	if err != nil {
		return Equal, err
	}
	if !res.Success() {
		return Equal, fmt.Errorf("vercmp exited %d", res.ExitCode)
	}
	n, err := strconv.Atoi(string(bytes.TrimSpace(res.Stdout)))
	if err != nil {
		return Equal, fmt.Errorf("bad vercmp output %q", res.Stdout)
	}
	switch {
	case n < 0:
		return Less, nil
	case n > 0:
		return Greater, nil
	default:
		return Equal, nil
	}
}

// Oracle applies the upgrade policy.
type Oracle struct {
	l   hclog.Logger
	cmp Comparator

	withDevel bool
}

// NewOracle returns an Oracle.  When withDevel is set, development
// packages are always considered upgradable.
func NewOracle(l hclog.Logger, cmp Comparator, withDevel bool) *Oracle {
	x := Oracle{
		l:         l.Named("vercmp"),
		cmp:       cmp,
		withDevel: withDevel,
	}
	return &x
}

// ShouldUpgrade reports whether pkg should replace the installed
// version current.  A locally newer version is never downgraded.
func (o *Oracle) ShouldUpgrade(ctx context.Context, pkg *types.Package, current string) bool {
	if o.withDevel && IsDevel(pkg.Name) {
		return true
	}
	if current == pkg.Version {
		return false
	}
	ord, err := o.cmp.Compare(ctx, current, pkg.Version)
	if err != nil {
		o.l.Warn("Could not compare versions", "package", pkg.Name, "installed", current, "aur", pkg.Version, "error", err)
		return false
	}
	switch ord {
	case Greater:
		o.l.Warn("Installed version is newer than the AUR one", "package", pkg.Name, "installed", current, "aur", pkg.Version)
		return false
	case Equal:
		return false
	default:
		return true
	}
}
