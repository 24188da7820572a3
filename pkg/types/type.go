package types

import (
	"time"
)

// Package represents a single AUR package as described by the RPC
// interface, plus the fields the resolver derives from it.
type Package struct {
	Name         string
	PackageBase  string
	Version      string
	Description  string
	URL          string
	Maintainer   string
	NumVotes     int
	Popularity   float64
	LastModified time.Time
	OutOfDate    time.Time

	Depends     []string
	MakeDepends []string
	Conflicts   []string
	Provides    []string
	Keywords    []string
	License     []string

	// CachePath is where a previous build of this exact version
	// would have been stored in the package cache.
	CachePath string

	// FastForward is set by Prepare when CachePath already exists
	// and can be installed without a fresh build.  Records kept in
	// DependencySet.ExternalData also carry it when they were reached
	// through another dependency; that copy is an annotation only and
	// the orchestrator prepares every dependency again by name.
	FastForward bool

	Deps DependencySet
}

// Flagged reports whether the package has been marked out of date.
func (p *Package) Flagged() bool {
	return !p.OutOfDate.IsZero()
}

// AllDepends returns the build time dependencies followed by the
// runtime ones, in the order they are resolved.
func (p *Package) AllDepends() []string {
	out := make([]string, 0, len(p.MakeDepends)+len(p.Depends))
	out = append(out, p.MakeDepends...)
	return append(out, p.Depends...)
}

// DependencySet is attached to a Package by the resolver.  A name
// appears in at most one of the lists, and names provided by the
// official repositories appear in none of them.
type DependencySet struct {
	// External lists AUR packages that need their own build, leaves
	// first.
	External     []string
	ExternalData map[string]*Package

	// PackageBase lists packages produced by the same build as the
	// package that owns this set.
	PackageBase []string

	// Satisfied lists AUR packages that are already installed.
	Satisfied []string
}

// Has returns true if the name was classified into any list.
func (d *DependencySet) Has(name string) bool {
	for _, l := range [][]string{d.External, d.PackageBase, d.Satisfied} {
		for _, n := range l {
			if n == name {
				return true
			}
		}
	}
	return false
}

// Decision is the answer given at the recipe inspection checkpoint.
type Decision int

// The answers that can be given to an approval request.
const (
	Proceed Decision = iota
	Skip
	Abort
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	default:
		return "abort"
	}
}

// A BuildResult is what a build session hands back to the
// orchestrator.
type BuildResult struct {
	Package   *Package
	Artifacts []string

	// Commands is filled in dry-run mode with what would have been
	// executed.
	Commands []string
}

// A BuildRecord is stored in the history after every install
// attempt.
type BuildRecord struct {
	Name      string
	Base      string
	Version   string
	Strategy  string
	Commit    string
	Artifacts []string
	Success   bool
	DryRun    bool
	When      time.Time
}
