package types

import (
	"errors"
)

var (
	// ErrNotFound is returned when a requested name is not an AUR
	// package at all.
	ErrNotFound = errors.New("not an AUR package")

	// ErrClone is returned when the recipe repository could not be
	// retrieved.
	ErrClone = errors.New("recipe could not be cloned")

	// ErrRecipeMissing is returned when a clone succeeded but holds
	// no PKGBUILD.
	ErrRecipeMissing = errors.New("no PKGBUILD in recipe")

	// ErrIntegrity is returned when source verification fails.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrBuild is returned when the build command exits nonzero.
	ErrBuild = errors.New("build failed")

	// ErrNoArtifacts is returned when a build produced nothing to
	// install.
	ErrNoArtifacts = errors.New("build produced no packages")

	// ErrInstall is returned when the package manager refuses the
	// produced artifacts.
	ErrInstall = errors.New("install failed")

	// ErrSkipped is returned when the user declined to build a
	// package.
	ErrSkipped = errors.New("build skipped")

	// ErrUserAbort is returned when the user asked to stop
	// everything.
	ErrUserAbort = errors.New("aborted by user")

	// ErrInvalidSelection is returned when an artifact choice could
	// not be understood.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrDependency is returned when a dependency could not be
	// installed, which prevents the dependent from being built.
	ErrDependency = errors.New("dependency failed")
)

// PackageError attaches the failing package and the operation that
// was in progress to an error.
type PackageError struct {
	Op      string
	Package string
	Err     error
}

// NewPackageError wraps err for the given operation and package.
func NewPackageError(op, pkg string, err error) *PackageError {
	return &PackageError{Op: op, Package: pkg, Err: err}
}

func (e *PackageError) Error() string {
	if e.Package == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Package + ": " + e.Err.Error()
}

func (e *PackageError) Unwrap() error {
	return e.Err
}
