// Package build drives one package from its recipe to installable
// archives.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/types"
)

// New returns a Builder.  A strategy, a cloner and a makepkg tool are
// required.
func New(opts ...Option) (*Builder, error) {
	x := Builder{
		l:         hclog.NewNullLogger(),
		scratch:   os.TempDir(),
		removeAll: os.RemoveAll,
	}
	for _, o := range opts {
		if err := o(&x); err != nil {
			return nil, err
		}
	}
	switch {
	case x.strategy == nil:
		return nil, errors.New("a build strategy is required")
	case x.cloner == nil:
		return nil, errors.New("a recipe cloner is required")
	case x.mk == nil:
		return nil, errors.New("a makepkg tool is required")
	}
	return &x, nil
}

// Strategy returns the strategy sessions build with.
func (b *Builder) Strategy() Strategy {
	return b.strategy
}

// DryRun reports whether sessions only predict their output.
func (b *Builder) DryRun() bool {
	return b.dryRun
}

// Close releases the strategy.
func (b *Builder) Close(ctx context.Context) error {
	return b.strategy.Close(ctx)
}

// Open starts a session for pkg.  Nothing happens on disk until
// Fetch.
func (b *Builder) Open(pkg *types.Package) *Session {
	x := Session{
		l:     b.l.Named(pkg.Name),
		b:     b,
		pkg:   pkg,
		state: Created,
	}
	return &x
}

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case SourceFetched:
		return "source-fetched"
	case IntegrityChecked:
		return "integrity-checked"
	case Building:
		return "building"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// State returns where the session is.
func (s *Session) State() State {
	return s.state
}

// Dir returns the scratch directory, empty before Fetch.
func (s *Session) Dir() string {
	return s.dir
}

// Package returns the package being built.
func (s *Session) Package() *types.Package {
	return s.pkg
}

// Commit returns the recipe revision that was fetched, if known.
func (s *Session) Commit() string {
	return s.commit
}

func (s *Session) want(op string, st State) error {
	if s.state != st {
		return ErrWrongState{Op: op, State: s.state}
	}
	return nil
}

func (s *Session) fail(op string, err error) error {
	s.state = Failed
	return types.NewPackageError(op, s.pkg.Name, err)
}

// Fetch creates the scratch directory and retrieves the recipe into
// it.
func (s *Session) Fetch(ctx context.Context) error {
	if err := s.want("fetch", Created); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(s.b.scratch, "quack_")
	if err != nil {
		return s.fail("fetch", err)
	}
	s.dir = dir
	s.l.Debug("Fetching recipe", "base", s.pkg.PackageBase, "dir", dir)

	if s.b.cloneURL != nil {
		s.plan = append(s.plan, executor.Command{
			Name: "git",
			Args: []string{"clone", s.b.cloneURL(s.pkg.PackageBase), dir},
		}.String())
	}
	if err := s.b.cloner.Clone(ctx, s.pkg.PackageBase, dir); err != nil {
		s.l.Debug("Clone failed", "error", err)
		return s.fail("fetch", fmt.Errorf("%w: %v", types.ErrClone, err))
	}
	if _, err := os.Stat(filepath.Join(dir, "PKGBUILD")); err != nil {
		return s.fail("fetch", types.ErrRecipeMissing)
	}
	if rev, err := s.b.cloner.At(dir); err != nil {
		s.l.Debug("Recipe revision unknown", "dir", dir, "error", err)
	} else {
		s.commit = rev
	}
	s.state = SourceFetched
	return nil
}

// Approve asks fn whether the fetched recipe may be built.  Dry runs
// are never asked.
func (s *Session) Approve(fn ApprovalFunc) (types.Decision, error) {
	if err := s.want("approve", SourceFetched); err != nil {
		return types.Abort, err
	}
	if s.b.dryRun || fn == nil {
		return types.Proceed, nil
	}
	return fn(s.pkg, s.dir)
}

// Verify downloads the sources and checks their integrity.  Dry runs
// only record the command.
func (s *Session) Verify(ctx context.Context) error {
	if err := s.want("verify", SourceFetched); err != nil {
		return err
	}
	cmd := s.b.mk.VerifySourceCommand(s.dir)
	if s.b.dryRun {
		s.plan = append(s.plan, cmd.String())
		s.state = IntegrityChecked
		return nil
	}
	ok, err := s.b.mk.VerifySource(ctx, s.dir)
	if err != nil {
		return s.fail("verify", err)
	}
	if !ok {
		return s.fail("verify", types.ErrIntegrity)
	}
	s.state = IntegrityChecked
	return nil
}

// Stage copies dependency archives into the scratch directory so
// that isolated builds can install them.  Archives that do not exist
// are skipped, except in dry runs where they were only ever
// predicted.
func (s *Session) Stage(deps []string) error {
	if s.state != SourceFetched && s.state != IntegrityChecked {
		return ErrWrongState{Op: "stage", State: s.state}
	}
	for _, d := range deps {
		dst := filepath.Join(s.dir, filepath.Base(d))
		if err := copyFile(d, dst); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return s.fail("stage", err)
			}
			if !s.b.dryRun {
				s.l.Warn("Dependency archive is gone, not staging it", "file", d)
				continue
			}
		}
		s.deps = append(s.deps, dst)
	}
	return nil
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

func (s *Session) job() Job {
	return Job{Package: s.pkg, Dir: s.dir, Dependencies: s.deps}
}

// archives lists the package archives currently in the scratch
// directory.
func (s *Session) archives() (map[string]struct{}, error) {
	m, err := filepath.Glob(filepath.Join(s.dir, "*"+s.b.mk.Ext()))
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(m))
	for _, f := range m {
		out[f] = struct{}{}
	}
	return out, nil
}

// Build runs the strategy and returns the archives it produced.  Dry
// runs return the archives makepkg predicts along with the commands
// that would have run.
func (s *Session) Build(ctx context.Context) (*types.BuildResult, error) {
	if err := s.want("build", IntegrityChecked); err != nil {
		return nil, err
	}
	s.state = Building
	job := s.job()

	if s.b.dryRun {
		names, err := s.b.mk.PackageList(ctx, s.dir)
		if err != nil {
			return nil, s.fail("build", err)
		}
		cmds, err := s.b.strategy.Plan(job)
		if err != nil {
			return nil, s.fail("build", err)
		}
		s.plan = append(s.plan, cmds...)
		s.state = Succeeded
		return &types.BuildResult{Package: s.pkg, Artifacts: s.abs(names), Commands: s.plan}, nil
	}

	before, err := s.archives()
	if err != nil {
		return nil, s.fail("build", err)
	}
	s.l.Info("Building", "strategy", s.b.strategy.Kind(), "dir", s.dir)
	code, err := s.b.strategy.Build(ctx, job)
	if err != nil {
		return nil, s.fail("build", err)
	}
	if code != 0 {
		return nil, s.fail("build", fmt.Errorf("%w: exit status %d", types.ErrBuild, code))
	}
	after, err := s.archives()
	if err != nil {
		return nil, s.fail("build", err)
	}
	var produced []string
	for f := range after {
		if _, ok := before[f]; !ok {
			produced = append(produced, f)
		}
	}
	sort.Strings(produced)
	s.state = Succeeded
	return &types.BuildResult{Package: s.pkg, Artifacts: produced}, nil
}

func (s *Session) abs(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, filepath.Join(s.dir, filepath.Base(n)))
	}
	return out
}

// Close releases the strategy's per-build resources and removes the
// scratch directory.  Only the first call does anything.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		defer func() { s.state = Closed }()
		if s.dir == "" {
			return
		}
		var errs []error
		if s.state != Created && !s.b.dryRun {
			if err := s.b.strategy.Release(context.Background(), s.job()); err != nil {
				s.l.Warn("Strategy did not release cleanly", "error", err)
				errs = append(errs, err)
			}
		}
		if err := s.b.removeAll(s.dir); err != nil {
			s.l.Warn("Could not remove scratch directory", "dir", s.dir, "error", err)
			errs = append(errs, err)
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
