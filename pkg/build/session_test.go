package build_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/build/buildtest"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/makepkg"
	"github.com/the-maldridge/quack/pkg/types"
)

type harness struct {
	run      *executor.Fake
	cloner   *buildtest.Cloner
	strategy *buildtest.Strategy
	removed  []string
	b        *build.Builder
}

func newHarness(t *testing.T, dryRun bool) *harness {
	h := &harness{
		run:    &executor.Fake{},
		cloner: &buildtest.Cloner{Missing: map[string]bool{}, Broken: map[string]bool{}},
		strategy: &buildtest.Strategy{Produce: func(j build.Job) []string {
			return []string{j.Package.Name + "-1.0-1-x86_64.pkg.tar.zst"}
		}},
	}
	b, err := build.New(
		build.WithLogger(hclog.NewNullLogger()),
		build.WithCloner(h.cloner),
		build.WithMakepkg(makepkg.New(hclog.NewNullLogger(), h.run, "x86_64", ".pkg.tar.zst")),
		build.WithStrategy(h.strategy),
		build.WithScratchDir(t.TempDir()),
		build.WithDryRun(dryRun),
		build.WithRemoveAll(func(d string) error {
			h.removed = append(h.removed, d)
			return os.RemoveAll(d)
		}),
	)
	require.NoError(t, err)
	h.b = b
	return h
}

func pkg(name string) *types.Package {
	return &types.Package{Name: name, PackageBase: name, Version: "1.0-1"}
}

func TestSessionBuilds(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	s := h.b.Open(pkg("foo"))
	assert.Equal(t, build.Created, s.State())

	require.NoError(t, s.Fetch(ctx))
	assert.Equal(t, build.SourceFetched, s.State())
	assert.Equal(t, "rev-foo", s.Commit())
	// Archives already present are not build output.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "stale-1-1-any.pkg.tar.zst"), nil, 0644))

	d, err := s.Approve(nil)
	require.NoError(t, err)
	assert.Equal(t, types.Proceed, d)

	require.NoError(t, s.Verify(ctx))
	assert.Equal(t, build.IntegrityChecked, s.State())

	res, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, build.Succeeded, s.State())
	assert.Equal(t, []string{filepath.Join(s.Dir(), "foo-1.0-1-x86_64.pkg.tar.zst")}, res.Artifacts)
	assert.Equal(t, []string{"makepkg --verifysource"}, h.run.Lines())

	dir := s.Dir()
	require.NoError(t, s.Close())
	assert.Equal(t, build.Closed, s.State())
	assert.NoDirExists(t, dir)
}

func TestSessionApprovalIsAsked(t *testing.T) {
	h := newHarness(t, false)
	s := h.b.Open(pkg("foo"))
	defer s.Close()
	require.NoError(t, s.Fetch(context.Background()))

	var seen string
	d, err := s.Approve(func(p *types.Package, dir string) (types.Decision, error) {
		seen = dir
		return types.Skip, nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Skip, d)
	assert.Equal(t, s.Dir(), seen)
}

func TestSessionFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*harness)
		want  error
	}{
		{"clone", func(h *harness) { h.cloner.Broken["foo"] = true }, types.ErrClone},
		{"recipe", func(h *harness) { h.cloner.Missing["foo"] = true }, types.ErrRecipeMissing},
		{"integrity", func(h *harness) {
			h.run.Handler = func(executor.Command) (executor.Result, error) { return executor.Result{ExitCode: 1}, nil }
		}, types.ErrIntegrity},
		{"build", func(h *harness) { h.strategy.Code = 2 }, types.ErrBuild},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, false)
			c.setup(h)
			ctx := context.Background()
			s := h.b.Open(pkg("foo"))

			err := s.Fetch(ctx)
			if err == nil {
				err = s.Verify(ctx)
			}
			if err == nil {
				_, err = s.Build(ctx)
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.want), err.Error())
			var pe *types.PackageError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "foo", pe.Package)
			assert.Equal(t, build.Failed, s.State())

			require.NoError(t, s.Close())
			require.NoError(t, s.Close())
			assert.Len(t, h.removed, 1)
			if c.name == "integrity" {
				assert.Zero(t, h.strategy.BuildCount())
			}
		})
	}
}

func TestSessionCloseOnce(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	s := h.b.Open(pkg("foo"))
	require.NoError(t, s.Fetch(ctx))
	require.NoError(t, s.Verify(ctx))
	_, err := s.Build(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Close())
	}
	assert.Len(t, h.removed, 1)
	assert.Equal(t, 1, h.strategy.Releases)
}

func TestSessionCloseBeforeFetch(t *testing.T) {
	h := newHarness(t, false)
	s := h.b.Open(pkg("foo"))
	require.NoError(t, s.Close())
	assert.Empty(t, h.removed)
	assert.Zero(t, h.strategy.Releases)
	assert.Equal(t, build.Closed, s.State())
}

func TestSessionOrder(t *testing.T) {
	h := newHarness(t, false)
	s := h.b.Open(pkg("foo"))
	defer s.Close()

	_, err := s.Build(context.Background())
	var ws build.ErrWrongState
	require.True(t, errors.As(err, &ws))
	assert.Equal(t, build.Created, ws.State)
	assert.Equal(t, "cannot build a session in state created", err.Error())
}

func TestSessionStage(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	dep := filepath.Join(t.TempDir(), "bar-1-1-any.pkg.tar.zst")
	require.NoError(t, os.WriteFile(dep, []byte("bar"), 0644))

	s := h.b.Open(pkg("foo"))
	defer s.Close()
	require.NoError(t, s.Fetch(ctx))
	require.NoError(t, s.Verify(ctx))
	require.NoError(t, s.Stage([]string{dep, "/nonexistent/baz-1-1-any.pkg.tar.zst"}))
	assert.FileExists(t, filepath.Join(s.Dir(), "bar-1-1-any.pkg.tar.zst"))

	res, err := s.Build(ctx)
	require.NoError(t, err)
	require.Len(t, h.strategy.Builds, 1)
	assert.Equal(t, []string{filepath.Join(s.Dir(), "bar-1-1-any.pkg.tar.zst")}, h.strategy.Builds[0].Dependencies)
	// The staged dependency was there before the build.
	assert.Len(t, res.Artifacts, 1)
}

func TestSessionDryRun(t *testing.T) {
	h := newHarness(t, true)
	h.run.Handler = func(c executor.Command) (executor.Result, error) {
		if c.Capture {
			return executor.Result{Stdout: []byte("/x/foo-1.0-1-x86_64.pkg.tar.zst\n/x/foo-1.0-1-aarch64.pkg.tar.zst\n")}, nil
		}
		t.Errorf("dry run ran %s", c)
		return executor.Result{ExitCode: 1}, nil
	}
	ctx := context.Background()
	s := h.b.Open(pkg("foo"))

	require.NoError(t, s.Fetch(ctx))
	d, err := s.Approve(func(*types.Package, string) (types.Decision, error) {
		t.Error("dry run asked for approval")
		return types.Abort, nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Proceed, d)
	require.NoError(t, s.Verify(ctx))

	res, err := s.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(s.Dir(), "foo-1.0-1-x86_64.pkg.tar.zst")}, res.Artifacts)
	assert.Zero(t, h.strategy.BuildCount())
	require.Len(t, res.Commands, 2)
	assert.True(t, strings.HasPrefix(res.Commands[0], "makepkg --verifysource"))
	assert.Equal(t, "build foo", res.Commands[1])

	require.NoError(t, s.Close())
	assert.Zero(t, h.strategy.Releases)
}

func TestNewRequiresParts(t *testing.T) {
	_, err := build.New()
	assert.Error(t, err)
	_, err = build.New(build.WithStrategy(nil))
	assert.Error(t, err)
}
