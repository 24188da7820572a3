package container

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/types"
)

func TestReadSteps(t *testing.T) {
	p := filepath.Join(t.TempDir(), StepsName)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n# keys\n\ngpg --recv-keys ABCD\n  sudo pacman -S --noconfirm rust  \n"), 0644))
	steps, err := ReadSteps(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpg --recv-keys ABCD", "sudo pacman -S --noconfirm rust"}, steps)

	steps, err = ReadSteps(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Nil(t, steps)
}

func TestRoadmap(t *testing.T) {
	s, err := Roadmap([]string{"gpg --recv-keys ABCD"}, []string{"/tmp/quack_1/bar-1-1-any.pkg.tar.zst"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(s), "\n")
	assert.Equal(t, []string{
		"#!/usr/bin/env sh",
		"set -e",
		"sudo pacman -Syu --noconfirm",
		"gpg --recv-keys ABCD",
		"sudo pacman -U bar-1-1-any.pkg.tar.zst --noconfirm",
		"exec makepkg -s --noconfirm --skipinteg",
	}, lines)
}

func TestRoadmapRejectsBrokenSteps(t *testing.T) {
	_, err := Roadmap([]string{"if true; then"}, nil)
	assert.Error(t, err)
}

func newIsolated(t *testing.T) (*Isolated, *executor.Fake) {
	cfg := config.NewConfig()
	cfg.ScratchDir = t.TempDir()
	cfg.RoadmapFile = filepath.Join(t.TempDir(), StepsName)
	cfg.ContainerEngine = "docker"
	cfg.ContainerImage = "packaging"
	f := &executor.Fake{}
	s, err := New(hclog.NewNullLogger(), build.Env{Config: cfg, Runner: f, Elevator: executor.Direct{}})
	require.NoError(t, err)
	return s.(*Isolated), f
}

func TestBuildOnceThenRun(t *testing.T) {
	c, f := newIsolated(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StepsName), []byte("echo hi\n"), 0644))
	j := build.Job{Package: &types.Package{Name: "foo"}, Dir: dir}

	for i := 0; i < 2; i++ {
		code, err := c.Build(ctx, j)
		require.NoError(t, err)
		assert.Zero(t, code)
	}

	calls := f.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"build", "-t", "packaging", "-f", dockerfileName, c.imageDir}, calls[0].Args)
	assert.Equal(t, "run", calls[1].Args[0])
	assert.Contains(t, calls[1].Args, "type=bind,source="+dir+",destination="+workDir)
	assert.FileExists(t, filepath.Join(c.imageDir, dockerfileName))

	script, err := os.ReadFile(filepath.Join(dir, RoadmapName))
	require.NoError(t, err)
	assert.Contains(t, string(script), "echo hi\n")

	imageDir := c.imageDir
	require.NoError(t, c.Close(ctx))
	assert.NoDirExists(t, imageDir)
}

func TestBuildReturnsExitCode(t *testing.T) {
	c, f := newIsolated(t)
	f.Handler = func(cmd executor.Command) (executor.Result, error) {
		if cmd.Args[0] == "run" {
			return executor.Result{ExitCode: 2}, nil
		}
		return executor.Result{}, nil
	}
	code, err := c.Build(context.Background(), build.Job{Package: &types.Package{Name: "foo"}, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestImageFailure(t *testing.T) {
	c, f := newIsolated(t)
	f.Handler = func(executor.Command) (executor.Result, error) {
		return executor.Result{ExitCode: 1}, nil
	}
	_, err := c.Build(context.Background(), build.Job{Package: &types.Package{Name: "foo"}, Dir: t.TempDir()})
	assert.Error(t, err)
	assert.Len(t, f.Calls(), 1)
}

func TestPlanRunsNothing(t *testing.T) {
	c, f := newIsolated(t)
	dir := t.TempDir()
	lines, err := c.Plan(build.Job{Package: &types.Package{Name: "foo"}, Dir: dir})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lines[0], "docker build -t packaging"))
	assert.Contains(t, lines, "exec makepkg -s --noconfirm --skipinteg")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "docker run --rm"))
	assert.Empty(t, f.Calls())
	assert.NoFileExists(t, filepath.Join(dir, RoadmapName))
}
