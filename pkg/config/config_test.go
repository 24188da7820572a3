package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pacmanConf = `#
# /etc/pacman.conf
#
[options]
HoldPkg     = pacman glibc
Architecture = auto
IgnorePkg   = linux
Color
ParallelDownloads = 5

#[core-testing]
#Include = /etc/pacman.d/mirrorlist

[core]
Include = /etc/pacman.d/mirrorlist

[extra] # the big one
Include = /etc/pacman.d/mirrorlist

[multilib]
Include = /etc/pacman.d/mirrorlist
`

func TestParsePacmanConf(t *testing.T) {
	pc, err := ParsePacmanConf(strings.NewReader(pacmanConf))
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "extra", "multilib"}, pc.Repos)
	assert.True(t, pc.Color)

	pc, err = ParsePacmanConf(strings.NewReader("[options]\n#Color\n[core]\n"))
	require.NoError(t, err)
	assert.False(t, pc.Color)
}

func TestApplyPacmanConf(t *testing.T) {
	c := NewConfig()
	c.ApplyPacmanConf(&PacmanConf{Repos: []string{"core"}, Color: true})
	assert.Equal(t, []string{"core"}, c.Repos)
	assert.Equal(t, "auto", c.Color)

	c = NewConfig()
	c.Color = "always"
	c.Repos = []string{"mine"}
	c.ApplyPacmanConf(&PacmanConf{Repos: []string{"core"}})
	assert.Equal(t, []string{"mine"}, c.Repos)
	assert.Equal(t, "always", c.Color)
}

func TestCopyPacmanConf(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pacman.conf")
	dst := filepath.Join(dir, "pacman.tmp.conf")
	require.NoError(t, os.WriteFile(src, []byte(pacmanConf), 0644))

	require.NoError(t, CopyPacmanConf(src, dst))
	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(out), "#IgnorePkg   = linux")
	assert.Contains(t, string(out), "HoldPkg     = pacman glibc")
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	c, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Strategy)
	assert.Equal(t, "https://aur.archlinux.org", c.AURURL)
	assert.Equal(t, filepath.Join(dir, "cache", "quack", "chroot"), c.ChrootDir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "quack"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quack", "config.toml"),
		[]byte("strategy = \"chroot\"\nwith_devel = true\nrepos = [\"core\"]\n"), 0644))
	t.Setenv("QUACK_CONTAINER_ENGINE", "podman")

	c, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "chroot", c.Strategy)
	assert.True(t, c.WithDevel)
	assert.Equal(t, []string{"core"}, c.Repos)
	assert.Equal(t, "podman", c.ContainerEngine)
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
