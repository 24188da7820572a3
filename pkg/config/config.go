package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/the-maldridge/quack/pkg/types"
)

// NewConfig returns a config object with the defaults filled in.
// The config can be loaded from other sources to override the
// defaults.
func NewConfig() *Config {
	cache := filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), "quack")
	return &Config{
		Strategy:        "none",
		AURURL:          "https://aur.archlinux.org",
		Arch:            types.HostArch(),
		PkgExt:          ".pkg.tar.zst",
		PacmanConf:      "/etc/pacman.conf",
		MakepkgConf:     "/etc/makepkg.conf",
		SyncDBPath:      "/var/lib/pacman/sync",
		CacheDir:        "/var/cache/pacman/pkg",
		FallbackDir:     filepath.Join(cache, "built"),
		ScratchDir:      os.TempDir(),
		ChrootDir:       filepath.Join(cache, "chroot"),
		ContainerEngine: "docker",
		ContainerImage:  "packaging",
		RoadmapFile:     filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "quack", "my.roadmap.sh"),
		Storage:         "bitcask",
		HistoryPath:     filepath.Join(cache, "history"),
	}
}

// SetDefaults registers the defaults of NewConfig with v so that
// environment variables and flags can be layered on top of them.
func SetDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("with_devel", d.WithDevel)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("force", d.Force)
	v.SetDefault("inspect_dependencies", d.InspectDependencies)
	v.SetDefault("color", d.Color)
	v.SetDefault("aur_url", d.AURURL)
	v.SetDefault("arch", d.Arch)
	v.SetDefault("pkg_ext", d.PkgExt)
	v.SetDefault("pacman_conf", d.PacmanConf)
	v.SetDefault("makepkg_conf", d.MakepkgConf)
	v.SetDefault("sync_db_path", d.SyncDBPath)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("fallback_dir", d.FallbackDir)
	v.SetDefault("scratch_dir", d.ScratchDir)
	v.SetDefault("chroot_dir", d.ChrootDir)
	v.SetDefault("container_engine", d.ContainerEngine)
	v.SetDefault("container_image", d.ContainerImage)
	v.SetDefault("roadmap_file", d.RoadmapFile)
	v.SetDefault("storage", d.Storage)
	v.SetDefault("history_path", d.HistoryPath)
	v.SetDefault("repos", d.Repos)
}

// Load reads the configuration.  path names an explicit config file;
// when empty, config.{toml,yaml,json} is looked up in
// $XDG_CONFIG_HOME/quack and a missing file is not an error.
// QUACK_* environment variables override the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("QUACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "quack"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	c := new(Config)
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyPacmanConf fills the fields that default to what pacman is
// configured with.
func (c *Config) ApplyPacmanConf(pc *PacmanConf) {
	if len(c.Repos) == 0 {
		c.Repos = pc.Repos
	}
	if c.Color == "" {
		c.Color = "never"
		if pc.Color {
			c.Color = "auto"
		}
	}
}

func xdgDir(env, fallback string) string {
	if d := os.Getenv(env); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fallback)
	}
	return filepath.Join(home, fallback)
}
