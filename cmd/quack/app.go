package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"github.com/the-maldridge/quack/pkg/aur"
	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/install"
	"github.com/the-maldridge/quack/pkg/makepkg"
	"github.com/the-maldridge/quack/pkg/pacman"
	"github.com/the-maldridge/quack/pkg/privilege"
	"github.com/the-maldridge/quack/pkg/repo"
	"github.com/the-maldridge/quack/pkg/resolve"
	"github.com/the-maldridge/quack/pkg/source"
	"github.com/the-maldridge/quack/pkg/storage"
	"github.com/the-maldridge/quack/pkg/ui"
	"github.com/the-maldridge/quack/pkg/upgrade"
	"github.com/the-maldridge/quack/pkg/vercmp"
)

var errFailed = errors.New("some packages could not be installed")

// app holds what every command needs once flags and config are read.
type app struct {
	l   hclog.Logger
	v   *viper.Viper
	cfg *config.Config
	out *ui.Printer

	run  executor.Runner
	sudo *privilege.Sudo

	configPath string
	debug      bool
	crazyfool  bool
}

func newApp() *app {
	x := app{
		l:   hclog.NewNullLogger(),
		v:   viper.New(),
		run: executor.New(),
	}
	return &x
}

// setup runs after flag parsing and before any command.
func (a *app) setup() error {
	level := hclog.Info
	if a.debug {
		level = hclog.Debug
	}
	a.l = hclog.New(&hclog.LoggerOptions{
		Name:   "quack",
		Level:  level,
		Output: os.Stderr,
	})

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if pc, err := config.LoadPacmanConf(cfg.PacmanConf); err != nil {
		a.l.Warn("Could not read pacman.conf", "path", cfg.PacmanConf, "error", err)
	} else {
		cfg.ApplyPacmanConf(pc)
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}
	a.cfg = cfg

	mode, err := ui.ParseColorMode(cfg.Color)
	if err != nil {
		return err
	}
	a.out = ui.NewPrinter(os.Stdout, os.Stdin, mode)

	if os.Geteuid() == 0 && !a.crazyfool {
		return errors.New("refusing to run as root, makepkg would refuse to build anyway (use --crazyfool to insist)")
	}
	a.sudo = privilege.New(a.l, a.run, privilege.WithNotify(a.out.Pause))

	build.SetLogger(a.l)
	build.DoCallbacks()
	storage.SetLogger(a.l)
	storage.DoCallbacks()
	return nil
}

func (a *app) fetcher() (*aur.Fetcher, error) {
	return aur.New(a.l, a.cfg.AURURL)
}

func (a *app) index(ctx context.Context) (*repo.IndexService, error) {
	idx := repo.NewIndexService(a.l)
	if err := idx.LoadRepos(ctx, a.cfg.SyncDBPath, a.cfg.Repos); err != nil {
		return nil, err
	}
	return idx, nil
}

func (a *app) pacman() *pacman.Manager {
	return pacman.New(a.l, a.run, a.sudo, a.out.Mode().String(), a.cfg.CacheDir)
}

// history opens the build history.  Dry runs keep it in memory.
func (a *app) history() (*storage.History, error) {
	name := a.cfg.Storage
	if a.cfg.DryRun {
		name = "memory"
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.HistoryPath), 0755); err != nil {
		return nil, err
	}
	s, err := storage.Initialize(name, a.cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	return storage.NewHistory(s), nil
}

// installer is everything an install or upgrade needs.
type installer struct {
	o     *install.Orchestrator
	inv   *install.Inventory
	idx   *repo.IndexService
	fetch *aur.Fetcher

	release func()
}

// newInstaller assembles an installer.  Its release function must be
// called when done.
func (a *app) newInstaller(ctx context.Context) (*installer, error) {
	fetch, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	idx, err := a.index(ctx)
	if err != nil {
		return nil, err
	}
	pm := a.pacman()
	installed, err := pm.Installed(ctx)
	if err != nil {
		return nil, err
	}
	inv := install.NewInventory(installed)

	res := resolve.New(a.l, fetch, idx,
		resolve.WithInstalled(inv.Has),
		resolve.WithCache(a.cfg.CacheDir, a.cfg.Arch, a.cfg.PkgExt),
		resolve.WithForce(a.cfg.Force),
	)

	kind, err := build.ParseKind(a.cfg.Strategy)
	if err != nil {
		return nil, err
	}
	mk := makepkg.New(a.l, a.run, a.cfg.Arch, a.cfg.PkgExt)
	strat, err := build.ConstructStrategy(kind, build.Env{
		Config:   a.cfg,
		Runner:   a.run,
		Elevator: a.sudo,
		Makepkg:  mk,
	})
	if err != nil {
		return nil, err
	}
	git := source.New(a.l, a.cfg.AURURL)
	b, err := build.New(
		build.WithLogger(a.l),
		build.WithCloner(git),
		build.WithMakepkg(mk),
		build.WithStrategy(strat),
		build.WithScratchDir(a.cfg.ScratchDir),
		build.WithDryRun(a.cfg.DryRun),
		build.WithCloneURL(git.URL),
	)
	if err != nil {
		return nil, err
	}

	opts := []install.Option{install.WithInventory(inv)}
	hist, err := a.history()
	if err != nil {
		a.l.Warn("Build history is unavailable", "error", err)
	} else {
		opts = append(opts, install.WithHistory(hist))
	}

	x := installer{
		o:     install.New(a.l, a.cfg, res, b, pm, a.out, opts...),
		inv:   inv,
		idx:   idx,
		fetch: fetch,
	}
	x.release = func() {
		if err := b.Close(context.Background()); err != nil {
			a.l.Warn("Strategy did not shut down cleanly", "error", err)
		}
		if hist != nil {
			hist.Close()
		}
	}
	return &x, nil
}

// upgrade installs newer versions of the foreign packages, reading
// the official index once for both the plan and the installs.
func (a *app) upgrade(ctx context.Context) (bool, error) {
	in, err := a.newInstaller(ctx)
	if err != nil {
		return false, err
	}
	defer in.release()

	installed := make(map[string]string)
	for _, n := range in.inv.Names() {
		installed[n], _ = in.inv.Version(n)
	}
	p := upgrade.New(a.l, installed, in.idx, in.fetch, a.oracle(), in.o, a.out, a.cfg.WithDevel)
	return p.Run(ctx)
}

func (a *app) oracle() *vercmp.Oracle {
	return vercmp.NewOracle(a.l, vercmp.NewTool(a.run), a.cfg.WithDevel)
}
