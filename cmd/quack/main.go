package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/the-maldridge/quack/pkg/build/chroot"
	_ "github.com/the-maldridge/quack/pkg/build/container"
	_ "github.com/the-maldridge/quack/pkg/build/none"
	_ "github.com/the-maldridge/quack/pkg/storage/bc"
	_ "github.com/the-maldridge/quack/pkg/storage/memory"
)

var version = "dev"

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "quack",
		Short:         "Build and install packages from the AUR",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/quack/config.*)")
	pf.BoolVar(&a.debug, "debug", false, "log debugging information")
	pf.BoolVar(&a.crazyfool, "crazyfool", false, "allow running as root")
	pf.String("color", "", "colorize output: never, auto or always (default from pacman.conf)")
	pf.String("strategy", "", "where to build: none, chroot or container")
	pf.Bool("dry-run", false, "show what would be done without building or installing")
	pf.Bool("force", false, "rebuild and reinstall even when up to date")
	pf.Bool("inspect-deps", false, "ask to inspect the recipes of dependencies too")
	a.v.BindPFlag("color", pf.Lookup("color"))
	a.v.BindPFlag("strategy", pf.Lookup("strategy"))
	a.v.BindPFlag("dry_run", pf.Lookup("dry-run"))
	a.v.BindPFlag("force", pf.Lookup("force"))
	a.v.BindPFlag("inspect_dependencies", pf.Lookup("inspect-deps"))

	root.AddCommand(
		newInstallCommand(a),
		newUpgradeCommand(a),
		newSearchCommand(a),
		newInfoCommand(a),
		newListCommand(a),
		newHistoryCommand(a),
		newVersionCommand(),
	)
	return root
}

func newInstallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install package...",
		Short: "Build and install AUR packages and the AUR packages they need",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.newInstaller(cmd.Context())
			if err != nil {
				return err
			}
			defer in.release()

			ok, err := in.o.InstallAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			if !ok {
				return errFailed
			}
			return nil
		},
	}
}

func newUpgradeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade every installed AUR package that has a newer version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.upgrade(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().Bool("devel", false, "always rebuild development packages (-git, -svn...)")
	a.v.BindPFlag("with_devel", cmd.Flags().Lookup("devel"))
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of quack",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "quack", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		if a.out != nil {
			a.out.Error("%v", err)
		} else {
			fmt.Fprintln(os.Stderr, "quack:", err)
		}
		stop()
		os.Exit(1)
	}
}
