package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/the-maldridge/quack/pkg/storage"
	"github.com/the-maldridge/quack/pkg/types"
	"github.com/the-maldridge/quack/pkg/ui"
	"github.com/the-maldridge/quack/pkg/upgrade"
	"github.com/the-maldridge/quack/pkg/vercmp"
)

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search term",
		Short: "Search the AUR by name and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fetch, err := a.fetcher()
			if err != nil {
				return err
			}
			found, err := fetch.Search(ctx, args[0])
			if err != nil {
				return err
			}
			installed, err := a.pacman().Installed(ctx)
			if err != nil {
				return err
			}
			cmp := vercmp.NewTool(a.run)
			for _, p := range found {
				line := fmt.Sprintf("%s%s %s", a.out.Magenta("aur/"), a.out.Bold(p.Name), a.out.Green(p.Version))
				if cur, ok := installed[p.Name]; ok {
					tag := "[installed]"
					if o, err := cmp.Compare(ctx, cur, p.Version); err == nil && o == vercmp.Less {
						tag = fmt.Sprintf("[installed: %s]", cur)
					}
					line += " " + a.out.Cyan(tag)
				}
				if !p.OutOfDate.IsZero() {
					line += " " + a.out.Red("[outdated]")
				}
				a.out.Println(line)
				a.out.Println("    " + p.Description)
			}
			return nil
		},
	}
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info package",
		Short: "Show what the AUR knows about a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetch, err := a.fetcher()
			if err != nil {
				return err
			}
			hist, err := a.history()
			if err != nil {
				a.l.Debug("No build history", "error", err)
			} else {
				defer hist.Close()
			}
			return printInfo(cmd.Context(), a.out, fetch, hist, args[0])
		},
	}
}

type detailer interface {
	Details(context.Context, string) (*types.Package, error)
}

// printInfo shows the AUR record of name and, when hist is not nil,
// how its last build went.
func printInfo(ctx context.Context, out *ui.Printer, src detailer, hist *storage.History, name string) error {
	p, err := src.Details(ctx, name)
	if err != nil {
		return err
	}
	if p == nil {
		return types.NewPackageError("info", name, types.ErrNotFound)
	}

	field := func(k, v string) {
		out.Printf("%s: %s\n", out.Bold(fmt.Sprintf("%-15s", k)), v)
	}
	field("Name", p.Name)
	field("Package Base", p.PackageBase)
	field("Version", p.Version)
	field("Description", p.Description)
	field("URL", p.URL)
	field("Licenses", strings.Join(p.License, " "))
	field("Depends On", strings.Join(p.Depends, " "))
	field("Make Deps", strings.Join(p.MakeDepends, " "))
	field("Provides", strings.Join(p.Provides, " "))
	field("Conflicts With", strings.Join(p.Conflicts, " "))
	field("Maintainer", p.Maintainer)
	field("Votes", fmt.Sprint(p.NumVotes))
	field("Popularity", fmt.Sprintf("%.2f", p.Popularity))
	field("Last Modified", p.LastModified.Format("2006-01-02 15:04"))
	if !p.OutOfDate.IsZero() {
		field("Out Of Date", out.Red(p.OutOfDate.Format("2006-01-02")))
	}

	if hist == nil {
		return nil
	}
	last, err := hist.Last(p.PackageBase)
	if err != nil || last == nil {
		return err
	}
	field("Last Build", describeBuild(out, *last))
	return nil
}

func describeBuild(out *ui.Printer, r types.BuildRecord) string {
	result := out.Green("succeeded")
	if !r.Success {
		result = out.Red("failed")
	}
	s := fmt.Sprintf("%s %s with %s, %s", r.Version, result, r.Strategy, r.When.Local().Format("2006-01-02 15:04"))
	if r.Commit != "" {
		s += " at " + shortCommit(r.Commit)
	}
	if r.DryRun {
		s += " (dry run)"
	}
	return s
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}

func newHistoryCommand(a *app) *cobra.Command {
	var forget []string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last build of every package base quack built",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := a.history()
			if err != nil {
				return err
			}
			defer hist.Close()
			for _, base := range forget {
				if err := hist.Forget(base); err != nil {
					return err
				}
			}
			if len(forget) > 0 {
				return nil
			}
			return printHistory(a.out, hist)
		},
	}
	cmd.Flags().StringSliceVar(&forget, "forget", nil, "drop the records of these package bases")
	return cmd
}

func printHistory(out *ui.Printer, hist *storage.History) error {
	all, err := hist.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		out.Info("Nothing built yet")
		return nil
	}
	out.Println(out.Underline("Package base") + " " + out.Underline("Last build"))
	for _, r := range all {
		out.Println(out.Bold(r.Base) + " " + describeBuild(out, r))
	}
	return nil
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed packages that no configured repository provides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			idx, err := a.index(ctx)
			if err != nil {
				return err
			}
			if idx.PkgCount() == 0 {
				return errors.New("no repository databases found, run pacman -Sy first")
			}
			installed, err := a.pacman().Installed(ctx)
			if err != nil {
				return err
			}
			for _, n := range upgrade.Foreign(installed, idx) {
				a.out.Println(a.out.Bold(n) + " " + a.out.Green(installed[n]))
			}
			return nil
		},
	}
}
