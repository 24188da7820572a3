package source

import (
	"context"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
)

// New creates a RepoMngr that clones from baseURL, for instance
// https://aur.archlinux.org.  A local directory holding one bare or
// regular repository per package base works too.
func New(l hclog.Logger, baseURL string) *RepoMngr {
	x := RepoMngr{
		l:       l.Named("git"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	return &x
}

// URL returns the repository location of a package base.
func (r *RepoMngr) URL(base string) string {
	return r.baseURL + "/" + base + ".git"
}

// Clone retrieves the recipe of base into dir, which must be empty
// or absent.
func (r *RepoMngr) Clone(ctx context.Context, base, dir string) error {
	url := r.URL(base)
	r.l.Debug("Cloning recipe", "url", url, "path", dir)
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		r.l.Trace("Error running PlainClone", "error", err)
		return err
	}
	return nil
}

// At returns the commit the checkout in dir is at.
func (r *RepoMngr) At(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		r.l.Trace("Error getting HEAD")
		return "", err
	}
	return head.Hash().String(), nil
}
