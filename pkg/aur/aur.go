// Package aur talks to the AUR RPC interface and turns its answers
// into package records.
package aur

import (
	"context"
	"sort"
	"strings"
	"time"

	rpc "github.com/Jguer/aur"
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/types"
)

// New returns a Fetcher talking to the AUR hosted at baseURL, for
// instance https://aur.archlinux.org.
func New(l hclog.Logger, baseURL string) (*Fetcher, error) {
	c, err := rpc.NewClient(rpc.WithBaseURL(strings.TrimSuffix(baseURL, "/") + "/rpc"))
	if err != nil {
		return nil, err
	}
	return NewWithQuerier(l, c), nil
}

// NewWithQuerier wraps an existing query client.
func NewWithQuerier(l hclog.Logger, q Querier) *Fetcher {
	x := Fetcher{
		l: l.Named("aur"),
		q: q,
	}
	return &x
}

// StripPrefix removes the "aur/" repository qualifier users
// sometimes type in front of package names.
func StripPrefix(name string) string {
	return strings.TrimPrefix(name, "aur/")
}

// Info fetches the records of all the given names in one request.
// Names that are unknown are simply absent from the result, which is
// sorted by name.
func (f *Fetcher) Info(ctx context.Context, names []string) ([]*types.Package, error) {
	if len(names) == 0 {
		return nil, nil
	}
	f.l.Debug("Fetching package info", "names", names)
	res, err := f.q.Get(ctx, &rpc.Query{Needles: names, By: rpc.Name})
	if err != nil {
		return nil, err
	}
	return convertAll(res), nil
}

// Search returns the packages whose name or description contains
// term, sorted by name.
func (f *Fetcher) Search(ctx context.Context, term string) ([]*types.Package, error) {
	f.l.Debug("Searching", "term", term)
	res, err := f.q.Get(ctx, &rpc.Query{Needles: []string{term}, By: rpc.NameDesc, Contains: true})
	if err != nil {
		return nil, err
	}
	return convertAll(res), nil
}

// Details returns the record for exactly name, or nil if the AUR has
// no such package.
func (f *Fetcher) Details(ctx context.Context, name string) (*types.Package, error) {
	name = StripPrefix(name)
	res, err := f.Info(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	for _, p := range res {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func convertAll(in []rpc.Pkg) []*types.Package {
	out := make([]*types.Package, 0, len(in))
	for i := range in {
		out = append(out, convert(&in[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func convert(p *rpc.Pkg) *types.Package {
	x := types.Package{
		Name:        p.Name,
		PackageBase: p.PackageBase,
		Version:     p.Version,
		Description: p.Description,
		URL:         p.URL,
		Maintainer:  p.Maintainer,
		NumVotes:    p.NumVotes,
		Popularity:  p.Popularity,
		Depends:     p.Depends,
		MakeDepends: p.MakeDepends,
		Conflicts:   p.Conflicts,
		Provides:    p.Provides,
		Keywords:    p.Keywords,
		License:     p.License,
	}
	if x.PackageBase == "" {
		x.PackageBase = x.Name
	}
	if p.LastModified > 0 {
		x.LastModified = time.Unix(int64(p.LastModified), 0).UTC()
	}
	if p.OutOfDate > 0 {
		x.OutOfDate = time.Unix(int64(p.OutOfDate), 0).UTC()
	}
	return &x
}
