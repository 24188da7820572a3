package install

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/the-maldridge/quack/pkg/pkgfile"
	"github.com/the-maldridge/quack/pkg/types"
)

// ParseSelection turns an answer to the artifact question into
// zero-based indices.  "a" picks all n, otherwise the answer is a
// space separated list of one-based indices.
func ParseSelection(answer string, n int) ([]int, error) {
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, "a") {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	f := strings.Fields(answer)
	if len(f) == 0 {
		return nil, fmt.Errorf("%w: nothing chosen", types.ErrInvalidSelection)
	}
	seen := make(map[int]bool, len(f))
	var out []int
	for _, s := range f {
		i, err := strconv.Atoi(s)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidSelection, s)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i-1)
	}
	return out, nil
}

// siblings appends, for every package built alongside pkg, the first
// archive of it that is not already chosen.  It only applies when a
// single archive of pkg itself was picked.
func siblings(pkg *types.Package, all, chosen []string) []string {
	if len(chosen) != 1 || len(pkg.Deps.PackageBase) == 0 {
		return chosen
	}
	if !strings.HasPrefix(filepath.Base(chosen[0]), pkg.Name) {
		return chosen
	}
	in := map[string]bool{chosen[0]: true}
	for _, ld := range pkg.Deps.PackageBase {
		for _, a := range all {
			if !in[a] && pkgfile.MatchName(a, ld) {
				chosen = append(chosen, a)
				in[a] = true
				break
			}
		}
	}
	return chosen
}

// pick narrows the built archives down to the ones to install.
func (o *Orchestrator) pick(pkg *types.Package, all []string, pol Policy) ([]string, error) {
	switch len(all) {
	case 0:
		return nil, types.ErrNoArtifacts
	case 1:
		return all, nil
	}

	if pol.AsDeps {
		for _, a := range all {
			if pkgfile.MatchName(a, pkg.Name) {
				return siblings(pkg, all, []string{a}), nil
			}
		}
	}

	names := make([]string, len(all))
	for i, a := range all {
		names[i] = filepath.Base(a)
	}
	answer, err := o.term.Choose(names)
	if err != nil {
		return nil, err
	}
	idx, err := ParseSelection(answer, len(all))
	if err != nil {
		return nil, err
	}
	chosen := make([]string, 0, len(idx))
	for _, i := range idx {
		chosen = append(chosen, all[i])
	}
	return siblings(pkg, all, chosen), nil
}
