package install

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/types"
)

func TestParseSelection(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"a", []int{0, 1, 2}},
		{"A", []int{0, 1, 2}},
		{"2", []int{1}},
		{" 3 1 ", []int{2, 0}},
		{"1 1", []int{0}},
	}
	for _, c := range cases {
		got, err := ParseSelection(c.in, 3)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	for _, in := range []string{"", "0", "4", "x", "1 y", "-1", "all"} {
		_, err := ParseSelection(in, 3)
		assert.True(t, errors.Is(err, types.ErrInvalidSelection), in)
	}
}

func TestSiblings(t *testing.T) {
	pkg := &types.Package{Name: "P-core", Deps: types.DependencySet{PackageBase: []string{"P-extra"}}}
	all := []string{"/b/P-core-1.0-1-any.pkg.tar.zst", "/b/P-extra-1.0-1-any.pkg.tar.zst", "/b/P-docs-1.0-1-any.pkg.tar.zst"}

	got := siblings(pkg, all, []string{all[0]})
	assert.Equal(t, []string{all[0], all[1]}, got)

	// Only applies to a single pick of the package itself.
	assert.Equal(t, []string{all[2]}, siblings(pkg, all, []string{all[2]}))
	assert.Equal(t, []string{all[0], all[2]}, siblings(pkg, all, []string{all[0], all[2]}))

	pkg.Deps.PackageBase = nil
	assert.Equal(t, []string{all[0]}, siblings(pkg, all, []string{all[0]}))
}

func TestInventory(t *testing.T) {
	i := NewInventory(map[string]string{"b": "1", "a": "2"})
	assert.True(t, i.Has("a"))
	assert.False(t, i.Has("c"))
	i.Add("c", "3")
	v, ok := i.Version("c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, []string{"a", "b", "c"}, i.Names())
}
