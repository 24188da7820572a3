package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed creates <root>/<base>.git holding a single commit with a
// PKGBUILD and returns the commit hash.
func seed(t *testing.T, root, base string) string {
	t.Helper()
	dir := filepath.Join(root, base+".git")
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname="+base+"\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("PKGBUILD")
	require.NoError(t, err)
	h, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "quack", Email: "quack@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h.String()
}

func TestCloneAndAt(t *testing.T) {
	remote := t.TempDir()
	hash := seed(t, remote, "foo")

	r := New(hclog.NewNullLogger(), remote+"/")
	assert.Equal(t, remote+"/foo.git", r.URL("foo"))

	dst := filepath.Join(t.TempDir(), "work")
	require.NoError(t, r.Clone(context.Background(), "foo", dst))
	assert.FileExists(t, filepath.Join(dst, "PKGBUILD"))

	at, err := r.At(dst)
	require.NoError(t, err)
	assert.Equal(t, hash, at)
}

func TestCloneMissing(t *testing.T) {
	r := New(hclog.NewNullLogger(), t.TempDir())
	err := r.Clone(context.Background(), "nope", filepath.Join(t.TempDir(), "work"))
	assert.Error(t, err)
}
