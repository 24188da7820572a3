package makepkg

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/executor"
)

func TestPackageList(t *testing.T) {
	f := &executor.Fake{Handler: func(c executor.Command) (executor.Result, error) {
		return executor.Result{Stdout: []byte("/b/foo-1-1-x86_64.pkg.tar.zst\n/b/foo-1-1-i686.pkg.tar.zst\n/b/foo-doc-1-1-any.pkg.tar.zst\n")}, nil
	}}
	tool := New(hclog.NewNullLogger(), f, "x86_64", ".pkg.tar.zst")

	got, err := tool.PackageList(context.Background(), "/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo-1-1-x86_64.pkg.tar.zst", "foo-doc-1-1-any.pkg.tar.zst"}, got)

	calls := f.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/b", calls[0].Dir)
	assert.True(t, calls[0].Capture)
}

func TestPackageListFailure(t *testing.T) {
	f := &executor.Fake{Handler: func(executor.Command) (executor.Result, error) {
		return executor.Result{ExitCode: 4}, nil
	}}
	_, err := New(hclog.NewNullLogger(), f, "x86_64", ".pkg.tar.zst").PackageList(context.Background(), "/b")
	assert.Error(t, err)
}

func TestVerifySource(t *testing.T) {
	code := 0
	f := &executor.Fake{Handler: func(executor.Command) (executor.Result, error) {
		return executor.Result{ExitCode: code}, nil
	}}
	tool := New(hclog.NewNullLogger(), f, "x86_64", ".pkg.tar.zst")

	ok, err := tool.VerifySource(context.Background(), "/b")
	require.NoError(t, err)
	assert.True(t, ok)

	code = 1
	ok, err = tool.VerifySource(context.Background(), "/b")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"makepkg --verifysource", "makepkg --verifysource"}, f.Lines())
	assert.Equal(t, "makepkg -sr --skipinteg", tool.BuildCommand("/b").String())
}
