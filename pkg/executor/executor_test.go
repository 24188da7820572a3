package executor

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	c := Command{Name: "docker", Args: []string{"run", "--rm", "/tmp/a b"}}
	assert.Equal(t, `docker run --rm '/tmp/a b'`, c.String())
}

func TestExecCapturesAndReportsExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no shell available")
	}
	r := New()

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hi"}, Capture: true})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hi\n", string(res.Stdout))

	res, err = r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecMissingBinary(t *testing.T) {
	_, err := New().Run(context.Background(), Command{Name: "quack-does-not-exist"})
	assert.Error(t, err)
}

func TestFakeRecords(t *testing.T) {
	f := &Fake{Handler: func(c Command) (Result, error) {
		if c.Name == "false" {
			return Result{ExitCode: 1}, nil
		}
		return Result{}, nil
	}}
	res, err := f.Run(context.Background(), Command{Name: "false"})
	require.NoError(t, err)
	assert.False(t, res.Success())

	_, _ = f.Run(context.Background(), Command{Name: "pacman", Args: []string{"-U", "a.pkg.tar.zst"}})
	assert.True(t, f.Ran("pacman -U"))
	assert.False(t, f.Ran("makepkg"))
	assert.Len(t, f.Calls(), 2)
}
