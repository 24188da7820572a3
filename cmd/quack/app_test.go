package main

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rpc "github.com/Jguer/aur"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/quack/pkg/aur/aurtest"
	"github.com/the-maldridge/quack/pkg/build"
	"github.com/the-maldridge/quack/pkg/config"
	"github.com/the-maldridge/quack/pkg/executor"
	"github.com/the-maldridge/quack/pkg/privilege"
	"github.com/the-maldridge/quack/pkg/storage"
	"github.com/the-maldridge/quack/pkg/ui"
)

func writeSyncDB(t *testing.T, path string, names ...string) {
	t.Helper()
	var raw bytes.Buffer
	tw := tar.NewWriter(&raw)
	for _, n := range names {
		body := "%NAME%\n" + n + "\n"
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: n + "-1-1/desc", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	var out bytes.Buffer
	w := gzip.NewWriter(&out)
	_, err := w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func TestUpgradeLoadsIndexOnce(t *testing.T) {
	srv := aurtest.New(rpc.Pkg{Name: "yay", Version: "12.3.5-1"})
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	sync := filepath.Join(dir, "sync")
	require.NoError(t, os.MkdirAll(sync, 0755))
	writeSyncDB(t, filepath.Join(sync, "core.db"), "glibc")

	cfg := config.NewConfig()
	cfg.AURURL = srv.URL
	cfg.SyncDBPath = sync
	cfg.Repos = []string{"core"}
	cfg.Storage = "memory"
	cfg.HistoryPath = filepath.Join(dir, "history")
	cfg.ScratchDir = filepath.Join(dir, "scratch")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.FallbackDir = filepath.Join(dir, "built")
	cfg.Strategy = "none"

	run := &executor.Fake{Handler: func(c executor.Command) (executor.Result, error) {
		switch c.Name {
		case "pacman":
			return executor.Result{Stdout: []byte("yay 12.0-1\nglibc 2.38-7\n")}, nil
		case "vercmp":
			return executor.Result{Stdout: []byte("-1\n")}, nil
		}
		return executor.Result{}, nil
	}}

	var logs, screen bytes.Buffer
	l := hclog.New(&hclog.LoggerOptions{Name: "quack", Level: hclog.Debug, Output: &logs})
	a := &app{
		l:    l,
		v:    viper.New(),
		cfg:  cfg,
		out:  ui.NewPrinter(&screen, strings.NewReader("n\n"), ui.ColorNever),
		run:  run,
		sudo: privilege.New(l, run),
	}
	build.DoCallbacks()
	storage.DoCallbacks()

	ok, err := a.upgrade(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, strings.Count(logs.String(), "Official index loaded"))
	assert.Contains(t, screen.String(), "yay")
	assert.Contains(t, screen.String(), "12.3.5-1")
	assert.False(t, run.Ran("makepkg"))
}
