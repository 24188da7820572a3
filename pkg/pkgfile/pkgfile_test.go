package pkgfile

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const pkginfo = `# Generated by makepkg
pkgname = libfoo-extra
pkgbase = libfoo
pkgver = 1.2-1
arch = x86_64
depend = glibc
depend = libfoo=1.2
provides = foo-extra
`

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func compress(t *testing.T, kind string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch kind {
	case "zst":
		w, err = zstd.NewWriter(&buf)
	case "gz":
		w = gzip.NewWriter(&buf)
	case "xz":
		w, err = xz.NewWriter(&buf)
	default:
		return data
	}
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadInfoAllCompressions(t *testing.T) {
	raw := tarball(t, map[string]string{
		".BUILDINFO": "format = 2\n",
		".PKGINFO":   pkginfo,
		"usr/lib/x":  "binary",
	})
	dir := t.TempDir()
	for _, kind := range []string{"zst", "gz", "xz", "tar"} {
		t.Run(kind, func(t *testing.T) {
			p := filepath.Join(dir, "libfoo-extra-1.2-1-x86_64.pkg.tar."+kind)
			require.NoError(t, os.WriteFile(p, compress(t, kind, raw), 0644))

			info, err := ReadInfo(p)
			require.NoError(t, err)
			assert.Equal(t, "libfoo-extra", info.Name)
			assert.Equal(t, "libfoo", info.Base)
			assert.Equal(t, "1.2-1", info.Version)
			assert.Equal(t, "x86_64", info.Arch)
			assert.Equal(t, []string{"glibc", "libfoo=1.2"}, info.Depends)
			assert.Equal(t, []string{"foo-extra"}, info.Provides)
		})
	}
}

func TestReadInfoMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.pkg.tar.zst")
	require.NoError(t, os.WriteFile(p, compress(t, "zst", tarball(t, map[string]string{"a": "b"})), 0644))
	_, err := ReadInfo(p)
	assert.ErrorIs(t, err, ErrNoInfo)
}

func TestParseInfoDefaultsBase(t *testing.T) {
	info, err := ParseInfo(bytes.NewBufferString("pkgname = solo\n"))
	require.NoError(t, err)
	assert.Equal(t, "solo", info.Base)
}

func TestParseFilename(t *testing.T) {
	fn, ok := ParseFilename("/var/cache/pacman/pkg/python-foo-bar-1.0.r3-2-any.pkg.tar.zst")
	require.True(t, ok)
	assert.Equal(t, Filename{Name: "python-foo-bar", Version: "1.0.r3-2", Arch: "any"}, fn)

	_, ok = ParseFilename("P-core-1.0.pkg")
	assert.False(t, ok)
}

func TestFilterForArch(t *testing.T) {
	list := []string{
		"foo-1.0-1-x86_64",
		"foo-docs-1.0-1-any",
		"foo-1.0-1-aarch64",
		"/build/foo/foo-debug-1.0-1-x86_64.pkg.tar.zst",
		"",
	}
	got := FilterForArch(list, "x86_64", ".pkg.tar.zst")
	assert.Equal(t, []string{
		"foo-1.0-1-x86_64.pkg.tar.zst",
		"foo-docs-1.0-1-any.pkg.tar.zst",
		"foo-debug-1.0-1-x86_64.pkg.tar.zst",
	}, got)
}

func TestMatchName(t *testing.T) {
	assert.True(t, MatchName("foo-1.0-1-x86_64.pkg.tar.zst", "foo"))
	assert.False(t, MatchName("foo-docs-1.0-1-any.pkg.tar.zst", "foo"))
	assert.True(t, MatchName("P-extra-1.0.pkg", "P-extra"))
}
