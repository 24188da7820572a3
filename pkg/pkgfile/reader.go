// Package pkgfile reads the compressed tarballs pacman deals in:
// sync databases and built package archives.
package pkgfile

import (
	"archive/tar"
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicXz   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// NewReader sniffs the compression used by r and returns a reader
// over the decompressed stream.  Uncompressed input is passed
// through.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, magicZstd):
		d, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: d, close: func() error { d.Close(); return nil }}, nil
	case bytes.HasPrefix(head, magicGzip):
		g, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return g, nil
	case bytes.HasPrefix(head, magicXz):
		x, err := xz.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: x}, nil
	default:
		return readCloser{Reader: br}, nil
	}
}

// Walk calls fn for every regular file in the compressed tarball at
// path.  Returning io.EOF from fn stops the walk without error.
func Walk(path string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WalkReader(f, fn)
}

// WalkReader is Walk for an already open stream.
func WalkReader(r io.Reader, fn func(*tar.Header, io.Reader) error) error {
	d, err := NewReader(r)
	if err != nil {
		return err
	}
	defer d.Close()

	tarchive := tar.NewReader(d)
	for {
		header, err := tarchive.Next()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		switch err := fn(header, tarchive); err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}
