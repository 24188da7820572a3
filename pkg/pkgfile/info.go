package pkgfile

import (
	"archive/tar"
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrNoInfo is returned when an archive has no .PKGINFO member.
var ErrNoInfo = errors.New("archive has no .PKGINFO")

// Info is the subset of .PKGINFO that quack cares about.
type Info struct {
	Name     string
	Base     string
	Version  string
	Arch     string
	Depends  []string
	Provides []string
}

// ReadInfo extracts the metadata of a built package archive.
func ReadInfo(path string) (*Info, error) {
	var info *Info
	err := Walk(path, func(h *tar.Header, r io.Reader) error {
		if h.Name != ".PKGINFO" {
			return nil
		}
		i, err := ParseInfo(r)
		if err != nil {
			return err
		}
		info = i
		return io.EOF
	})
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNoInfo
	}
	return info, nil
}

// ParseInfo parses the "key = value" lines of a .PKGINFO file.
func ParseInfo(r io.Reader) (*Info, error) {
	info := new(Info)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch k {
		case "pkgname":
			info.Name = v
		case "pkgbase":
			info.Base = v
		case "pkgver":
			info.Version = v
		case "arch":
			info.Arch = v
		case "depend":
			info.Depends = append(info.Depends, v)
		case "provides":
			info.Provides = append(info.Provides, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if info.Base == "" {
		info.Base = info.Name
	}
	return info, nil
}
