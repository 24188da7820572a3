package pkgfile

import (
	"path/filepath"
	"strings"
)

// Extensions that makepkg may produce, longest match first.
var extensions = []string{
	".pkg.tar.zst",
	".pkg.tar.xz",
	".pkg.tar.gz",
	".pkg.tar.bz2",
	".pkg.tar",
}

// TrimExt removes a known package extension from a file name.
func TrimExt(name string) string {
	for _, e := range extensions {
		if strings.HasSuffix(name, e) {
			return strings.TrimSuffix(name, e)
		}
	}
	return name
}

// A Filename is a package archive name split into its parts.
type Filename struct {
	Name    string
	Version string
	Arch    string
}

// ParseFilename splits "<name>-<pkgver>-<pkgrel>-<arch><ext>".  The
// name itself may contain dashes, the three trailing fields never do.
func ParseFilename(file string) (Filename, bool) {
	stem := TrimExt(filepath.Base(file))
	parts := strings.Split(stem, "-")
	if len(parts) < 4 {
		return Filename{}, false
	}
	n := len(parts)
	return Filename{
		Name:    strings.Join(parts[:n-3], "-"),
		Version: parts[n-3] + "-" + parts[n-2],
		Arch:    parts[n-1],
	}, true
}

// FilterForArch keeps the entries of a `makepkg --packagelist`
// output that can be installed on arch, and normalises them to bare
// file names carrying ext.  Older makepkg versions print names
// without directory or extension, newer ones print full paths.
func FilterForArch(list []string, arch, ext string) []string {
	var out []string
	for _, l := range list {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		stem := TrimExt(filepath.Base(l))
		if !strings.HasSuffix(stem, "-any") && !strings.HasSuffix(stem, "-"+arch) {
			continue
		}
		out = append(out, stem+ext)
	}
	return out
}

// MatchName reports whether file is an archive of the package named
// name, comparing the parsed name when possible and falling back to
// a prefix match.
func MatchName(file, name string) bool {
	if fn, ok := ParseFilename(file); ok {
		return fn.Name == name
	}
	return strings.HasPrefix(filepath.Base(file), name+"-")
}
