package repo

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/pkgfile"
)

// IndexService answers whether a package name is served by one of
// the official repositories.
type IndexService struct {
	l hclog.Logger

	names    map[string]string
	provides map[string]string
}

// NewIndexService creates an empty IndexService.
func NewIndexService(l hclog.Logger) *IndexService {
	is := IndexService{
		l:        l.Named("index"),
		names:    make(map[string]string),
		provides: make(map[string]string),
	}
	return &is
}

// LoadRepos loads the sync database of every named repository from
// dir, which is normally /var/lib/pacman/sync.
func (is *IndexService) LoadRepos(ctx context.Context, dir string, repos []string) error {
	for _, r := range repos {
		p := filepath.Join(dir, r+".db")
		if err := is.LoadIndex(ctx, p); err != nil {
			return fmt.Errorf("loading %s: %w", r, err)
		}
	}
	is.l.Debug("Official index loaded", "repos", repos, "packages", is.PkgCount())
	return nil
}

// LoadIndex reads one sync database.  The location may be a plain
// path, a file:// URL or an http(s) URL.
func (is *IndexService) LoadIndex(ctx context.Context, loc string) error {
	var indexBytes []byte
	var err error

	switch {
	case strings.HasPrefix(loc, "http"):
		indexBytes, err = is.fetchHTTP(ctx, loc)
	default:
		indexBytes, err = os.ReadFile(strings.TrimPrefix(loc, "file://"))
	}
	if err != nil {
		return err
	}

	repoName := strings.TrimSuffix(path.Base(loc), ".db")
	return is.parseSyncDB(repoName, bytes.NewReader(indexBytes))
}

// Add registers names as official packages of repo.
func (is *IndexService) Add(repo string, names ...string) {
	for _, n := range names {
		is.names[n] = repo
	}
}

// PkgCount is a quick check of how many packages this index knows
// about.
func (is *IndexService) PkgCount() int {
	return len(is.names)
}

// Contains reports whether name is a package, or is provided by a
// package, in the official repositories.
func (is *IndexService) Contains(name string) bool {
	if _, ok := is.names[name]; ok {
		return true
	}
	_, ok := is.provides[name]
	return ok
}

func (is *IndexService) fetchHTTP(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", loc, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// A sync database is a tarball holding one "<name>-<ver>/desc" file
// per package.  Only the name and provides sections matter here.
func (is *IndexService) parseSyncDB(repoName string, r io.Reader) error {
	return pkgfile.WalkReader(r, func(h *tar.Header, body io.Reader) error {
		if path.Base(h.Name) != "desc" {
			return nil
		}
		name, provides, err := parseDesc(body)
		if err != nil {
			is.l.Warn("Skipping unreadable entry", "entry", h.Name, "error", err)
			return nil
		}
		if name == "" {
			return nil
		}
		is.Add(repoName, name)
		for _, p := range provides {
			is.provides[p] = name
		}
		return nil
	})
}

func parseDesc(r io.Reader) (string, []string, error) {
	var name, section string
	var provides []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%") {
			section = line
			continue
		}
		switch section {
		case "%NAME%":
			name = line
		case "%PROVIDES%":
			provides = append(provides, bareName(line))
		}
	}
	return name, provides, scanner.Err()
}

func bareName(dep string) string {
	if i := strings.IndexAny(dep, "<>="); i >= 0 {
		return dep[:i]
	}
	return dep
}
