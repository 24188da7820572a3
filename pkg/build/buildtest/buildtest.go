// Package buildtest provides in-memory stand-ins for the pieces a
// build session drives, so sessions can be exercised without git,
// makepkg or a container engine.
package buildtest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/the-maldridge/quack/pkg/build"
)

// Cloner writes a PKGBUILD for every base it knows and fails for the
// rest.
type Cloner struct {
	mu     sync.Mutex
	clones []string
	dirs   map[string]string

	// Missing bases clone fine but hold no PKGBUILD.
	Missing map[string]bool
	// Broken bases fail to clone.
	Broken map[string]bool
}

// Clone fakes a git clone of base into dir.
func (c *Cloner) Clone(_ context.Context, base, dir string) error {
	c.mu.Lock()
	c.clones = append(c.clones, base)
	if c.dirs == nil {
		c.dirs = make(map[string]string)
	}
	c.dirs[dir] = base
	c.mu.Unlock()

	if c.Broken[base] {
		return errors.New("repository not found")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if c.Missing[base] {
		return os.WriteFile(filepath.Join(dir, "README"), nil, 0644)
	}
	return os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgbase="+base+"\n"), 0644)
}

// At returns "rev-<base>" for directories it cloned into.
func (c *Cloner) At(dir string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	base, ok := c.dirs[dir]
	if !ok {
		return "", errors.New("not a checkout")
	}
	return "rev-" + base, nil
}

// Clones returns the bases cloned so far, in order.
func (c *Cloner) Clones() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.clones...)
}

// Strategy pretends to build by creating the files Produce names in
// the job directory.
type Strategy struct {
	mu sync.Mutex

	// Produce returns the archive file names a build of the job
	// creates.  Nil produces nothing.
	Produce func(build.Job) []string
	// Code is the exit code every build returns.
	Code int
	// Err is returned by every build.
	Err error
	// As is the kind reported, build.None when empty.
	As build.Kind

	Builds   []build.Job
	Releases int
	Closes   int
}

// Kind returns As, defaulting to build.None.
func (s *Strategy) Kind() build.Kind {
	if s.As == "" {
		return build.None
	}
	return s.As
}

// Build records the job and writes the produced files.
func (s *Strategy) Build(_ context.Context, j build.Job) (int, error) {
	s.mu.Lock()
	s.Builds = append(s.Builds, j)
	s.mu.Unlock()

	if s.Err != nil {
		return -1, s.Err
	}
	if s.Produce != nil {
		for _, f := range s.Produce(j) {
			if err := os.WriteFile(filepath.Join(j.Dir, f), []byte(f), 0644); err != nil {
				return -1, err
			}
		}
	}
	return s.Code, nil
}

// Plan returns a single fake line.
func (s *Strategy) Plan(j build.Job) ([]string, error) {
	return []string{"build " + j.Package.Name}, nil
}

// Release counts.
func (s *Strategy) Release(context.Context, build.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Releases++
	return nil
}

// Close counts.
func (s *Strategy) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closes++
	return nil
}

// BuildCount returns how many builds ran.
func (s *Strategy) BuildCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Builds)
}
