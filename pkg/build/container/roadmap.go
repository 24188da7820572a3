package container

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/the-maldridge/quack/pkg/executor"
)

// RoadmapName is the script the image runs from the mounted recipe
// directory.
const RoadmapName = "roadmap.sh"

// StepsName is the file users drop next to a PKGBUILD, or keep in
// their config directory, to add steps before the build.
const StepsName = "my.roadmap.sh"

// ReadSteps returns the non-comment lines of a user step file.  A
// missing file has no steps.
func ReadSteps(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, s.Err()
}

// Roadmap renders the script run inside the container: update the
// image, run the user steps, install the dependency archives and
// build.  The user steps are parsed so that a broken line fails here
// instead of halfway through a build.
func Roadmap(steps, deps []string) (string, error) {
	var b strings.Builder
	b.WriteString("#!/usr/bin/env sh\n")
	b.WriteString("set -e\n")
	b.WriteString("sudo pacman -Syu --noconfirm\n")
	for _, s := range steps {
		b.WriteString(s + "\n")
	}
	for _, d := range deps {
		b.WriteString("sudo pacman -U " + executor.Quote(filepath.Base(d)) + " --noconfirm\n")
	}
	b.WriteString("exec makepkg -s --noconfirm --skipinteg\n")

	p := syntax.NewParser(syntax.KeepComments(true), syntax.Variant(syntax.LangPOSIX))
	f, err := p.Parse(strings.NewReader(b.String()), RoadmapName)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := syntax.NewPrinter().Print(&out, f); err != nil {
		return "", err
	}
	return out.String(), nil
}
