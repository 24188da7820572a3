package config

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// LoadPacmanConf reads the pacman configuration at path.
func LoadPacmanConf(path string) (*PacmanConf, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePacmanConf(f)
}

// ParsePacmanConf extracts the repository sections, in order, and
// whether the Color option is enabled.  Include directives are not
// followed since only section names and options matter here.
func ParsePacmanConf(r io.Reader) (*PacmanConf, error) {
	pc := new(PacmanConf)
	section := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			if section != "options" {
				pc.Repos = append(pc.Repos, section)
			}
			continue
		}
		if section == "options" && line == "Color" {
			pc.Color = true
		}
	}
	return pc, scanner.Err()
}

// CopyPacmanConf writes a copy of the pacman configuration at src to
// dst with IgnorePkg disabled, so that a build root is always fully
// upgraded.
func CopyPacmanConf(src, dst string) error {
	in, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	lines := strings.Split(string(in), "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "IgnorePkg") {
			lines[i] = "#" + l
		}
	}
	return os.WriteFile(dst, []byte(strings.Join(lines, "\n")), 0644)
}
