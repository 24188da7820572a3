package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode decides when output is colored.
type ColorMode int

// The modes accepted by --color, named like pacman's.
const (
	ColorNever ColorMode = iota
	ColorAuto
	ColorAlways
)

// ParseColorMode parses never, auto or always.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "never":
		return ColorNever, nil
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	default:
		return ColorNever, fmt.Errorf("unknown color mode %q", s)
	}
}

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorAuto:
		return "auto"
	default:
		return "never"
	}
}

// Profile returns the terminal color profile to render with when
// writing to w.
func (m ColorMode) Profile(w io.Writer) termenv.Profile {
	switch m {
	case ColorAlways:
		return termenv.ANSI
	case ColorAuto:
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return termenv.ANSI
		}
	}
	return termenv.Ascii
}
