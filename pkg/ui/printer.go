// Package ui renders what quack tells the user and asks them.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/the-maldridge/quack/pkg/types"
)

// Printer writes messages and reads answers.  Its color mode is fixed
// when it is created.
type Printer struct {
	out  io.Writer
	in   *bufio.Reader
	mode ColorMode

	r *lipgloss.Renderer
}

// NewPrinter returns a Printer writing to out and reading answers
// from in.
func NewPrinter(out io.Writer, in io.Reader, mode ColorMode) *Printer {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(mode.Profile(out))
	x := Printer{
		out:  out,
		in:   bufio.NewReader(in),
		mode: mode,
		r:    r,
	}
	return &x
}

// Mode returns the color mode the printer was created with.
func (p *Printer) Mode() ColorMode {
	return p.mode
}

func (p *Printer) style(color string, bold bool) lipgloss.Style {
	s := p.r.NewStyle().Bold(bold)
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s
}

// Bold renders s in bold.
func (p *Printer) Bold(s string) string { return p.style("", true).Render(s) }

// Red renders s in red.
func (p *Printer) Red(s string) string { return p.style("1", false).Render(s) }

// Green renders s in green.
func (p *Printer) Green(s string) string { return p.style("2", false).Render(s) }

// Yellow renders s in bold yellow.
func (p *Printer) Yellow(s string) string { return p.style("3", true).Render(s) }

// Magenta renders s in bold magenta.
func (p *Printer) Magenta(s string) string { return p.style("5", true).Render(s) }

// Cyan renders s in bold cyan.
func (p *Printer) Cyan(s string) string { return p.style("6", true).Render(s) }

// Underline renders s underlined.
func (p *Printer) Underline(s string) string { return p.r.NewStyle().Underline(true).Render(s) }

// Println writes a plain line.
func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes plain formatted text.
func (p *Printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(p.out, format, a...)
}

// Info announces a step.
func (p *Printer) Info(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.style("4", true).Render("::"), p.Bold(fmt.Sprintf(format, a...)))
}

// Result reports the outcome of a step.
func (p *Printer) Result(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.style("2", true).Render("==>"), fmt.Sprintf(format, a...))
}

// Warning reports something the user should know about.
func (p *Printer) Warning(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.style("3", true).Render("==> WARNING:"), fmt.Sprintf(format, a...))
}

// Error reports a failure.
func (p *Printer) Error(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.style("1", true).Render("==> ERROR:"), fmt.Sprintf(format, a...))
}

// Question prints msg and returns the trimmed line typed in answer.
// End of input is an empty answer.
func (p *Printer) Question(msg string) (string, error) {
	fmt.Fprint(p.out, p.style("5", true).Render("??")+" "+p.Bold(msg)+" ")
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF {
		fmt.Fprintln(p.out)
	}
	return strings.TrimSpace(line), nil
}

// Pause shows msg as a warning and waits for Enter.
func (p *Printer) Pause(msg string) {
	p.Warning("%s", msg)
	_, _ = p.in.ReadString('\n')
}

// Confirm asks a yes/no question defaulting to no.
func (p *Printer) Confirm(msg string) (bool, error) {
	a, err := p.Question(msg + " [y/N]")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(a, "y"), nil
}

// Approve shows where the recipe of pkg was fetched and asks whether
// to build it.  y proceeds, q aborts everything, anything else skips
// this package.
func (p *Printer) Approve(pkg *types.Package, dir string) (types.Decision, error) {
	p.Info("Package %s is ready to be built in %s", p.Yellow(pkg.Name), dir)
	p.Info("You should REALLY take time to inspect its PKGBUILD")
	a, err := p.Question("When it's done, shall we continue? [y/N/q]")
	if err != nil {
		return types.Abort, err
	}
	switch strings.ToLower(a) {
	case "y":
		return types.Proceed, nil
	case "q":
		return types.Abort, nil
	default:
		return types.Skip, nil
	}
}

// Choose lists files and returns the raw answer to which of them
// should be installed.
func (p *Printer) Choose(files []string) (string, error) {
	p.Info("The following packages have been built:")
	for i, f := range files {
		fmt.Fprintf(p.out, "[%s] %s\n", strconv.Itoa(i+1), f)
	}
	return p.Question(fmt.Sprintf("Which one do you really want to install? [1…%d/A]", len(files)))
}
