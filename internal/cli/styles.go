package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
	colorAccent  = lipgloss.Color("39")

	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// colorEnabled reports whether w is a terminal that accepts styled output.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// printer writes status lines, styled only on terminals.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, color: colorEnabled(w)}
}

func (p printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(successStyle, "✓")+" "+fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(errorStyle, "✗")+" "+fmt.Sprintf(format, args...))
}

func (p printer) detail(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(mutedStyle, label+":"), p.render(accentStyle, value))
}
