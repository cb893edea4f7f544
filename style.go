package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const wrapWidth = 76

var (
	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Render

	faint = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}).
		Render

	paragraph = func(s string) string {
		return lipgloss.NewStyle().
			Padding(0, 0, 0, 2).
			Render(wordwrap.String(s, wrapWidth))
	}
)

func init() {
	// Help and listings go to stdout or stderr; keep them plain when
	// neither is a terminal.
	if !term.IsTerminal(int(os.Stdout.Fd())) && !term.IsTerminal(int(os.Stderr.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
