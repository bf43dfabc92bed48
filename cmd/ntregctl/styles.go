package main

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#00D7FF")
	successColor   = lipgloss.Color("#04B575")
	mutedColor     = lipgloss.Color("#666666")
)

// palette holds the styles used for text output. Colors are dropped when
// the output is not a terminal.
type palette struct {
	heading lipgloss.Style
	key     lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
}

func styles() palette {
	r := lipgloss.NewRenderer(stdout)
	return palette{
		heading: r.NewStyle().Bold(true).Foreground(primaryColor),
		key:     r.NewStyle().Foreground(secondaryColor),
		ok:      r.NewStyle().Foreground(successColor),
		muted:   r.NewStyle().Foreground(mutedColor),
	}
}
