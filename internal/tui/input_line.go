package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws the title prompt as one line of exactly width cells.
func renderInputLine(width int, label, inputView string) string {
	if width < 10 {
		width = 10
	}

	// A newline inside the input view would wrap the prompt while typing.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	prompt := lipgloss.NewStyle().Bold(true).Foreground(colors.AccentFg).Background(colors.Accent).Render(" " + label + " ")
	line := lipgloss.PlaceHorizontal(
		width,
		lipgloss.Left,
		prompt+" "+inputView,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colors.InputBg),
	)
	if xansi.StringWidth(line) > width {
		// Terminate styling so the cut does not bleed into the next line.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
