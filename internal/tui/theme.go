package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette holds every color the board uses. Each is adaptive so the board reads on
// light and dark terminals alike.
type palette struct {
	Muted      lipgloss.AdaptiveColor
	SelectedBg lipgloss.AdaptiveColor
	SelectedFg lipgloss.AdaptiveColor
	HeaderBg   lipgloss.AdaptiveColor
	HeaderFg   lipgloss.AdaptiveColor
	InputBg    lipgloss.AdaptiveColor
	Accent     lipgloss.AdaptiveColor
	AccentFg   lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
}

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var colors = palette{
	Muted:      ac("240", "243"),
	SelectedBg: ac("#e9e9e9", "#262626"),
	SelectedFg: ac("235", "255"),
	HeaderBg:   ac("252", "235"),
	HeaderFg:   ac("235", "252"),
	InputBg:    ac("254", "234"),
	Accent:     ac("27", "62"),
	AccentFg:   ac("255", "235"),
	Error:      ac("160", "203"),
}

// styleMuted is faint only on dark backgrounds; faint gray on white is unreadable.
func styleMuted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colors.Muted)
	if lipgloss.HasDarkBackground() {
		st = st.Faint(true)
	}
	return st
}

// applyTerminalPreferences configures Lip Gloss from the environment before the
// program starts.
func applyTerminalPreferences() {
	if dark, ok := darkBackground(os.Getenv("KANBAN_TUI_THEME"), os.Getenv("COLORFGBG")); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
	lipgloss.SetColorProfile(resolveProfile(termenv.ColorProfile(), os.Getenv("NO_COLOR"), os.Getenv("TERM"), os.Getenv("COLORTERM")))
}

// resolveProfile upgrades the probed profile when TERM/COLORTERM claim more. Only
// NO_COLOR disables colors; CLICOLOR is for piped output, not a full-screen board.
func resolveProfile(probed termenv.Profile, noColor, term, colorterm string) termenv.Profile {
	if strings.TrimSpace(noColor) != "" {
		return termenv.Ascii
	}
	term = strings.ToLower(term)
	colorterm = strings.ToLower(colorterm)
	switch {
	case probed == termenv.Ascii:
		return probed
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		return termenv.TrueColor
	case strings.Contains(term, "256color") && probed == termenv.ANSI:
		return termenv.ANSI256
	}
	return probed
}

// darkBackground reads an explicit theme ("light", "dark") first, then the COLORFGBG
// heuristic ("fg;bg", background is the last field). ok is false when neither decides.
func darkBackground(theme, colorfgbg string) (dark, ok bool) {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if v := strings.TrimSpace(colorfgbg); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}
