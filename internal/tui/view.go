package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kanban-cli/internal/board"
	"kanban-cli/internal/dispatch"
)

const (
	columnGap    = 2
	minColumnW   = 16
	dropMarkText = "── drop here ──"
)

func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}
	body := m.renderColumns(m.disp.State(), bodyH)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.info.Title)
	status := dispatch.StatusText(m.disp.Status())
	if n := m.disp.Pending(); n > 1 {
		status = fmt.Sprintf("%s (%d)", status, n)
	}
	status = styleMuted().Render(status)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return fitLine(title+strings.Repeat(" ", gap)+status, m.width) + "\n"
}

// visibleColumns returns the half-open range of columns that fit, keeping the
// cursor's column in view.
func (m Model) visibleColumns(n, colW int) (int, int) {
	fit := (m.width + columnGap) / (colW + columnGap)
	if fit < 1 {
		fit = 1
	}
	if fit >= n {
		return 0, n
	}
	first := m.sel.Col - fit + 1
	if first < 0 {
		first = 0
	}
	return first, first + fit
}

func (m Model) renderColumns(st *board.State, height int) string {
	n := len(st.ListOrder)
	if n == 0 {
		return fitPane(styleMuted().Render("No lists yet. Press A to add one."), m.width, height)
	}
	colW := (m.width - columnGap*(n-1)) / n
	if colW < minColumnW {
		colW = minColumnW
	}
	first, last := m.visibleColumns(n, colW)

	cols := make([]string, 0, 2*(last-first))
	for i := first; i < last; i++ {
		if i > first {
			cols = append(cols, fitPane("", columnGap, height))
		}
		cols = append(cols, m.renderColumn(st, i, colW, height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(st *board.State, col, width, height int) string {
	l := st.Lists[st.ListOrder[col]]
	selectedCol := col == m.sel.Col
	grabbingList := m.grabbed != nil && m.grabbed.Kind == dispatch.KindColumn
	grabbingCard := m.grabbed != nil && m.grabbed.Kind == dispatch.KindCard

	headerStyle := lipgloss.NewStyle().Bold(true).Width(width).Foreground(colors.HeaderFg).Background(colors.HeaderBg)
	switch {
	case grabbingList && m.grabbed.DraggableID == l.ID:
		headerStyle = headerStyle.Foreground(colors.AccentFg).Background(colors.Accent)
	case selectedCol:
		headerStyle = headerStyle.Foreground(colors.SelectedFg).Background(colors.SelectedBg)
	}
	label := fmt.Sprintf(" %s (%d)", l.Title, len(l.CardIDs))
	if grabbingList && m.grabbed.DraggableID == l.ID {
		label = " ▸" + label
	}
	lines := []string{headerStyle.Render(truncate(label, width)), ""}

	cardStyle := lipgloss.NewStyle().Width(width).Padding(0, 1)
	selectedStyle := cardStyle.Foreground(colors.SelectedFg).Background(colors.SelectedBg).Bold(true)
	grabbedStyle := cardStyle.Foreground(colors.AccentFg).Background(colors.Accent)
	marker := styleMuted().Render(truncate(" "+dropMarkText, width))
	inner := width - 2

	showMarker := grabbingCard && selectedCol
	for j, cid := range l.CardIDs {
		if showMarker && j == m.sel.Card && cid != m.grabbed.DraggableID {
			lines = append(lines, marker)
		}
		c := st.Cards[cid]
		text := truncate(c.Title, inner)
		switch {
		case grabbingCard && cid == m.grabbed.DraggableID:
			lines = append(lines, grabbedStyle.Render(truncate("▸ "+c.Title, inner)))
		case selectedCol && j == m.sel.Card && !grabbingCard:
			lines = append(lines, selectedStyle.Render(text))
		default:
			lines = append(lines, cardStyle.Render(text))
		}
	}
	if showMarker && m.sel.Card >= len(l.CardIDs) {
		lines = append(lines, marker)
	}
	if len(l.CardIDs) == 0 && !showMarker {
		lines = append(lines, styleMuted().Render(truncate(" (empty)", width)))
	}
	return fitPane(strings.Join(lines, "\n"), width, height)
}

func (m Model) renderFooter() string {
	var lines []string
	errStyle := lipgloss.NewStyle().Foreground(colors.Error)
	for _, n := range m.notices.lines {
		lines = append(lines, fitLine(errStyle.Render("! "+n), m.width))
	}
	if m.flash != "" {
		lines = append(lines, fitLine(styleMuted().Render(m.flash), m.width))
	}
	switch {
	case m.purpose != inputNone:
		lines = append(lines, renderInputLine(m.width, inputLabel(m.purpose), m.input.View()))
	case m.grabbed != nil:
		lines = append(lines, fitLine(styleMuted().Render("Move with arrows, drop with the same key, esc to cancel."), m.width))
	default:
		lines = append(lines, fitLine(m.help.ShortHelpView(m.keys.helpLine()), m.width))
	}
	return strings.Join(lines, "\n")
}

func inputLabel(p inputPurpose) string {
	switch p {
	case inputAddCard:
		return "New card"
	case inputAddList:
		return "New list"
	case inputRenameCard:
		return "Rename card"
	case inputRenameList:
		return "Rename list"
	default:
		return ""
	}
}
