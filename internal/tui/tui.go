// Package tui is the interactive board: columns of cards driven from the keyboard,
// with every edit applied immediately and saved in the background.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
)

// Run loads boardID and runs the board until the user quits.
func Run(ctx context.Context, gw gateway.Gateway, owner, boardID string, opts Options) error {
	b, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: owner, BoardID: boardID})
	if err != nil {
		return err
	}
	st := board.FromLists(b.ID, lists)
	if err := st.Validate(); err != nil {
		return err
	}

	applyTerminalPreferences()

	m := New(b, st, gw, opts)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
