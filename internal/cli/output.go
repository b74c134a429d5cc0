package cli

import (
	"fmt"
	"io"

	"kanban-cli/internal/format"
	"kanban-cli/internal/model"
)

// envelope is the {"data": ...} wrapper every command prints.
type envelope struct {
	Data any `json:"data"`
}

func (e envelope) WriteText(w io.Writer) error {
	if t, ok := e.Data.(format.Texter); ok {
		return t.WriteText(w)
	}
	return format.WriteJSON(w, e.Data, true)
}

type boardOutput struct {
	Board model.Board  `json:"board"`
	Lists []model.List `json:"lists"`
	// Changed is the id the mutation targeted; for creations, the new id.
	Changed string `json:"changed,omitempty"`
	Noop    bool   `json:"noop,omitempty"`
}

func (b boardOutput) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s  (%s)\n", b.Board.Title, b.Board.ID); err != nil {
		return err
	}
	for _, l := range b.Lists {
		if _, err := fmt.Fprintf(w, "\n[%d] %s  (%s)\n", l.Order, l.Title, l.ID); err != nil {
			return err
		}
		if len(l.Cards) == 0 {
			if _, err := fmt.Fprintln(w, "    (empty)"); err != nil {
				return err
			}
		}
		for _, c := range l.Cards {
			if _, err := fmt.Fprintf(w, "    %d. %s  (%s)\n", c.Order, c.Title, c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

type boardsOutput []model.Board

func (bs boardsOutput) WriteText(w io.Writer) error {
	for _, b := range bs {
		if _, err := fmt.Fprintf(w, "%s  %s\n", b.ID, b.Title); err != nil {
			return err
		}
	}
	return nil
}
