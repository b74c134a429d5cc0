package cli

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"kanban-cli/internal/dispatch"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Card commands",
	}
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsRenameCmd(app))
	cmd.AddCommand(newCardsMoveCmd(app))
	cmd.AddCommand(newCardsDeleteCmd(app))
	return cmd
}

func newCardsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <board-id> <list-id> <title>",
		Short: "Append a card to a list",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, title := args[1], strings.Join(args[2:], " ")
			return mutate(cmd, app, args[0], "add-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.AddCard(listID, title)
			})
		},
	}
}

func newCardsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <card-id> <title>",
		Short: "Rename a card",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, title := args[1], strings.Join(args[2:], " ")
			return mutate(cmd, app, args[0], "rename-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.RenameCard(cardID, title)
			})
		},
	}
}

func newCardsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <board-id> <src-list-id> <dst-list-id> <from> <to>",
		Short: "Move the card at <from> in the source list to <to> in the destination list",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex("from", args[3])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex("to", args[4])
			if err != nil {
				return writeErr(cmd, err)
			}
			src, dst := args[1], args[2]
			return mutate(cmd, app, args[0], "move-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.MoveCard(src, dst, from, to)
			})
		},
	}
}

func newCardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id> <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID := args[1]
			return mutate(cmd, app, args[0], "delete-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.DeleteCard(cardID)
			})
		},
	}
}

func newDropCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <board-id> <drop-json>",
		Short: "Apply a drag-and-drop result",
		Long: strings.TrimSpace(`
Apply the result of a drag gesture, as produced by a drag-and-drop front end:

  {"type":"CARD","draggableId":"<card-id>",
   "source":{"droppableId":"<list-id>","index":0},
   "destination":{"droppableId":"<list-id>","index":2}}

type is COLUMN for lists (droppableId is then the board id). A missing destination
or an unchanged position does nothing.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var drop dispatch.Drop
			if err := sonic.ConfigStd.UnmarshalFromString(args[1], &drop); err != nil {
				return writeErr(cmd, badArgError{name: "drop", value: args[1]})
			}
			return mutate(cmd, app, args[0], "drag-end", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.DragEnd(drop)
			})
		},
	}
}
