package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"kanban-cli/internal/dispatch"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List (column) commands",
	}
	cmd.AddCommand(newListsAddCmd(app))
	cmd.AddCommand(newListsRenameCmd(app))
	cmd.AddCommand(newListsMoveCmd(app))
	cmd.AddCommand(newListsDeleteCmd(app))
	return cmd
}

func newListsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <board-id> <title>",
		Short: "Append a list to a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return mutate(cmd, app, args[0], "add-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.AddList(title)
			})
		},
	}
}

func newListsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <list-id> <title>",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, title := args[1], strings.Join(args[2:], " ")
			return mutate(cmd, app, args[0], "rename-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.RenameList(listID, title)
			})
		},
	}
}

func newListsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <board-id> <from> <to>",
		Short: "Move the list at position <from> to position <to>",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex("from", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex("to", args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return mutate(cmd, app, args[0], "move-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.MoveList(from, to)
			})
		},
	}
}

func newListsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id> <list-id>",
		Short: "Delete a list and its cards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID := args[1]
			return mutate(cmd, app, args[0], "delete-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
				return d.DeleteList(listID)
			})
		},
	}
}
