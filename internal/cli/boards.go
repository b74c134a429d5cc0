package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Board commands",
	}
	cmd.AddCommand(newBoardsListCmd(app))
	cmd.AddCommand(newBoardsCreateCmd(app))
	cmd.AddCommand(newBoardsRenameCmd(app))
	cmd.AddCommand(newBoardsDeleteCmd(app))
	return cmd
}

func newBoardsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			boards, err := gw.ListBoards(cmd.Context(), gateway.ListBoardsRequest{Owner: app.Owner})
			if err != nil {
				return writeErr(cmd, err)
			}
			if boards == nil {
				boards = []model.Board{}
			}
			return writeOut(cmd, app, envelope{Data: boardsOutput(boards)})
		},
	}
}

func newBoardsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			b, err := gw.CreateBoard(cmd.Context(), gateway.CreateBoardRequest{
				Owner: app.Owner,
				Title: strings.TrimSpace(strings.Join(args, " ")),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: b})
		},
	}
}

func newBoardsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <board-id> <title>",
		Short: "Rename a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			req := gateway.RenameBoardRequest{
				Owner:   app.Owner,
				BoardID: args[0],
				Title:   strings.TrimSpace(strings.Join(args[1:], " ")),
			}
			if err := gw.RenameBoard(cmd.Context(), req); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": req.BoardID, "title": req.Title}})
		},
	}
}

func newBoardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board with its lists and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			if err := gw.DeleteBoard(cmd.Context(), gateway.DeleteBoardRequest{Owner: app.Owner, BoardID: args[0]}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": args[0], "deleted": true}})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var normalized bool

	cmd := &cobra.Command{
		Use:   "show <board-id>",
		Short: "Print a board with its lists and cards in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			b, lists, err := gw.LoadBoard(cmd.Context(), gateway.LoadBoardRequest{Owner: app.Owner, BoardID: args[0]})
			if err != nil {
				return writeErr(cmd, err)
			}
			st := board.FromLists(b.ID, lists)
			if normalized {
				return writeOut(cmd, app, envelope{Data: st})
			}
			return writeOut(cmd, app, envelope{Data: boardOutput{Board: b, Lists: st.Denormalize()}})
		},
	}

	cmd.Flags().BoolVar(&normalized, "normalized", false, "Print the normalized store (lists, cards, listOrder) instead of nested lists")
	return cmd
}
