package cli

import (
	"github.com/spf13/cobra"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/publish"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish <board-id>",
		Short: "Write a board as Markdown",
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
			res, err := publish.WriteBoard(b, board.FromLists(b.ID, lists).Denormalize(), to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
