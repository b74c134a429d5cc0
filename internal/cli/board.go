package cli

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kanban-cli/internal/tui"
)

func newBoardCmd(app *App) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "board <board-id>",
		Short: "Open a board interactively",
		Long: strings.TrimSpace(`
Open a board full-screen. Edits show up immediately and are saved in the
background; a rejected edit is undone and its message is shown at the bottom.

Logs would corrupt the screen, so they are discarded unless --log-file is set.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New()
			logger.SetLevel(app.logger.GetLevel())
			logger.SetFormatter(app.logger.Formatter)
			logger.SetOutput(io.Discard)
			if p := strings.TrimSpace(logFile); p != "" {
				f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				logger.SetOutput(f)
			}
			app.logger = logger

			gw, release, err := openGateway(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()

			err = tui.Run(cmd.Context(), gw, app.Owner, args[0], tui.Options{
				PersistTimeout: app.cfg.PersistTimeout,
				Logger:         logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file while the board is open")
	return cmd
}
