package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kanban-cli/internal/config"
	"kanban-cli/internal/format"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/httpgw"
	"kanban-cli/internal/session"
	"kanban-cli/internal/sqlstore"
)

type App struct {
	Server     string
	DB         string
	Driver     string
	Owner      string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg    config.Config
	logger *log.Logger
}

func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	app := &App{cfg: cfg, logger: log.New()}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Kanban boards with optimistic local edits",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create a board and open it interactively
  kanban boards create "Roadmap"
  kanban board <board-id>

  # Scriptable edits (each waits for the store to confirm)
  kanban lists add <board-id> "Todo"
  kanban cards add <board-id> <list-id> "Write release notes"
  kanban cards move <board-id> <list-id> <list-id> 0 2

  # Serve boards over HTTP, then point the CLI at it
  kanban serve
  kanban --server http://localhost:8787 boards list
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.setupLogger(cmd); err != nil {
			return writeErr(cmd, err)
		}
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|edn|text)", app.Format))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", cfg.Server, "Kanban API base URL (default: use the local database)")
	cmd.PersistentFlags().StringVar(&app.DB, "db", cfg.Database, "Database location (SQLite path or Postgres URL)")
	cmd.PersistentFlags().StringVar(&app.Driver, "driver", cfg.Driver, "Database driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&app.Owner, "owner", cfg.Owner, "Owner whose boards are used")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", cfg.Pretty, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", cfg.Format, "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newDropCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func (app *App) setupLogger(cmd *cobra.Command) error {
	level, err := log.ParseLevel(app.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", app.LogLevel)
	}
	app.logger.SetOutput(cmd.ErrOrStderr())
	app.logger.SetLevel(level)
	app.logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	return nil
}

// openStore opens the local database and brings its schema up to date.
func openStore(ctx context.Context, app *App) (*sqlstore.Store, error) {
	st, err := sqlstore.Open(ctx, app.Driver, app.DB, sqlstore.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// openGateway picks the remote API when --server is set and the local database otherwise.
// The returned func releases whatever was opened.
func openGateway(ctx context.Context, app *App) (gateway.Gateway, func(), error) {
	if strings.TrimSpace(app.Server) != "" {
		c, err := httpgw.New(app.Server, httpgw.Options{
			Owner:   app.Owner,
			Logger:  app.logger,
			Retries: app.cfg.ClientRetries,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
	st, err := openStore(ctx, app)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

func openSession(ctx context.Context, app *App, gw gateway.Gateway, boardID string) (*session.Session, error) {
	return session.Open(ctx, gw, app.Owner, boardID, session.Options{
		PersistTimeout: app.cfg.PersistTimeout,
		Logger:         app.logger,
	})
}

// closeTimeout bounds how long a command waits for outstanding gateway calls on exit.
func (app *App) closeTimeout() time.Duration {
	if app.cfg.PersistTimeout > 0 {
		return app.cfg.PersistTimeout + time.Second
	}
	return 30 * time.Second
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
