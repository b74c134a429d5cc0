package cli

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"kanban-cli/internal/dedupe"
	"kanban-cli/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var redisURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API over HTTP",
		Long: strings.TrimSpace(`
Serve the local database as the kanban HTTP API.

With --redis, mutating requests that carry an Idempotency-Key are executed at most
once; a repeated key gets the first response back. Without it every request runs.
`),
		Example: strings.TrimSpace(`
# Serve on the default address
kanban serve

# Postgres + Redis
kanban --driver postgres --db postgres://kanban@localhost/kanban serve --redis redis://localhost:6379/0
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			var store dedupe.Store = dedupe.Nop{}
			if u := strings.TrimSpace(redisURL); u != "" {
				client, err := dedupe.Open(ctx, u)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer client.Close()
				store = dedupe.NewRedis(client, app.cfg.DedupeTTL)
			} else {
				app.logger.Info("no redis configured; idempotency keys are ignored")
			}

			srv := server.New(st, server.Options{Owner: app.Owner, Dedupe: store, Logger: app.logger})
			if err := srv.ListenAndServe(ctx, listenAddr); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&redisURL, "redis", app.cfg.RedisURL, "Redis URL for idempotency keys (optional)")
	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			return writeOut(cmd, app, envelope{Data: map[string]any{"driver": st.Driver(), "migrated": true}})
		},
	}
}
