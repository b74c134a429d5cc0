package sqlstore

import (
	"context"
	"fmt"
)

type migration struct {
	version string
	stmts   []string
}

// "ord" because ORDER is reserved in both dialects.
var migrations = []migration{
	{
		version: "0001_boards_lists_cards",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS boards (
				id TEXT PRIMARY KEY,
				owner TEXT NOT NULL,
				title TEXT NOT NULL,
				created_at_unixms BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_boards_owner ON boards(owner)`,
			`CREATE TABLE IF NOT EXISTS lists (
				id TEXT PRIMARY KEY,
				board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				ord INTEGER NOT NULL,
				created_at_unixms BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_lists_board ON lists(board_id, ord)`,
			`CREATE TABLE IF NOT EXISTS cards (
				id TEXT PRIMARY KEY,
				list_id TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
				board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				ord INTEGER NOT NULL,
				created_at_unixms BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, ord)`,
			`CREATE INDEX IF NOT EXISTS idx_cards_board ON cards(board_id)`,
		},
	},
}

// Migrate applies pending schema migrations. It is safe to call on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at_unixms BIGINT NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, m := range migrations {
		err := s.withTx(ctx, func(t tx) error {
			var n int
			if err := t.queryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.version).Scan(&n); err != nil {
				return fmt.Errorf("check migration %s: %w", m.version, err)
			}
			if n > 0 {
				return nil
			}
			for _, st := range m.stmts {
				if _, err := t.exec(ctx, st); err != nil {
					return fmt.Errorf("execute migration %s: %w", m.version, err)
				}
			}
			if _, err := t.exec(ctx, `INSERT INTO schema_migrations(version, applied_at_unixms) VALUES(?, ?)`, m.version, unixMs(s.now())); err != nil {
				return fmt.Errorf("record migration %s: %w", m.version, err)
			}
			s.logger.WithField("version", m.version).Info("migration applied")
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
