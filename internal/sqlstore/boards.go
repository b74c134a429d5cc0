package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

var errBoardNotFound = errors.New("board not found")

// fail turns a storage error into the operation's Failure. The cause is logged, not
// returned. Failures and context errors pass through unchanged.
func (s *Store) fail(op gateway.Op, err error, fields log.Fields) error {
	if err == nil {
		return nil
	}
	if gateway.IsFailure(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, errBoardNotFound) {
		return gateway.Fail(op, "Board not found.")
	}
	s.logger.WithFields(fields).WithField("op", op).WithError(err).Error("storage operation failed")
	return gateway.Fail(op, gateway.FailureMessage(op))
}

func (s *Store) CreateBoard(ctx context.Context, req gateway.CreateBoardRequest) (model.Board, error) {
	if err := req.Validate(); err != nil {
		return model.Board{}, err
	}
	b := model.Board{ID: uuid.NewString(), Owner: req.Owner, Title: strings.TrimSpace(req.Title), CreatedAt: s.now()}
	err := s.withTx(ctx, func(t tx) error {
		_, err := t.exec(ctx, `INSERT INTO boards(id, owner, title, created_at_unixms) VALUES(?, ?, ?, ?)`,
			b.ID, b.Owner, b.Title, unixMs(b.CreatedAt))
		return err
	})
	if err != nil {
		return model.Board{}, s.fail(gateway.OpCreateBoard, err, log.Fields{"owner": req.Owner})
	}
	return b, nil
}

// ownedBoard loads boardID if it belongs to owner.
func ownedBoard(ctx context.Context, t tx, owner, boardID string) (model.Board, error) {
	var b model.Board
	var created int64
	err := t.queryRow(ctx, `SELECT id, owner, title, created_at_unixms FROM boards WHERE id = ? AND owner = ?`, boardID, owner).
		Scan(&b.ID, &b.Owner, &b.Title, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, errBoardNotFound
	}
	if err != nil {
		return model.Board{}, err
	}
	b.CreatedAt = fromUnixMs(created)
	return b, nil
}

func (s *Store) RenameBoard(ctx context.Context, req gateway.RenameBoardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		if _, err := ownedBoard(ctx, t, req.Owner, req.BoardID); err != nil {
			return err
		}
		_, err := t.exec(ctx, `UPDATE boards SET title = ? WHERE id = ?`, strings.TrimSpace(req.Title), req.BoardID)
		return err
	})
	return s.fail(gateway.OpRenameBoard, err, log.Fields{"board": req.BoardID})
}

func (s *Store) DeleteBoard(ctx context.Context, req gateway.DeleteBoardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		if _, err := ownedBoard(ctx, t, req.Owner, req.BoardID); err != nil {
			return err
		}
		// Explicit child deletes keep this independent of ON DELETE CASCADE support.
		if _, err := t.exec(ctx, `DELETE FROM cards WHERE board_id = ?`, req.BoardID); err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM lists WHERE board_id = ?`, req.BoardID); err != nil {
			return err
		}
		_, err := t.exec(ctx, `DELETE FROM boards WHERE id = ?`, req.BoardID)
		return err
	})
	return s.fail(gateway.OpDeleteBoard, err, log.Fields{"board": req.BoardID})
}

func (s *Store) ListBoards(ctx context.Context, req gateway.ListBoardsRequest) ([]model.Board, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := []model.Board{}
	err := s.withTx(ctx, func(t tx) error {
		rows, err := t.query(ctx, `SELECT id, owner, title, created_at_unixms FROM boards WHERE owner = ? ORDER BY created_at_unixms, id`, req.Owner)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var b model.Board
			var created int64
			if err := rows.Scan(&b.ID, &b.Owner, &b.Title, &created); err != nil {
				return err
			}
			b.CreatedAt = fromUnixMs(created)
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, s.fail(gateway.OpListBoards, err, log.Fields{"owner": req.Owner})
	}
	return out, nil
}

// LoadBoard returns the board and its lists, each with its cards, sorted by order.
func (s *Store) LoadBoard(ctx context.Context, req gateway.LoadBoardRequest) (model.Board, []model.List, error) {
	if err := req.Validate(); err != nil {
		return model.Board{}, nil, err
	}
	var b model.Board
	lists := []model.List{}
	err := s.withTx(ctx, func(t tx) error {
		var err error
		if b, err = ownedBoard(ctx, t, req.Owner, req.BoardID); err != nil {
			return err
		}
		if lists, err = listsOf(ctx, t, b.ID); err != nil {
			return err
		}
		cards, err := cardsOf(ctx, t, b.ID)
		if err != nil {
			return err
		}
		idx := make(map[string]int, len(lists))
		for i := range lists {
			idx[lists[i].ID] = i
			lists[i].Cards = []model.Card{}
		}
		for _, c := range cards {
			if i, ok := idx[c.ListID]; ok {
				lists[i].Cards = append(lists[i].Cards, c)
			}
		}
		return nil
	})
	if err != nil {
		return model.Board{}, nil, s.fail(gateway.OpLoadBoard, err, log.Fields{"board": req.BoardID})
	}
	return b, lists, nil
}

func listsOf(ctx context.Context, t tx, boardID string) ([]model.List, error) {
	rows, err := t.query(ctx, `SELECT id, board_id, title, ord, created_at_unixms FROM lists WHERE board_id = ? ORDER BY ord, created_at_unixms, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.List{}
	for rows.Next() {
		var l model.List
		var created int64
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Order, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = fromUnixMs(created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// cardsOf returns every card of the board ordered by list then order.
func cardsOf(ctx context.Context, t tx, boardID string) ([]model.Card, error) {
	rows, err := t.query(ctx, `SELECT id, list_id, board_id, title, ord, created_at_unixms FROM cards WHERE board_id = ? ORDER BY list_id, ord, created_at_unixms, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Card{}
	for rows.Next() {
		var c model.Card
		var created int64
		if err := rows.Scan(&c.ID, &c.ListID, &c.BoardID, &c.Title, &c.Order, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = fromUnixMs(created)
		out = append(out, c)
	}
	return out, rows.Err()
}
