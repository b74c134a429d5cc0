package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func (s *Store) CreateList(ctx context.Context, req gateway.CreateListRequest) (model.List, error) {
	if err := req.Validate(); err != nil {
		return model.List{}, err
	}
	l := model.List{ID: req.ID, BoardID: req.BoardID, Title: req.Title, CreatedAt: s.now()}
	err := s.withTx(ctx, func(t tx) error {
		if err := t.queryRow(ctx, `SELECT COALESCE(MAX(ord), -1) + 1 FROM lists WHERE board_id = ?`, req.BoardID).Scan(&l.Order); err != nil {
			return err
		}
		_, err := t.exec(ctx, `INSERT INTO lists(id, board_id, title, ord, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			l.ID, l.BoardID, l.Title, l.Order, unixMs(l.CreatedAt))
		return err
	})
	if err != nil {
		return model.List{}, s.fail(gateway.OpCreateList, err, log.Fields{"board": req.BoardID, "list": req.ID})
	}
	return l, nil
}

func (s *Store) RenameList(ctx context.Context, req gateway.RenameListRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		_, err := t.exec(ctx, `UPDATE lists SET title = ? WHERE id = ? AND board_id = ?`, req.Title, req.ListID, req.BoardID)
		return err
	})
	return s.fail(gateway.OpRenameList, err, log.Fields{"board": req.BoardID, "list": req.ListID})
}

// ReorderLists sets each list's order to its position in OrderedIDs.
func (s *Store) ReorderLists(ctx context.Context, req gateway.ReorderListsRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		for i, id := range gateway.CleanIDs(req.OrderedIDs) {
			if _, err := t.exec(ctx, `UPDATE lists SET ord = ? WHERE id = ? AND board_id = ?`, i, id, req.BoardID); err != nil {
				return err
			}
		}
		return nil
	})
	return s.fail(gateway.OpReorderLists, err, log.Fields{"board": req.BoardID})
}

// DeleteList removes the list with its cards and closes the gap in list order.
func (s *Store) DeleteList(ctx context.Context, req gateway.DeleteListRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		var one int
		err := t.queryRow(ctx, `SELECT 1 FROM lists WHERE id = ? AND board_id = ?`, req.ListID, req.BoardID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.Fail(gateway.OpDeleteList, gateway.FailureMessage(gateway.OpDeleteList))
		}
		if err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM cards WHERE list_id = ?`, req.ListID); err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM lists WHERE id = ?`, req.ListID); err != nil {
			return err
		}
		rest, err := listsOf(ctx, t, req.BoardID)
		if err != nil {
			return err
		}
		for i, l := range rest {
			if l.Order == i {
				continue
			}
			if _, err := t.exec(ctx, `UPDATE lists SET ord = ? WHERE id = ?`, i, l.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return s.fail(gateway.OpDeleteList, err, log.Fields{"board": req.BoardID, "list": req.ListID})
}
