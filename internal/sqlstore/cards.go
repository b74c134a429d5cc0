package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

func (s *Store) CreateCard(ctx context.Context, req gateway.CreateCardRequest) (model.Card, error) {
	if err := req.Validate(); err != nil {
		return model.Card{}, err
	}
	c := model.Card{ID: req.ID, ListID: req.ListID, BoardID: req.BoardID, Title: req.Title, CreatedAt: s.now()}
	err := s.withTx(ctx, func(t tx) error {
		var one int
		err := t.queryRow(ctx, `SELECT 1 FROM lists WHERE id = ? AND board_id = ?`, req.ListID, req.BoardID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.Fail(gateway.OpCreateCard, gateway.FailureMessage(gateway.OpCreateCard))
		}
		if err != nil {
			return err
		}
		if err := t.queryRow(ctx, `SELECT COALESCE(MAX(ord), -1) + 1 FROM cards WHERE list_id = ?`, req.ListID).Scan(&c.Order); err != nil {
			return err
		}
		_, err = t.exec(ctx, `INSERT INTO cards(id, list_id, board_id, title, ord, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			c.ID, c.ListID, c.BoardID, c.Title, c.Order, unixMs(c.CreatedAt))
		return err
	})
	if err != nil {
		return model.Card{}, s.fail(gateway.OpCreateCard, err, log.Fields{"board": req.BoardID, "list": req.ListID, "card": req.ID})
	}
	return c, nil
}

func (s *Store) RenameCard(ctx context.Context, req gateway.RenameCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		_, err := t.exec(ctx, `UPDATE cards SET title = ? WHERE id = ? AND board_id = ?`, req.Title, req.CardID, req.BoardID)
		return err
	})
	return s.fail(gateway.OpRenameCard, err, log.Fields{"board": req.BoardID, "card": req.CardID})
}

// ReorderCard writes the post-move sequences of both lists in one transaction. Moving
// into another list also rewrites list_id for the destination cards.
func (s *Store) ReorderCard(ctx context.Context, req gateway.ReorderCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		if req.SameList() {
			for i, id := range gateway.CleanIDs(req.DestCardIDs) {
				if _, err := t.exec(ctx, `UPDATE cards SET ord = ? WHERE id = ? AND list_id = ? AND board_id = ?`, i, id, req.DestListID, req.BoardID); err != nil {
					return err
				}
			}
			return nil
		}
		for i, id := range gateway.CleanIDs(req.DestCardIDs) {
			if _, err := t.exec(ctx, `UPDATE cards SET ord = ?, list_id = ? WHERE id = ? AND board_id = ?`, i, req.DestListID, id, req.BoardID); err != nil {
				return err
			}
		}
		for i, id := range gateway.CleanIDs(req.SourceCardIDs) {
			if _, err := t.exec(ctx, `UPDATE cards SET ord = ? WHERE id = ? AND list_id = ? AND board_id = ?`, i, id, req.SourceListID, req.BoardID); err != nil {
				return err
			}
		}
		return nil
	})
	return s.fail(gateway.OpReorderCard, err, log.Fields{"board": req.BoardID, "from": req.SourceListID, "to": req.DestListID})
}

// DeleteCard removes the card and closes the gap in its list.
func (s *Store) DeleteCard(ctx context.Context, req gateway.DeleteCardRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(t tx) error {
		var listID string
		err := t.queryRow(ctx, `SELECT list_id FROM cards WHERE id = ? AND board_id = ?`, req.CardID, req.BoardID).Scan(&listID)
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.Fail(gateway.OpDeleteCard, gateway.FailureMessage(gateway.OpDeleteCard))
		}
		if err != nil {
			return err
		}
		if _, err := t.exec(ctx, `DELETE FROM cards WHERE id = ?`, req.CardID); err != nil {
			return err
		}
		rows, err := t.query(ctx, `SELECT id, ord FROM cards WHERE list_id = ? ORDER BY ord, created_at_unixms, id`, listID)
		if err != nil {
			return err
		}
		type rank struct {
			id  string
			ord int
		}
		var rest []rank
		for rows.Next() {
			var r rank
			if err := rows.Scan(&r.id, &r.ord); err != nil {
				rows.Close()
				return err
			}
			rest = append(rest, r)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i, r := range rest {
			if r.ord == i {
				continue
			}
			if _, err := t.exec(ctx, `UPDATE cards SET ord = ? WHERE id = ?`, i, r.id); err != nil {
				return err
			}
		}
		return nil
	})
	return s.fail(gateway.OpDeleteCard, err, log.Fields{"board": req.BoardID, "card": req.CardID})
}

var _ gateway.Gateway = (*Store)(nil)
