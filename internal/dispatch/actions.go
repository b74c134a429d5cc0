package dispatch

import (
	"context"
	"errors"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/order"
)

// A nil *Op with a nil error means the action changed nothing and nothing was sent.

func (d *Dispatcher) AddList(title string) (*Op, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	st := d.state
	id := d.newID()
	next, err := st.AddList(id, title)
	if err != nil {
		return nil, err
	}
	req := gateway.CreateListRequest{ID: id, BoardID: st.BoardID, Title: title}
	return d.begin(ActionCreateList, id, next, func(ctx context.Context) error {
		// The client id is canonical; the echoed record is not needed.
		_, err := d.gw.CreateList(ctx, req)
		return err
	}), nil
}

func (d *Dispatcher) AddCard(listID, title string) (*Op, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	st := d.state
	id := d.newID()
	next, err := st.AddCard(listID, id, title)
	if err != nil {
		return nil, err
	}
	req := gateway.CreateCardRequest{ID: id, ListID: listID, BoardID: st.BoardID, Title: title}
	return d.begin(ActionCreateCard, id, next, func(ctx context.Context) error {
		_, err := d.gw.CreateCard(ctx, req)
		return err
	}), nil
}

func (d *Dispatcher) RenameList(listID, title string) (*Op, error) {
	st := d.state
	l, ok := st.List(listID)
	if !ok {
		return nil, board.NotFoundError{Kind: "list", ID: listID}
	}
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if title == l.Title {
		return nil, nil
	}
	next, err := st.RenameList(l.ID, title)
	if err != nil {
		return nil, err
	}
	req := gateway.RenameListRequest{ListID: l.ID, BoardID: st.BoardID, Title: title}
	return d.begin(ActionRenameList, l.ID, next, func(ctx context.Context) error {
		return d.gw.RenameList(ctx, req)
	}), nil
}

func (d *Dispatcher) RenameCard(cardID, title string) (*Op, error) {
	st := d.state
	c, ok := st.Card(cardID)
	if !ok {
		return nil, board.NotFoundError{Kind: "card", ID: cardID}
	}
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if title == c.Title {
		return nil, nil
	}
	next, err := st.RenameCard(c.ID, title)
	if err != nil {
		return nil, err
	}
	req := gateway.RenameCardRequest{CardID: c.ID, BoardID: st.BoardID, Title: title}
	return d.begin(ActionRenameCard, c.ID, next, func(ctx context.Context) error {
		return d.gw.RenameCard(ctx, req)
	}), nil
}

// MoveList moves the list at index from to index to (splice coordinates) and persists
// the complete new list order.
func (d *Dispatcher) MoveList(from, to int) (*Op, error) {
	st := d.state
	if from < 0 || from >= len(st.ListOrder) {
		return nil, order.RangeError{Index: from, Len: len(st.ListOrder)}
	}
	to = clamp(to, len(st.ListOrder)-1)
	if order.IsNoop(true, from, to) {
		return nil, nil
	}
	moved := st.ListOrder[from]
	next, err := st.MoveList(from, to)
	if err != nil {
		return nil, err
	}
	req := gateway.ReorderListsRequest{BoardID: st.BoardID, OrderedIDs: append([]string{}, next.ListOrder...)}
	return d.begin(ActionReorderLists, moved, next, func(ctx context.Context) error {
		return d.gw.ReorderLists(ctx, req)
	}), nil
}

// MoveCard moves the card at index from of srcListID to index to of dstListID. Both
// lists are re-enumerated from 0 on the server.
func (d *Dispatcher) MoveCard(srcListID, dstListID string, from, to int) (*Op, error) {
	st := d.state
	src, ok := st.List(srcListID)
	if !ok {
		return nil, board.NotFoundError{Kind: "list", ID: srcListID}
	}
	dst, ok := st.List(dstListID)
	if !ok {
		return nil, board.NotFoundError{Kind: "list", ID: dstListID}
	}
	if from < 0 || from >= len(src.CardIDs) {
		return nil, order.RangeError{Index: from, Len: len(src.CardIDs)}
	}
	same := src.ID == dst.ID
	if same {
		to = clamp(to, len(src.CardIDs)-1)
	} else {
		to = clamp(to, len(dst.CardIDs))
	}
	if order.IsNoop(same, from, to) {
		return nil, nil
	}
	moved := src.CardIDs[from]
	next, err := st.MoveCard(src.ID, dst.ID, from, to)
	if err != nil {
		return nil, err
	}
	req := gateway.ReorderCardRequest{
		BoardID:       st.BoardID,
		SourceListID:  src.ID,
		DestListID:    dst.ID,
		SourceCardIDs: append([]string{}, next.Lists[src.ID].CardIDs...),
		DestCardIDs:   append([]string{}, next.Lists[dst.ID].CardIDs...),
	}
	return d.begin(ActionReorderCards, moved, next, func(ctx context.Context) error {
		return d.gw.ReorderCard(ctx, req)
	}), nil
}

func (d *Dispatcher) DeleteList(listID string) (*Op, error) {
	st := d.state
	next, err := st.RemoveList(listID)
	if err != nil {
		return nil, err
	}
	req := gateway.DeleteListRequest{ListID: listID, BoardID: st.BoardID}
	return d.begin(ActionDeleteList, listID, next, func(ctx context.Context) error {
		return d.gw.DeleteList(ctx, req)
	}), nil
}

func (d *Dispatcher) DeleteCard(cardID string) (*Op, error) {
	st := d.state
	next, err := st.RemoveCard(cardID)
	if err != nil {
		return nil, err
	}
	req := gateway.DeleteCardRequest{CardID: cardID, BoardID: st.BoardID}
	return d.begin(ActionDeleteCard, cardID, next, func(ctx context.Context) error {
		return d.gw.DeleteCard(ctx, req)
	}), nil
}

func clamp(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// Kind distinguishes the two draggable types.
type Kind string

const (
	KindColumn Kind = "COLUMN"
	KindCard   Kind = "CARD"
)

// Location is a position inside a droppable container. For columns ContainerID is
// the board id; for cards it is the list id.
type Location struct {
	ContainerID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// Drop is the result of a drag gesture. Destination is nil when the item was dropped
// outside any container.
type Drop struct {
	Kind        Kind      `json:"type"`
	DraggableID string    `json:"draggableId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination,omitempty"`
}

var ErrStaleDrop = errors.New("dragged item is no longer at its source position")

// DragEnd translates a drop into a list or card move.
func (d *Dispatcher) DragEnd(drop Drop) (*Op, error) {
	if drop.Destination == nil {
		return nil, nil
	}
	dst := *drop.Destination
	if order.IsNoop(drop.Source.ContainerID == dst.ContainerID, drop.Source.Index, dst.Index) {
		return nil, nil
	}
	st := d.state
	switch drop.Kind {
	case KindColumn:
		if drop.DraggableID != "" && st.ListIndex(drop.DraggableID) != drop.Source.Index {
			return nil, ErrStaleDrop
		}
		return d.MoveList(drop.Source.Index, dst.Index)
	case KindCard:
		if drop.DraggableID != "" {
			lid, idx, ok := st.ListOf(drop.DraggableID)
			if !ok || lid != drop.Source.ContainerID || idx != drop.Source.Index {
				return nil, ErrStaleDrop
			}
		}
		return d.MoveCard(drop.Source.ContainerID, dst.ContainerID, drop.Source.Index, dst.Index)
	default:
		return nil, errors.New("unknown drop type: " + string(drop.Kind))
	}
}
