package board

import (
	"strings"

	"kanban-cli/internal/order"
)

// derive copies the top-level maps and list order so that a mutator can replace entries
// without touching s. Entries themselves are shared until replaced.
func (s *State) derive() *State {
	out := &State{
		BoardID:   s.BoardID,
		Lists:     make(map[string]*ListMeta, len(s.Lists)+1),
		Cards:     make(map[string]*CardMeta, len(s.Cards)+1),
		ListOrder: s.ListOrder,
	}
	for id, l := range s.Lists {
		out.Lists[id] = l
	}
	for id, c := range s.Cards {
		out.Cards[id] = c
	}
	return out
}

func (s *State) idTaken(id string) bool {
	_, l := s.Lists[id]
	_, c := s.Cards[id]
	return l || c
}

// AddList appends a new empty list.
func (s *State) AddList(id, title string) (*State, error) {
	id = strings.TrimSpace(id)
	if id == "" || s.idTaken(id) {
		return nil, ErrDuplicateID
	}
	out := s.derive()
	out.Lists[id] = &ListMeta{ID: id, Title: title, CardIDs: []string{}}
	out.ListOrder = order.Insert(s.ListOrder, len(s.ListOrder), id)
	return out, nil
}

// AddCard appends a new card to the end of listID.
func (s *State) AddCard(listID, id, title string) (*State, error) {
	id = strings.TrimSpace(id)
	l, ok := s.Lists[listID]
	if !ok {
		return nil, NotFoundError{Kind: "list", ID: listID}
	}
	if id == "" || s.idTaken(id) {
		return nil, ErrDuplicateID
	}
	out := s.derive()
	out.Cards[id] = &CardMeta{ID: id, Title: title}
	out.Lists[listID] = &ListMeta{ID: l.ID, Title: l.Title, CardIDs: order.Insert(l.CardIDs, len(l.CardIDs), id)}
	return out, nil
}

func (s *State) RenameList(id, title string) (*State, error) {
	l, ok := s.Lists[id]
	if !ok {
		return nil, NotFoundError{Kind: "list", ID: id}
	}
	out := s.derive()
	out.Lists[id] = &ListMeta{ID: l.ID, Title: title, CardIDs: l.CardIDs}
	return out, nil
}

func (s *State) RenameCard(id, title string) (*State, error) {
	if _, ok := s.Cards[id]; !ok {
		return nil, NotFoundError{Kind: "card", ID: id}
	}
	out := s.derive()
	out.Cards[id] = &CardMeta{ID: id, Title: title}
	return out, nil
}

// MoveList reorders the board's lists (splice coordinates).
func (s *State) MoveList(from, to int) (*State, error) {
	next, err := order.Move(s.ListOrder, from, to)
	if err != nil {
		return nil, err
	}
	out := s.derive()
	out.ListOrder = next
	return out, nil
}

// MoveCard moves the card at index from of srcListID to index to of dstListID. For a
// move within one list, to is in the coordinates of the list after removal.
func (s *State) MoveCard(srcListID, dstListID string, from, to int) (*State, error) {
	src, ok := s.Lists[srcListID]
	if !ok {
		return nil, NotFoundError{Kind: "list", ID: srcListID}
	}
	dst, ok := s.Lists[dstListID]
	if !ok {
		return nil, NotFoundError{Kind: "list", ID: dstListID}
	}
	out := s.derive()
	if srcListID == dstListID {
		next, err := order.Move(src.CardIDs, from, to)
		if err != nil {
			return nil, err
		}
		out.Lists[srcListID] = &ListMeta{ID: src.ID, Title: src.Title, CardIDs: next}
		return out, nil
	}
	newSrc, newDst, _, err := order.Transfer(src.CardIDs, dst.CardIDs, from, to)
	if err != nil {
		return nil, err
	}
	out.Lists[srcListID] = &ListMeta{ID: src.ID, Title: src.Title, CardIDs: newSrc}
	out.Lists[dstListID] = &ListMeta{ID: dst.ID, Title: dst.Title, CardIDs: newDst}
	return out, nil
}

// RemoveList drops a list together with its cards.
func (s *State) RemoveList(id string) (*State, error) {
	l, ok := s.Lists[id]
	if !ok {
		return nil, NotFoundError{Kind: "list", ID: id}
	}
	out := s.derive()
	delete(out.Lists, id)
	for _, cid := range l.CardIDs {
		delete(out.Cards, cid)
	}
	out.ListOrder = order.Without(s.ListOrder, id)
	return out, nil
}

func (s *State) RemoveCard(id string) (*State, error) {
	lid, idx, ok := s.ListOf(id)
	if !ok {
		return nil, NotFoundError{Kind: "card", ID: id}
	}
	l := s.Lists[lid]
	out := s.derive()
	delete(out.Cards, id)
	out.Lists[lid] = &ListMeta{ID: l.ID, Title: l.Title, CardIDs: order.Remove(l.CardIDs, idx)}
	return out, nil
}
