// Package board holds the normalized in-memory representation of one kanban board.
//
// A State is never modified after it has been handed out: every mutator returns a new
// State that shares the untouched list and card entries with its parent. Holding on to
// an old *State is therefore a complete snapshot of the board at that point.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"kanban-cli/internal/model"
	"kanban-cli/internal/order"
)

var ErrDuplicateID = errors.New("duplicate id")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type ListMeta struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	CardIDs []string `json:"cardIds"`
}

type CardMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type State struct {
	BoardID   string               `json:"boardId"`
	Lists     map[string]*ListMeta `json:"lists"`
	Cards     map[string]*CardMeta `json:"cards"`
	ListOrder []string             `json:"listOrder"`
}

func New(boardID string) *State {
	return &State{
		BoardID:   boardID,
		Lists:     map[string]*ListMeta{},
		Cards:     map[string]*CardMeta{},
		ListOrder: []string{},
	}
}

// FromLists normalizes a loaded board. Lists and cards are placed by their persisted
// order (ties broken by creation time, then id); the persisted values themselves are
// discarded since position is the order from here on.
func FromLists(boardID string, lists []model.List) *State {
	s := New(boardID)
	ls := append([]model.List{}, lists...)
	sort.SliceStable(ls, func(i, j int) bool {
		return lessByOrder(ls[i].Order, ls[j].Order, ls[i].CreatedAt.UnixNano(), ls[j].CreatedAt.UnixNano(), ls[i].ID, ls[j].ID)
	})
	for _, l := range ls {
		if _, dup := s.Lists[l.ID]; dup {
			continue
		}
		cards := append([]model.Card{}, l.Cards...)
		sort.SliceStable(cards, func(i, j int) bool {
			return lessByOrder(cards[i].Order, cards[j].Order, cards[i].CreatedAt.UnixNano(), cards[j].CreatedAt.UnixNano(), cards[i].ID, cards[j].ID)
		})
		lm := &ListMeta{ID: l.ID, Title: l.Title, CardIDs: make([]string, 0, len(cards))}
		for _, c := range cards {
			if _, dup := s.Cards[c.ID]; dup {
				continue
			}
			s.Cards[c.ID] = &CardMeta{ID: c.ID, Title: c.Title}
			lm.CardIDs = append(lm.CardIDs, c.ID)
		}
		s.Lists[l.ID] = lm
		s.ListOrder = append(s.ListOrder, l.ID)
	}
	return s
}

func lessByOrder(oa, ob int, ca, cb int64, ia, ib string) bool {
	if oa != ob {
		return oa < ob
	}
	if ca != cb {
		return ca < cb
	}
	return ia < ib
}

func (s *State) List(id string) (*ListMeta, bool) {
	l, ok := s.Lists[strings.TrimSpace(id)]
	return l, ok
}

func (s *State) Card(id string) (*CardMeta, bool) {
	c, ok := s.Cards[strings.TrimSpace(id)]
	return c, ok
}

// ListOf returns the list currently holding cardID and the card's index in it.
func (s *State) ListOf(cardID string) (string, int, bool) {
	for _, lid := range s.ListOrder {
		if i := order.IndexOf(s.Lists[lid].CardIDs, cardID); i >= 0 {
			return lid, i, true
		}
	}
	return "", -1, false
}

// ListIndex returns the position of listID in ListOrder.
func (s *State) ListIndex(listID string) int {
	return order.IndexOf(s.ListOrder, listID)
}

// ListOrders returns the dense order assignment of the board's lists.
func (s *State) ListOrders() []order.Assignment {
	return order.Enumerate(s.ListOrder)
}

// CardOrders returns the dense order assignment of the cards in listID.
func (s *State) CardOrders(listID string) []order.Assignment {
	l, ok := s.Lists[listID]
	if !ok {
		return nil
	}
	return order.Enumerate(l.CardIDs)
}

// Denormalize rebuilds the nested view with orders derived from position.
func (s *State) Denormalize() []model.List {
	out := make([]model.List, 0, len(s.ListOrder))
	for i, lid := range s.ListOrder {
		l := s.Lists[lid]
		ml := model.List{ID: l.ID, BoardID: s.BoardID, Title: l.Title, Order: i, Cards: make([]model.Card, 0, len(l.CardIDs))}
		for j, cid := range l.CardIDs {
			c := s.Cards[cid]
			ml.Cards = append(ml.Cards, model.Card{ID: c.ID, ListID: l.ID, BoardID: s.BoardID, Title: c.Title, Order: j})
		}
		out = append(out, ml)
	}
	return out
}

// Clone returns a deep copy that shares nothing with s.
func (s *State) Clone() *State {
	out := &State{
		BoardID:   s.BoardID,
		Lists:     make(map[string]*ListMeta, len(s.Lists)),
		Cards:     make(map[string]*CardMeta, len(s.Cards)),
		ListOrder: append([]string{}, s.ListOrder...),
	}
	for id, l := range s.Lists {
		out.Lists[id] = &ListMeta{ID: l.ID, Title: l.Title, CardIDs: append([]string{}, l.CardIDs...)}
	}
	for id, c := range s.Cards {
		cc := *c
		out.Cards[id] = &cc
	}
	return out
}

// Equal reports deep equality of two states.
func (s *State) Equal(o *State) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.BoardID != o.BoardID || !equalIDs(s.ListOrder, o.ListOrder) {
		return false
	}
	if len(s.Lists) != len(o.Lists) || len(s.Cards) != len(o.Cards) {
		return false
	}
	for id, l := range s.Lists {
		ol, ok := o.Lists[id]
		if !ok || l.ID != ol.ID || l.Title != ol.Title || !equalIDs(l.CardIDs, ol.CardIDs) {
			return false
		}
	}
	for id, c := range s.Cards {
		oc, ok := o.Cards[id]
		if !ok || *c != *oc {
			return false
		}
	}
	return true
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants: every referenced id resolves, every list
// appears once in ListOrder and every card belongs to exactly one list.
func (s *State) Validate() error {
	if len(s.ListOrder) != len(s.Lists) {
		return fmt.Errorf("listOrder has %d ids for %d lists", len(s.ListOrder), len(s.Lists))
	}
	seenList := map[string]bool{}
	owner := map[string]string{}
	for _, lid := range s.ListOrder {
		if seenList[lid] {
			return fmt.Errorf("list %s appears twice in listOrder", lid)
		}
		seenList[lid] = true
		l, ok := s.Lists[lid]
		if !ok {
			return NotFoundError{Kind: "list", ID: lid}
		}
		for _, cid := range l.CardIDs {
			if _, ok := s.Cards[cid]; !ok {
				return NotFoundError{Kind: "card", ID: cid}
			}
			if prev, dup := owner[cid]; dup {
				return fmt.Errorf("card %s is in both %s and %s", cid, prev, lid)
			}
			owner[cid] = lid
		}
	}
	for cid := range s.Cards {
		if _, ok := owner[cid]; !ok {
			return fmt.Errorf("card %s belongs to no list", cid)
		}
	}
	return nil
}
