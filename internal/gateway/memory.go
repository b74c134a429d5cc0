package gateway

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kanban-cli/internal/model"
)

// Call records one operation received by Memory.
type Call struct {
	Op      Op
	Request any
}

// Memory is an in-process Gateway with the same server semantics as the SQL store.
// It also lets tests inject failures and hold calls in flight.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	boards map[string]model.Board
	lists  map[string]model.List
	cards  map[string]model.Card

	calls    []Call
	failures map[Op][]error
	holds    map[Op]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		now:      func() time.Time { return time.Now().UTC() },
		boards:   map[string]model.Board{},
		lists:    map[string]model.List{},
		cards:    map[string]model.Card{},
		failures: map[Op][]error{},
		holds:    map[Op]chan struct{}{},
	}
}

// FailNext makes the next call of op return a Failure carrying msg.
func (m *Memory) FailNext(op Op, msg string) {
	m.ErrNext(op, Fail(op, msg))
}

// ErrNext makes the next call of op return err without touching any data.
func (m *Memory) ErrNext(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// Hold blocks every call of op until the returned release func is called (or the
// call's context ends).
func (m *Memory) Hold(op Op) (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.holds[op] = ch
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.holds[op] == ch {
				delete(m.holds, op)
			}
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call{}, m.calls...)
}

func (m *Memory) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// begin records the call, waits on a hold and returns an injected error if any. On
// success the lock is held and the caller must call m.mu.Unlock.
func (m *Memory) begin(ctx context.Context, op Op, req any) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, Request: req})
	hold := m.holds[op]
	m.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if q := m.failures[op]; len(q) > 0 {
		err := q[0]
		m.failures[op] = q[1:]
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) CreateBoard(ctx context.Context, req CreateBoardRequest) (model.Board, error) {
	if err := m.begin(ctx, OpCreateBoard, req); err != nil {
		return model.Board{}, err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return model.Board{}, err
	}
	b := model.Board{ID: uuid.NewString(), Owner: req.Owner, Title: strings.TrimSpace(req.Title), CreatedAt: m.now()}
	m.boards[b.ID] = b
	return b, nil
}

func (m *Memory) ownedBoard(owner, boardID string) (model.Board, bool) {
	b, ok := m.boards[boardID]
	if !ok || b.Owner != owner {
		return model.Board{}, false
	}
	return b, true
}

func (m *Memory) RenameBoard(ctx context.Context, req RenameBoardRequest) error {
	if err := m.begin(ctx, OpRenameBoard, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	b, ok := m.ownedBoard(req.Owner, req.BoardID)
	if !ok {
		return Fail(OpRenameBoard, "Board not found.")
	}
	b.Title = strings.TrimSpace(req.Title)
	m.boards[b.ID] = b
	return nil
}

func (m *Memory) DeleteBoard(ctx context.Context, req DeleteBoardRequest) error {
	if err := m.begin(ctx, OpDeleteBoard, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	if _, ok := m.ownedBoard(req.Owner, req.BoardID); !ok {
		return Fail(OpDeleteBoard, "Board not found.")
	}
	delete(m.boards, req.BoardID)
	for id, l := range m.lists {
		if l.BoardID == req.BoardID {
			delete(m.lists, id)
		}
	}
	for id, c := range m.cards {
		if c.BoardID == req.BoardID {
			delete(m.cards, id)
		}
	}
	return nil
}

func (m *Memory) ListBoards(ctx context.Context, req ListBoardsRequest) ([]model.Board, error) {
	if err := m.begin(ctx, OpListBoards, req); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := []model.Board{}
	for _, b := range m.boards {
		if b.Owner == req.Owner {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) LoadBoard(ctx context.Context, req LoadBoardRequest) (model.Board, []model.List, error) {
	if err := m.begin(ctx, OpLoadBoard, req); err != nil {
		return model.Board{}, nil, err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return model.Board{}, nil, err
	}
	b, ok := m.ownedBoard(req.Owner, req.BoardID)
	if !ok {
		return model.Board{}, nil, Fail(OpLoadBoard, "Board not found.")
	}
	lists := m.listsOf(b.ID)
	for i := range lists {
		lists[i].Cards = m.cardsOf(lists[i].ID)
	}
	return b, lists, nil
}

func (m *Memory) listsOf(boardID string) []model.List {
	out := []model.List{}
	for _, l := range m.lists {
		if l.BoardID == boardID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) cardsOf(listID string) []model.Card {
	out := []model.Card{}
	for _, c := range m.cards {
		if c.ListID == listID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) idTaken(id string) bool {
	_, b := m.boards[id]
	_, l := m.lists[id]
	_, c := m.cards[id]
	return b || l || c
}

func (m *Memory) CreateList(ctx context.Context, req CreateListRequest) (model.List, error) {
	if err := m.begin(ctx, OpCreateList, req); err != nil {
		return model.List{}, err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return model.List{}, err
	}
	if _, ok := m.boards[req.BoardID]; !ok || m.idTaken(req.ID) {
		return model.List{}, Fail(OpCreateList, FailureMessage(OpCreateList))
	}
	next := 0
	for _, l := range m.listsOf(req.BoardID) {
		if l.Order+1 > next {
			next = l.Order + 1
		}
	}
	l := model.List{ID: req.ID, BoardID: req.BoardID, Title: req.Title, Order: next, CreatedAt: m.now()}
	m.lists[l.ID] = l
	return l, nil
}

func (m *Memory) RenameList(ctx context.Context, req RenameListRequest) error {
	if err := m.begin(ctx, OpRenameList, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	if l, ok := m.lists[req.ListID]; ok {
		l.Title = req.Title
		m.lists[l.ID] = l
	}
	return nil
}

func (m *Memory) ReorderLists(ctx context.Context, req ReorderListsRequest) error {
	if err := m.begin(ctx, OpReorderLists, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	for i, id := range CleanIDs(req.OrderedIDs) {
		if l, ok := m.lists[id]; ok && l.BoardID == req.BoardID {
			l.Order = i
			m.lists[id] = l
		}
	}
	return nil
}

func (m *Memory) DeleteList(ctx context.Context, req DeleteListRequest) error {
	if err := m.begin(ctx, OpDeleteList, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	l, ok := m.lists[req.ListID]
	if !ok || l.BoardID != req.BoardID {
		return Fail(OpDeleteList, FailureMessage(OpDeleteList))
	}
	delete(m.lists, l.ID)
	for id, c := range m.cards {
		if c.ListID == l.ID {
			delete(m.cards, id)
		}
	}
	for i, x := range m.listsOf(l.BoardID) {
		x.Order = i
		m.lists[x.ID] = x
	}
	return nil
}

func (m *Memory) CreateCard(ctx context.Context, req CreateCardRequest) (model.Card, error) {
	if err := m.begin(ctx, OpCreateCard, req); err != nil {
		return model.Card{}, err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return model.Card{}, err
	}
	if l, ok := m.lists[req.ListID]; !ok || l.BoardID != req.BoardID || m.idTaken(req.ID) {
		return model.Card{}, Fail(OpCreateCard, FailureMessage(OpCreateCard))
	}
	next := 0
	for _, c := range m.cardsOf(req.ListID) {
		if c.Order+1 > next {
			next = c.Order + 1
		}
	}
	c := model.Card{ID: req.ID, ListID: req.ListID, BoardID: req.BoardID, Title: req.Title, Order: next, CreatedAt: m.now()}
	m.cards[c.ID] = c
	return c, nil
}

func (m *Memory) RenameCard(ctx context.Context, req RenameCardRequest) error {
	if err := m.begin(ctx, OpRenameCard, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	if c, ok := m.cards[req.CardID]; ok {
		c.Title = req.Title
		m.cards[c.ID] = c
	}
	return nil
}

func (m *Memory) ReorderCard(ctx context.Context, req ReorderCardRequest) error {
	if err := m.begin(ctx, OpReorderCard, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	if req.SameList() {
		for i, id := range CleanIDs(req.DestCardIDs) {
			if c, ok := m.cards[id]; ok && c.ListID == req.DestListID {
				c.Order = i
				m.cards[id] = c
			}
		}
		return nil
	}
	for i, id := range CleanIDs(req.DestCardIDs) {
		if c, ok := m.cards[id]; ok {
			c.Order = i
			c.ListID = req.DestListID
			m.cards[id] = c
		}
	}
	for i, id := range CleanIDs(req.SourceCardIDs) {
		if c, ok := m.cards[id]; ok && c.ListID == req.SourceListID {
			c.Order = i
			m.cards[id] = c
		}
	}
	return nil
}

func (m *Memory) DeleteCard(ctx context.Context, req DeleteCardRequest) error {
	if err := m.begin(ctx, OpDeleteCard, req); err != nil {
		return err
	}
	defer m.mu.Unlock()
	if err := req.Validate(); err != nil {
		return err
	}
	c, ok := m.cards[req.CardID]
	if !ok || c.BoardID != req.BoardID {
		return Fail(OpDeleteCard, FailureMessage(OpDeleteCard))
	}
	delete(m.cards, c.ID)
	for i, x := range m.cardsOf(c.ListID) {
		x.Order = i
		m.cards[x.ID] = x
	}
	return nil
}

var _ Gateway = (*Memory)(nil)
