// Package gatewaytest holds the behaviour every gateway.Gateway implementation shares,
// as a reusable test suite.
package gatewaytest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

const Owner = "owner-1"

// Run exercises gw against the shared server semantics. newGateway must return an
// empty gateway for every call.
func Run(t *testing.T, newGateway func(t *testing.T) gateway.Gateway) {
	t.Run("BoardsAreOwnerScoped", func(t *testing.T) { boardsAreOwnerScoped(t, newGateway(t)) })
	t.Run("CreateAppendsWithNextOrder", func(t *testing.T) { createAppends(t, newGateway(t)) })
	t.Run("CreateKeepsClientID", func(t *testing.T) { createKeepsClientID(t, newGateway(t)) })
	t.Run("ValidationFailures", func(t *testing.T) { validationFailures(t, newGateway(t)) })
	t.Run("ReorderListsByPosition", func(t *testing.T) { reorderLists(t, newGateway(t)) })
	t.Run("ReorderCardWithinList", func(t *testing.T) { reorderCardWithinList(t, newGateway(t)) })
	t.Run("ReorderCardAcrossLists", func(t *testing.T) { reorderCardAcrossLists(t, newGateway(t)) })
	t.Run("DeleteKeepsOrdersDense", func(t *testing.T) { deleteKeepsDense(t, newGateway(t)) })
	t.Run("RenameBoardAndList", func(t *testing.T) { rename(t, newGateway(t)) })
	t.Run("DeleteBoardRemovesChildren", func(t *testing.T) { deleteBoard(t, newGateway(t)) })
}

type fixture struct {
	gw    gateway.Gateway
	board model.Board
}

func seed(t *testing.T, gw gateway.Gateway, lists map[string][]string, listOrder ...string) fixture {
	t.Helper()
	ctx := context.Background()
	b, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: Owner, Title: "Board"})
	require.NoError(t, err)
	for _, lid := range listOrder {
		_, err := gw.CreateList(ctx, gateway.CreateListRequest{ID: lid, BoardID: b.ID, Title: lid})
		require.NoError(t, err)
		for _, cid := range lists[lid] {
			_, err := gw.CreateCard(ctx, gateway.CreateCardRequest{ID: cid, ListID: lid, BoardID: b.ID, Title: cid})
			require.NoError(t, err)
		}
	}
	return fixture{gw: gw, board: b}
}

func (f fixture) load(t *testing.T) []model.List {
	t.Helper()
	_, lists, err := f.gw.LoadBoard(context.Background(), gateway.LoadBoardRequest{Owner: Owner, BoardID: f.board.ID})
	require.NoError(t, err)
	return lists
}

// layout returns list id -> card ids, and the list ids, in persisted order. It also
// checks that every sibling group is dense.
func (f fixture) layout(t *testing.T) (map[string][]string, []string) {
	t.Helper()
	out := map[string][]string{}
	var order []string
	for i, l := range f.load(t) {
		require.Equal(t, i, l.Order, "list %s order", l.ID)
		order = append(order, l.ID)
		ids := []string{}
		for j, c := range l.Cards {
			require.Equal(t, j, c.Order, "card %s order", c.ID)
			require.Equal(t, l.ID, c.ListID)
			ids = append(ids, c.ID)
		}
		out[l.ID] = ids
	}
	return out, order
}

func boardsAreOwnerScoped(t *testing.T, gw gateway.Gateway) {
	ctx := context.Background()
	mine, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: Owner, Title: " Mine "})
	require.NoError(t, err)
	assert.Equal(t, "Mine", mine.Title)
	assert.NotEmpty(t, mine.ID)
	_, err = gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: "someone-else", Title: "Theirs"})
	require.NoError(t, err)

	boards, err := gw.ListBoards(ctx, gateway.ListBoardsRequest{Owner: Owner})
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, mine.ID, boards[0].ID)

	_, _, err = gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: "someone-else", BoardID: mine.ID})
	require.Error(t, err)
	assert.True(t, gateway.IsFailure(err))
	assert.Equal(t, "Board not found.", gateway.Message(err))

	_, err = gw.ListBoards(ctx, gateway.ListBoardsRequest{})
	assert.Equal(t, "Unauthorized", gateway.Message(err))
}

func createAppends(t *testing.T, gw gateway.Gateway) {
	f := seed(t, gw, map[string][]string{"L1": {"C1", "C2"}}, "L1", "L2")
	l, err := gw.CreateList(context.Background(), gateway.CreateListRequest{ID: "X", BoardID: f.board.ID, Title: "Todo"})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Order)

	c, err := gw.CreateCard(context.Background(), gateway.CreateCardRequest{ID: "C3", ListID: "L1", BoardID: f.board.ID, Title: "three"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Order)

	layout, order := f.layout(t)
	assert.Equal(t, []string{"L1", "L2", "X"}, order)
	assert.Equal(t, []string{"C1", "C2", "C3"}, layout["L1"])
	assert.Empty(t, layout["X"])
}

func createKeepsClientID(t *testing.T, gw gateway.Gateway) {
	f := seed(t, gw, nil, "L1")
	id := uuid.NewString()
	c, err := gw.CreateCard(context.Background(), gateway.CreateCardRequest{ID: id, ListID: "L1", BoardID: f.board.ID, Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)

	// Reusing an id is rejected.
	_, err = gw.CreateCard(context.Background(), gateway.CreateCardRequest{ID: id, ListID: "L1", BoardID: f.board.ID, Title: "again"})
	require.Error(t, err)
	assert.Equal(t, "Failed to create card.", gateway.Message(err))

	_, err = gw.CreateList(context.Background(), gateway.CreateListRequest{ID: "L9", BoardID: "missing", Title: "t"})
	assert.Equal(t, "Failed to create list.", gateway.Message(err))
}

func validationFailures(t *testing.T, gw gateway.Gateway) {
	ctx := context.Background()
	cases := []struct {
		name string
		call func() error
		want string
	}{
		{"createList", func() error {
			_, err := gw.CreateList(ctx, gateway.CreateListRequest{BoardID: "b", Title: "t"})
			return err
		}, "Client ID, Board ID, and title are required."},
		{"createCard", func() error {
			_, err := gw.CreateCard(ctx, gateway.CreateCardRequest{ID: "c", BoardID: "b", Title: "t"})
			return err
		}, "Missing required fields."},
		{"renameList", func() error {
			return gw.RenameList(ctx, gateway.RenameListRequest{ListID: "l", BoardID: "b", Title: "  "})
		}, "Missing required fields."},
		{"reorderLists", func() error {
			return gw.ReorderLists(ctx, gateway.ReorderListsRequest{OrderedIDs: []string{"a"}})
		}, "Missing board ID."},
		{"reorderCard", func() error {
			return gw.ReorderCard(ctx, gateway.ReorderCardRequest{BoardID: "b", SourceListID: "l"})
		}, "Missing required fields for card reordering."},
		{"createBoard", func() error {
			_, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Title: "t"})
			return err
		}, "Unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.True(t, gateway.IsFailure(err), "expected a Failure; got %T", err)
			assert.Equal(t, tc.want, gateway.Message(err))
		})
	}
}

func reorderLists(t *testing.T, gw gateway.Gateway) {
	f := seed(t, gw, nil, "A", "B", "C")
	require.NoError(t, gw.ReorderLists(context.Background(), gateway.ReorderListsRequest{BoardID: f.board.ID, OrderedIDs: []string{"C", "A", "B"}}))
	_, order := f.layout(t)
	assert.Equal(t, []string{"C", "A", "B"}, order)
}

func reorderCardWithinList(t *testing.T, gw gateway.Gateway) {
	f := seed(t, gw, map[string][]string{"L1": {"C1", "C2", "C3"}}, "L1")
	seq := []string{"C2", "C3", "C1"}
	require.NoError(t, gw.ReorderCard(context.Background(), gateway.ReorderCardRequest{
		BoardID: f.board.ID, SourceListID: "L1", DestListID: "L1", SourceCardIDs: seq, DestCardIDs: seq,
	}))
	layout, _ := f.layout(t)
	assert.Equal(t, seq, layout["L1"])
}

func reorderCardAcrossLists(t *testing.T, gw gateway.Gateway) {
	f := seed(t, gw, map[string][]string{"L1": {"C1", "C2", "C3"}, "L2": {"D1"}}, "L1", "L2")
	require.NoError(t, gw.ReorderCard(context.Background(), gateway.ReorderCardRequest{
		BoardID:       f.board.ID,
		SourceListID:  "L1",
		DestListID:    "L2",
		SourceCardIDs: []string{"C1", "C3"},
		DestCardIDs:   []string{"D1", "C2"},
	}))
	layout, _ := f.layout(t)
	assert.Equal(t, []string{"C1", "C3"}, layout["L1"])
	assert.Equal(t, []string{"D1", "C2"}, layout["L2"])
}

func deleteKeepsDense(t *testing.T, gw gateway.Gateway) {
	ctx := context.Background()
	f := seed(t, gw, map[string][]string{"L1": {"C1", "C2", "C3"}, "L2": {"D1"}}, "L1", "L2", "L3")
	require.NoError(t, gw.DeleteCard(ctx, gateway.DeleteCardRequest{CardID: "C2", BoardID: f.board.ID}))
	require.NoError(t, gw.DeleteList(ctx, gateway.DeleteListRequest{ListID: "L2", BoardID: f.board.ID}))

	layout, order := f.layout(t)
	assert.Equal(t, []string{"L1", "L3"}, order)
	assert.Equal(t, []string{"C1", "C3"}, layout["L1"])

	err := gw.DeleteCard(ctx, gateway.DeleteCardRequest{CardID: "D1", BoardID: f.board.ID})
	assert.Equal(t, "Failed to delete card.", gateway.Message(err), "cards go with their list")
}

func rename(t *testing.T, gw gateway.Gateway) {
	ctx := context.Background()
	f := seed(t, gw, map[string][]string{"L1": {"C1"}}, "L1")
	require.NoError(t, gw.RenameBoard(ctx, gateway.RenameBoardRequest{Owner: Owner, BoardID: f.board.ID, Title: "Renamed"}))
	require.NoError(t, gw.RenameList(ctx, gateway.RenameListRequest{ListID: "L1", BoardID: f.board.ID, Title: "Doing"}))
	require.NoError(t, gw.RenameCard(ctx, gateway.RenameCardRequest{CardID: "C1", BoardID: f.board.ID, Title: "one"}))

	b, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: Owner, BoardID: f.board.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Title)
	assert.Equal(t, "Doing", lists[0].Title)
	assert.Equal(t, "one", lists[0].Cards[0].Title)

	err = gw.RenameBoard(ctx, gateway.RenameBoardRequest{Owner: "intruder", BoardID: f.board.ID, Title: "x"})
	assert.Equal(t, "Board not found.", gateway.Message(err))
}

func deleteBoard(t *testing.T, gw gateway.Gateway) {
	ctx := context.Background()
	f := seed(t, gw, map[string][]string{"L1": {"C1"}}, "L1")
	require.NoError(t, gw.DeleteBoard(ctx, gateway.DeleteBoardRequest{Owner: Owner, BoardID: f.board.ID}))
	_, _, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: Owner, BoardID: f.board.ID})
	assert.Equal(t, "Board not found.", gateway.Message(err))

	// Freed ids may be used again.
	g := seed(t, gw, map[string][]string{"L1": {"C1"}}, "L1")
	layout, _ := g.layout(t)
	assert.Equal(t, []string{"C1"}, layout["L1"])
}
