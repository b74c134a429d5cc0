package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
)

type fixtureBoard struct {
	gw      *gateway.Memory
	boardID string
	notices []Notice
}

// seed creates a board with lists L1 [C1 C2 C3] and L2 [] through the gateway and
// returns a dispatcher over the loaded state.
func seed(t *testing.T) (*fixtureBoard, *Dispatcher) {
	t.Helper()
	ctx := context.Background()
	gw := gateway.NewMemory()
	b, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: "me", Title: "Board"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	for _, id := range []string{"L1", "L2"} {
		if _, err := gw.CreateList(ctx, gateway.CreateListRequest{ID: id, BoardID: b.ID, Title: id}); err != nil {
			t.Fatalf("create list: %v", err)
		}
	}
	for _, id := range []string{"C1", "C2", "C3"} {
		if _, err := gw.CreateCard(ctx, gateway.CreateCardRequest{ID: id, ListID: "L1", BoardID: b.ID, Title: id}); err != nil {
			t.Fatalf("create card: %v", err)
		}
	}
	_, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: "me", BoardID: b.ID})
	if err != nil {
		t.Fatalf("load board: %v", err)
	}

	fx := &fixtureBoard{gw: gw, boardID: b.ID}
	quiet := log.New()
	quiet.SetOutput(io.Discard)
	n := 0
	d := New(board.FromLists(b.ID, lists), gw,
		WithLogger(quiet),
		WithNotifier(NotifierFunc(func(no Notice) { fx.notices = append(fx.notices, no) })),
		WithIDs(func() string { n++; return fmt.Sprintf("X%d", n) }),
	)
	return fx, d
}

func (fx *fixtureBoard) calls() int { return fx.gw.CallCount() }

func (fx *fixtureBoard) load(t *testing.T) *board.State {
	t.Helper()
	_, lists, err := fx.gw.LoadBoard(context.Background(), gateway.LoadBoardRequest{Owner: "me", BoardID: fx.boardID})
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	return board.FromLists(fx.boardID, lists)
}

func TestMoveCard_NoopSendsNothing(t *testing.T) {
	fx, d := seed(t)
	before := d.State()
	base := fx.calls()

	op, err := d.MoveCard("L1", "L1", 1, 1)
	if err != nil || op != nil {
		t.Fatalf("expected no-op; got op=%v err=%v", op, err)
	}
	op, err = d.DragEnd(Drop{Kind: KindCard, DraggableID: "C2", Source: Location{ContainerID: "L1", Index: 1}})
	if err != nil || op != nil {
		t.Fatalf("expected no-op for drop outside; got op=%v err=%v", op, err)
	}
	if d.State() != before {
		t.Fatalf("expected state to be untouched")
	}
	if fx.calls() != base || d.Pending() != 0 {
		t.Fatalf("expected no gateway calls; got %d pending=%d", fx.calls()-base, d.Pending())
	}
}

func TestMoveCard_WithinListPersistsFullSequence(t *testing.T) {
	fx, d := seed(t)
	op, err := d.MoveCard("L1", "L1", 0, 2)
	if err != nil || op == nil {
		t.Fatalf("move: op=%v err=%v", op, err)
	}
	if want := []string{"C2", "C3", "C1"}; !reflect.DeepEqual(d.State().Lists["L1"].CardIDs, want) {
		t.Fatalf("expected optimistic order %v; got %v", want, d.State().Lists["L1"].CardIDs)
	}
	if d.Status() != StatusSaving {
		t.Fatalf("expected saving; got %s", d.Status())
	}

	if err := d.Run(context.Background(), op); err != nil {
		t.Fatalf("run: %v", err)
	}
	calls := fx.gw.Calls()
	req, ok := calls[len(calls)-1].Request.(gateway.ReorderCardRequest)
	if !ok {
		t.Fatalf("expected a reorderCard call; got %#v", calls[len(calls)-1])
	}
	if want := []string{"C2", "C3", "C1"}; !reflect.DeepEqual(req.DestCardIDs, want) || !reflect.DeepEqual(req.SourceCardIDs, want) {
		t.Fatalf("expected sequences %v; got src=%v dst=%v", want, req.SourceCardIDs, req.DestCardIDs)
	}
	if !fx.load(t).Equal(d.State()) {
		t.Fatalf("expected server and client to agree")
	}
	orders := d.State().CardOrders("L1")
	for i, a := range orders {
		if a.Order != i {
			t.Fatalf("expected dense orders; got %v", orders)
		}
	}
	if d.Status() != StatusSaved || d.Pending() != 0 {
		t.Fatalf("expected saved with nothing pending; got %s/%d", d.Status(), d.Pending())
	}
}

func TestMoveCard_AcrossLists(t *testing.T) {
	fx, d := seed(t)
	op, err := d.DragEnd(Drop{
		Kind:        KindCard,
		DraggableID: "C2",
		Source:      Location{ContainerID: "L1", Index: 1},
		Destination: &Location{ContainerID: "L2", Index: 0},
	})
	if err != nil || op == nil {
		t.Fatalf("drag: op=%v err=%v", op, err)
	}
	if err := d.Run(context.Background(), op); err != nil {
		t.Fatalf("run: %v", err)
	}
	st := d.State()
	if lid, idx, _ := st.ListOf("C2"); lid != "L2" || idx != 0 {
		t.Fatalf("expected C2 at L2[0]; got %s[%d]", lid, idx)
	}
	if want := []string{"C1", "C3"}; !reflect.DeepEqual(st.Lists["L1"].CardIDs, want) {
		t.Fatalf("expected source %v; got %v", want, st.Lists["L1"].CardIDs)
	}
	if !fx.load(t).Equal(st) {
		t.Fatalf("expected server and client to agree")
	}
}

func TestDragEnd_StaleSource(t *testing.T) {
	_, d := seed(t)
	_, err := d.DragEnd(Drop{
		Kind:        KindCard,
		DraggableID: "C3",
		Source:      Location{ContainerID: "L1", Index: 0},
		Destination: &Location{ContainerID: "L2", Index: 0},
	})
	if !errors.Is(err, ErrStaleDrop) {
		t.Fatalf("expected ErrStaleDrop; got %v", err)
	}
}

func TestAddList_RollbackOnFailure(t *testing.T) {
	fx, d := seed(t)
	before := d.State()

	op, err := d.AddList("  Todo ")
	if err != nil {
		t.Fatalf("add list: %v", err)
	}
	st := d.State()
	if op.EntityID != "X1" || st.ListIndex("X1") != 2 || st.Lists["X1"].Title != "Todo" {
		t.Fatalf("expected list X1 'Todo' at index 2; got idx=%d", st.ListIndex("X1"))
	}

	fx.gw.FailNext(gateway.OpCreateList, "Failed to create list.")
	if err := d.Run(context.Background(), op); !gateway.IsFailure(err) {
		t.Fatalf("expected failure; got %v", err)
	}
	if d.State() != before {
		t.Fatalf("expected the pre-action state to be restored")
	}
	if len(fx.notices) != 1 || fx.notices[0].Message != "Failed to create list." {
		t.Fatalf("expected one notice with the server message; got %+v", fx.notices)
	}
	if d.Pending() != 0 {
		t.Fatalf("expected counter back at 0; got %d", d.Pending())
	}
}

func TestAddList_SucceedsWithNextOrder(t *testing.T) {
	fx, d := seed(t)
	op, err := d.AddList("Todo")
	if err != nil {
		t.Fatalf("add list: %v", err)
	}
	if err := d.Run(context.Background(), op); err != nil {
		t.Fatalf("run: %v", err)
	}
	_, lists, _ := fx.gw.LoadBoard(context.Background(), gateway.LoadBoardRequest{Owner: "me", BoardID: fx.boardID})
	last := lists[len(lists)-1]
	if last.ID != "X1" || last.Order != 2 {
		t.Fatalf("expected X1 persisted with order 2; got %s/%d", last.ID, last.Order)
	}
}

func TestAdd_RejectsBlankTitle(t *testing.T) {
	fx, d := seed(t)
	base := fx.calls()
	if _, err := d.AddList("   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle; got %v", err)
	}
	if _, err := d.AddCard("L1", ""); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle; got %v", err)
	}
	if fx.calls() != base {
		t.Fatalf("expected no gateway calls")
	}
}

func TestRename_UnchangedTitleIsNoop(t *testing.T) {
	fx, d := seed(t)
	base := fx.calls()
	op, err := d.RenameCard("C1", " C1 ")
	if err != nil || op != nil {
		t.Fatalf("expected no-op; got op=%v err=%v", op, err)
	}
	if fx.calls() != base {
		t.Fatalf("expected no gateway calls")
	}
}

func TestTransportErrorAndPanicRollBack(t *testing.T) {
	fx, d := seed(t)
	before := d.State()

	op, _ := d.MoveList(0, 1)
	fx.gw.ErrNext(gateway.OpReorderLists, errors.New("connection reset"))
	if err := d.Run(context.Background(), op); err == nil {
		t.Fatalf("expected transport error")
	}
	if d.State() != before {
		t.Fatalf("expected rollback after transport error")
	}
	if got := fx.notices[len(fx.notices)-1].Message; got != "An unexpected error occurred during reorder." {
		t.Fatalf("unexpected notice: %q", got)
	}

	op, _ = d.DeleteCard("C1")
	op.call = func(context.Context) error { panic("boom") }
	if err := d.Run(context.Background(), op); err == nil {
		t.Fatalf("expected error from panicking call")
	}
	if d.State() != before {
		t.Fatalf("expected rollback after panic")
	}
	if d.Pending() != 0 {
		t.Fatalf("expected counter back at 0; got %d", d.Pending())
	}
}

func TestSettle_InterleavedFailureDoesNotResurrect(t *testing.T) {
	fx, d := seed(t)
	s0 := d.State()

	op1, _ := d.RenameList("L1", "First")
	op2, _ := d.RenameList("L2", "Second")
	if d.Pending() != 2 {
		t.Fatalf("expected 2 pending; got %d", d.Pending())
	}

	fx.gw.FailNext(gateway.OpRenameList, "Failed to rename list.")
	d.Settle(op1.Persist(context.Background()))
	if d.State() != s0 {
		t.Fatalf("expected rollback to the state before the first rename")
	}

	fx.gw.FailNext(gateway.OpRenameList, "Failed to rename list.")
	d.Settle(op2.Persist(context.Background()))
	if d.State() != s0 {
		t.Fatalf("expected the discarded state to stay discarded")
	}
	if _, ok := d.State().List("L1"); !ok || d.State().Lists["L1"].Title != "L1" {
		t.Fatalf("expected original title")
	}
	if d.Pending() != 0 || len(fx.notices) != 2 {
		t.Fatalf("expected 0 pending and 2 notices; got %d/%d", d.Pending(), len(fx.notices))
	}
}

func TestSettle_IgnoresUnknownAndDuplicateOutcomes(t *testing.T) {
	_, d := seed(t)
	op, _ := d.DeleteList("L2")
	after := d.State()
	out := op.Persist(context.Background())
	d.Settle(out)
	d.Settle(out)
	d.Settle(Outcome{OpID: 99, Err: errors.New("late")})
	if d.State() != after || d.Pending() != 0 {
		t.Fatalf("expected settled state to stay; pending=%d", d.Pending())
	}
}

func TestCounterBalancesAcrossMixedOutcomes(t *testing.T) {
	fx, d := seed(t)
	var ops []*Op
	for i := 0; i < 4; i++ {
		op, err := d.AddCard("L2", fmt.Sprintf("card %d", i))
		if err != nil {
			t.Fatalf("add card: %v", err)
		}
		ops = append(ops, op)
	}
	if c := d.Counter(); !c.Syncing() || !c.Shown() || c.Pending() != 4 {
		t.Fatalf("expected 4 pending while syncing; got %+v", c)
	}
	fx.gw.FailNext(gateway.OpCreateCard, "Failed to create card.")
	for _, op := range ops {
		d.Settle(op.Persist(context.Background()))
	}
	if c := d.Counter(); c.Syncing() || d.Pending() != 0 || d.Status() != StatusSaved {
		t.Fatalf("expected balanced counter; got %d/%s", d.Pending(), d.Status())
	}
	// The first add failed: its snapshot predates every later add, and the later
	// successes keep what is installed.
	if n := len(d.State().Lists["L2"].CardIDs); n != 0 {
		t.Fatalf("expected L2 rolled back to empty; got %d cards", n)
	}
}
