package tui

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/board"
	"kanban-cli/internal/dispatch"
	"kanban-cli/internal/gateway"
)

// seed builds a model over lists L1 [C1 C2 C3] and L2 [].
func seed(t *testing.T) (Model, *gateway.Memory, string) {
	t.Helper()
	ctx := context.Background()
	gw := gateway.NewMemory()
	b, err := gw.CreateBoard(ctx, gateway.CreateBoardRequest{Owner: "me", Title: "Sprint"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	for _, id := range []string{"L1", "L2"} {
		if _, err := gw.CreateList(ctx, gateway.CreateListRequest{ID: id, BoardID: b.ID, Title: "List " + id}); err != nil {
			t.Fatalf("create list: %v", err)
		}
	}
	for _, id := range []string{"C1", "C2", "C3"} {
		if _, err := gw.CreateCard(ctx, gateway.CreateCardRequest{ID: id, ListID: "L1", BoardID: b.ID, Title: "Card " + id}); err != nil {
			t.Fatalf("create card: %v", err)
		}
	}
	_, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: "me", BoardID: b.ID})
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	quiet := log.New()
	quiet.SetOutput(io.Discard)
	n := 0
	m := New(b, board.FromLists(b.ID, lists), gw, Options{
		Logger: quiet,
		IDs:    func() string { n++; return fmt.Sprintf("X%d", n) },
	})
	return m, gw, b.ID
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	out, cmd := m.Update(msg)
	mm, ok := out.(Model)
	if !ok {
		t.Fatalf("expected Update to return Model; got %T", out)
	}
	return mm, cmd
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// press sends each key and returns the last command.
func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range msgs {
		m, cmd = send(t, m, k)
	}
	return m, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, keys(string(r)))
	}
	return m
}

// settle runs a persist command and feeds its result back.
func settle(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a persist command")
	}
	msg, ok := cmd().(settledMsg)
	if !ok {
		t.Fatalf("expected settledMsg from persist command")
	}
	return send(t, m, msg)
}

func cardsOf(m Model, listID string) []string {
	return m.State().Lists[listID].CardIDs
}

func TestAddCard_OptimisticThenSaved(t *testing.T) {
	m, gw, _ := seed(t)
	calls := gw.CallCount()

	m, _ = press(t, m, keys("a"))
	if m.purpose != inputAddCard || m.target != "L1" {
		t.Fatalf("expected add-card prompt for L1; got purpose=%v target=%q", m.purpose, m.target)
	}
	m = typeText(t, m, "Ship it")
	m, cmd := press(t, m, enter)

	if got := cardsOf(m, "L1"); !reflect.DeepEqual(got, []string{"C1", "C2", "C3", "X1"}) {
		t.Fatalf("expected X1 appended before the store answers; got %v", got)
	}
	if m.disp.Status() != dispatch.StatusSaving {
		t.Fatalf("expected saving status; got %s", m.disp.Status())
	}
	if m.sel != (selection{Col: 0, Card: 3}) {
		t.Fatalf("expected cursor on the new card; got %+v", m.sel)
	}
	if gw.CallCount() != calls {
		t.Fatalf("expected no gateway call until the command runs")
	}

	m, _ = settle(t, m, cmd)
	if m.disp.Status() != dispatch.StatusSaved {
		t.Fatalf("expected saved status; got %s", m.disp.Status())
	}
	if !strings.Contains(m.View(), "All changes saved") {
		t.Fatalf("expected saved indicator in view")
	}
}

func TestGrabAndDropAcrossLists(t *testing.T) {
	m, gw, boardID := seed(t)

	m, _ = press(t, m, space)
	if m.grabbed == nil || m.grabbed.DraggableID != "C1" {
		t.Fatalf("expected C1 grabbed; got %+v", m.grabbed)
	}
	m, cmd := press(t, m, keys("l"), space)
	if m.grabbed != nil {
		t.Fatalf("expected drop to release the grab")
	}
	if got := cardsOf(m, "L2"); !reflect.DeepEqual(got, []string{"C1"}) {
		t.Fatalf("expected C1 in L2; got %v", got)
	}
	if got := cardsOf(m, "L1"); !reflect.DeepEqual(got, []string{"C2", "C3"}) {
		t.Fatalf("expected C1 gone from L1; got %v", got)
	}
	if m.sel != (selection{Col: 1, Card: 0}) {
		t.Fatalf("expected cursor to follow the card; got %+v", m.sel)
	}

	m, _ = settle(t, m, cmd)
	_, lists, err := gw.LoadBoard(context.Background(), gateway.LoadBoardRequest{Owner: "me", BoardID: boardID})
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	if len(lists[1].Cards) != 1 || lists[1].Cards[0].ID != "C1" {
		t.Fatalf("expected the move persisted; got %+v", lists[1].Cards)
	}
	if m.disp.Pending() != 0 {
		t.Fatalf("expected nothing pending")
	}
}

func TestGrabWithinListMovesToCursor(t *testing.T) {
	m, _, _ := seed(t)
	m, cmd := press(t, m, space, keys("j"), keys("j"), space)
	if got := cardsOf(m, "L1"); !reflect.DeepEqual(got, []string{"C2", "C3", "C1"}) {
		t.Fatalf("expected [C2 C3 C1]; got %v", got)
	}
	settle(t, m, cmd)
}

func TestCancelGrabSendsNothing(t *testing.T) {
	m, gw, _ := seed(t)
	calls := gw.CallCount()
	before := m.State()

	m, cmd := press(t, m, space, keys("l"), esc)
	if cmd != nil {
		t.Fatalf("expected no command for a cancelled drag")
	}
	if m.grabbed != nil {
		t.Fatalf("expected grab cleared")
	}
	if m.State() != before || gw.CallCount() != calls {
		t.Fatalf("expected state and gateway untouched")
	}

	// Dropping where it was picked up is a no-op too.
	m, cmd = press(t, m, keys("h"), space, space)
	if cmd != nil || m.State() != before {
		t.Fatalf("expected drop in place to be a no-op")
	}
}

func TestFailedListMoveRollsBack(t *testing.T) {
	m, gw, _ := seed(t)
	before := m.State()
	gw.FailNext(gateway.OpReorderLists, "Failed to reorder lists.")

	m, cmd := press(t, m, keys("m"), keys("l"), keys("m"))
	if got := m.State().ListOrder; !reflect.DeepEqual(got, []string{"L2", "L1"}) {
		t.Fatalf("expected optimistic [L2 L1]; got %v", got)
	}

	m, _ = settle(t, m, cmd)
	if !m.State().Equal(before) {
		t.Fatalf("expected rollback to the state before the move; got %v", m.State().ListOrder)
	}
	if got := m.Notices(); len(got) != 1 || got[0] != "Failed to reorder lists." {
		t.Fatalf("expected one notice; got %v", got)
	}
	if !strings.Contains(m.View(), "Failed to reorder lists.") {
		t.Fatalf("expected notice in view")
	}
}

func TestBlankTitleIsRejectedLocally(t *testing.T) {
	m, gw, _ := seed(t)
	calls := gw.CallCount()
	m, cmd := press(t, m, keys("A"), keys(" "), enter)
	if cmd != nil {
		t.Fatalf("expected no command for a blank title")
	}
	if m.flash != "Title is required." {
		t.Fatalf("expected flash message; got %q", m.flash)
	}
	if gw.CallCount() != calls || len(m.State().ListOrder) != 2 {
		t.Fatalf("expected nothing created")
	}
}

func TestRenameAndDelete(t *testing.T) {
	m, _, _ := seed(t)

	m, _ = press(t, m, keys("e"))
	if m.input.Value() != "Card C1" {
		t.Fatalf("expected prompt prefilled with the title; got %q", m.input.Value())
	}
	m, cmd := press(t, m, keys("!"), enter)
	if got := m.State().Cards["C1"].Title; got != "Card C1!" {
		t.Fatalf("expected renamed card; got %q", got)
	}
	m, _ = settle(t, m, cmd)

	m, cmd = press(t, m, keys("x"))
	if _, ok := m.State().Cards["C1"]; ok {
		t.Fatalf("expected C1 deleted")
	}
	if m.sel != (selection{Col: 0, Card: 0}) {
		t.Fatalf("expected cursor to stay in range; got %+v", m.sel)
	}
	settle(t, m, cmd)
}

func TestQuitWaitsForPendingSaves(t *testing.T) {
	m, _, _ := seed(t)
	m, persistCmd := press(t, m, keys("x"))

	m, cmd := press(t, m, keys("q"))
	if cmd != nil || !m.quitting {
		t.Fatalf("expected first q to wait while a save is pending")
	}
	_, cmd = settle(t, m, persistCmd)
	if cmd == nil {
		t.Fatalf("expected quit once the save settled")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.Quit")
	}
}

func TestViewRendersColumns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m, _, _ := seed(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})

	v := m.View()
	for _, want := range []string{"Sprint", "List L1 (3)", "List L2 (0)", "Card C2", "(empty)"} {
		if !strings.Contains(v, want) {
			t.Fatalf("expected view to contain %q; got:\n%s", want, v)
		}
	}
	if got := len(strings.Split(v, "\n")); got != 12 {
		t.Fatalf("expected view to fill the height (12 lines); got %d", got)
	}

	m, _ = press(t, m, space, keys("l"))
	if v := m.View(); !strings.Contains(v, dropMarkText) || !strings.Contains(v, "▸ Card C1") {
		t.Fatalf("expected drag markers in view; got:\n%s", v)
	}
}

func TestFitPane(t *testing.T) {
	got := fitPane("abcdef\nxy", 4, 3)
	want := "abc…\nxy  \n    "
	if got != want {
		t.Fatalf("fitPane = %q; want %q", got, want)
	}
}
