package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/board"
	"kanban-cli/internal/dispatch"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

// maxNotices is how many failure notices stay on screen.
const maxNotices = 3

type Options struct {
	// PersistTimeout bounds each gateway call; zero means no timeout.
	PersistTimeout time.Duration
	Logger         *log.Logger
	IDs            func() string
}

type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputAddCard
	inputAddList
	inputRenameCard
	inputRenameList
)

// selection is the cursor. Card is -1 when the column is empty. While a card is
// grabbed in another column Card may equal the column length (the append slot).
type selection struct {
	Col  int
	Card int
}

// settledMsg carries a finished gateway call back to Update.
type settledMsg struct {
	out dispatch.Outcome
}

// noticeLog collects dispatcher notices. It is shared by pointer because the
// dispatcher's notifier outlives any single copy of the Model.
type noticeLog struct {
	lines []string
}

func (n *noticeLog) add(msg string) {
	n.lines = append(n.lines, msg)
	if len(n.lines) > maxNotices {
		n.lines = n.lines[len(n.lines)-maxNotices:]
	}
}

// Model drives one board. The dispatcher is owned by the bubbletea event loop: every
// action and every settlement happens in Update, and gateway calls run as commands.
type Model struct {
	info    model.Board
	disp    *dispatch.Dispatcher
	timeout time.Duration
	keys    keyMap
	help    help.Model
	notices *noticeLog

	sel     selection
	grabbed *dispatch.Drop

	purpose inputPurpose
	target  string
	input   textinput.Model

	flash    string
	width    int
	height   int
	quitting bool
}

func New(b model.Board, st *board.State, gw gateway.Gateway, opts Options) Model {
	notices := &noticeLog{}
	dopts := []dispatch.Option{
		dispatch.WithNotifier(dispatch.NotifierFunc(func(n dispatch.Notice) { notices.add(n.Message) })),
	}
	if opts.Logger != nil {
		dopts = append(dopts, dispatch.WithLogger(opts.Logger))
	}
	if opts.IDs != nil {
		dopts = append(dopts, dispatch.WithIDs(opts.IDs))
	}

	in := textinput.New()
	in.Placeholder = "Title"
	in.CharLimit = 200
	in.Width = 40

	m := Model{
		info:    b,
		disp:    dispatch.New(st, gw, dopts...),
		timeout: opts.PersistTimeout,
		keys:    defaultKeyMap(),
		help:    help.New(),
		notices: notices,
		input:   in,
		width:   80,
		height:  24,
	}
	m.sel = m.clamp(selection{})
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) State() *board.State { return m.disp.State() }

func (m Model) Notices() []string { return append([]string(nil), m.notices.lines...) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case settledMsg:
		m.disp.Settle(msg.out)
		m.sel = m.clamp(m.sel)
		if m.grabbed != nil && !m.grabStillValid() {
			m.grabbed = nil
		}
		if m.quitting && m.disp.Pending() == 0 {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if m.purpose != inputNone {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	st := m.disp.State()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.disp.Pending() == 0 || m.quitting {
			return m, tea.Quit
		}
		m.quitting = true
		m.flash = fmt.Sprintf("Waiting for %d change(s) to save; press q again to quit now.", m.disp.Pending())
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.sel = m.clamp(selection{Col: m.sel.Col - 1, Card: m.sel.Card})
	case key.Matches(msg, m.keys.Right):
		m.sel = m.clamp(selection{Col: m.sel.Col + 1, Card: m.sel.Card})
	case key.Matches(msg, m.keys.Up):
		m.sel = m.clamp(selection{Col: m.sel.Col, Card: m.sel.Card - 1})
	case key.Matches(msg, m.keys.Down):
		m.sel = m.clamp(selection{Col: m.sel.Col, Card: m.sel.Card + 1})

	case key.Matches(msg, m.keys.Cancel):
		if m.grabbed != nil {
			// Dropped outside any container: nothing moves.
			drop := *m.grabbed
			m.grabbed = nil
			return m, m.apply(m.disp.DragEnd(drop))
		}

	case key.Matches(msg, m.keys.Grab):
		return m.toggleGrab(dispatch.KindCard)
	case key.Matches(msg, m.keys.GrabList):
		return m.toggleGrab(dispatch.KindColumn)

	case key.Matches(msg, m.keys.AddList):
		return m.openInput(inputAddList, "", ""), textinput.Blink
	case key.Matches(msg, m.keys.AddCard):
		if lid, ok := m.selectedList(); ok {
			return m.openInput(inputAddCard, lid, ""), textinput.Blink
		}
		m.flash = "Add a list first."
	case key.Matches(msg, m.keys.RenameList):
		if lid, ok := m.selectedList(); ok {
			return m.openInput(inputRenameList, lid, st.Lists[lid].Title), textinput.Blink
		}
	case key.Matches(msg, m.keys.RenameCard):
		if cid, ok := m.selectedCard(); ok {
			return m.openInput(inputRenameCard, cid, st.Cards[cid].Title), textinput.Blink
		}
	case key.Matches(msg, m.keys.DeleteCard):
		if cid, ok := m.selectedCard(); ok {
			cmd := m.apply(m.disp.DeleteCard(cid))
			m.sel = m.clamp(m.sel)
			return m, cmd
		}
	case key.Matches(msg, m.keys.DeleteList):
		if lid, ok := m.selectedList(); ok {
			cmd := m.apply(m.disp.DeleteList(lid))
			m.sel = m.clamp(m.sel)
			return m, cmd
		}
	}
	return m, nil
}

// toggleGrab picks up the item under the cursor, or drops the grabbed one at the cursor.
func (m Model) toggleGrab(kind dispatch.Kind) (tea.Model, tea.Cmd) {
	st := m.disp.State()
	if m.grabbed == nil {
		switch kind {
		case dispatch.KindCard:
			cid, ok := m.selectedCard()
			if !ok {
				return m, nil
			}
			lid, idx, _ := st.ListOf(cid)
			m.grabbed = &dispatch.Drop{Kind: kind, DraggableID: cid, Source: dispatch.Location{ContainerID: lid, Index: idx}}
		case dispatch.KindColumn:
			lid, ok := m.selectedList()
			if !ok {
				return m, nil
			}
			m.grabbed = &dispatch.Drop{Kind: kind, DraggableID: lid, Source: dispatch.Location{ContainerID: st.BoardID, Index: m.sel.Col}}
		}
		return m, nil
	}
	if m.grabbed.Kind != kind {
		return m, nil
	}

	drop := *m.grabbed
	m.grabbed = nil
	switch kind {
	case dispatch.KindCard:
		lid, ok := m.selectedList()
		if !ok {
			return m, nil
		}
		idx := m.sel.Card
		if idx < 0 {
			idx = 0
		}
		drop.Destination = &dispatch.Location{ContainerID: lid, Index: idx}
	case dispatch.KindColumn:
		drop.Destination = &dispatch.Location{ContainerID: st.BoardID, Index: m.sel.Col}
	}
	cmd := m.apply(m.disp.DragEnd(drop))
	m.follow(drop)
	return m, cmd
}

// follow moves the cursor onto the item that was just dropped.
func (m *Model) follow(drop dispatch.Drop) {
	st := m.disp.State()
	switch drop.Kind {
	case dispatch.KindCard:
		if lid, idx, ok := st.ListOf(drop.DraggableID); ok {
			m.sel = m.clamp(selection{Col: st.ListIndex(lid), Card: idx})
			return
		}
	case dispatch.KindColumn:
		if i := st.ListIndex(drop.DraggableID); i >= 0 {
			m.sel = m.clamp(selection{Col: i, Card: m.sel.Card})
			return
		}
	}
	m.sel = m.clamp(m.sel)
}

func (m Model) grabStillValid() bool {
	st := m.disp.State()
	switch m.grabbed.Kind {
	case dispatch.KindCard:
		lid, idx, ok := st.ListOf(m.grabbed.DraggableID)
		return ok && lid == m.grabbed.Source.ContainerID && idx == m.grabbed.Source.Index
	default:
		return st.ListIndex(m.grabbed.DraggableID) == m.grabbed.Source.Index
	}
}

func (m Model) openInput(p inputPurpose, target, value string) Model {
	m.purpose = p
	m.target = target
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		title := m.input.Value()
		p, target := m.purpose, m.target
		m.closeInput()
		return m.submit(p, target, title)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.purpose = inputNone
	m.target = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) submit(p inputPurpose, target, title string) (tea.Model, tea.Cmd) {
	var op *dispatch.Op
	var err error
	switch p {
	case inputAddList:
		op, err = m.disp.AddList(title)
	case inputAddCard:
		op, err = m.disp.AddCard(target, title)
	case inputRenameList:
		op, err = m.disp.RenameList(target, title)
	case inputRenameCard:
		op, err = m.disp.RenameCard(target, title)
	}
	cmd := m.apply(op, err)
	if op != nil && (p == inputAddList || p == inputAddCard) {
		st := m.disp.State()
		if p == inputAddList {
			m.sel = m.clamp(selection{Col: st.ListIndex(op.EntityID), Card: 0})
		} else if lid, idx, ok := st.ListOf(op.EntityID); ok {
			m.sel = m.clamp(selection{Col: st.ListIndex(lid), Card: idx})
		}
	}
	return m, cmd
}

// apply turns an action result into the command that persists it. Local errors
// (blank title, stale drop) are shown right away; nothing was changed for them.
func (m *Model) apply(op *dispatch.Op, err error) tea.Cmd {
	if err != nil {
		m.flash = capitalize(err.Error()) + "."
		return nil
	}
	if op == nil {
		return nil
	}
	return persist(op, m.timeout)
}

func persist(op *dispatch.Op, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return settledMsg{out: op.Persist(ctx)}
	}
}

func (m Model) selectedList() (string, bool) {
	st := m.disp.State()
	if m.sel.Col < 0 || m.sel.Col >= len(st.ListOrder) {
		return "", false
	}
	return st.ListOrder[m.sel.Col], true
}

func (m Model) selectedCard() (string, bool) {
	lid, ok := m.selectedList()
	if !ok {
		return "", false
	}
	ids := m.disp.State().Lists[lid].CardIDs
	if m.sel.Card < 0 || m.sel.Card >= len(ids) {
		return "", false
	}
	return ids[m.sel.Card], true
}

func (m Model) clamp(sel selection) selection {
	st := m.disp.State()
	if len(st.ListOrder) == 0 {
		return selection{Col: 0, Card: -1}
	}
	sel.Col = clampInt(sel.Col, 0, len(st.ListOrder)-1)
	n := len(st.Lists[st.ListOrder[sel.Col]].CardIDs)
	maxCard := n - 1
	// A grabbed card may be dropped after the last card of another list.
	if m.grabbed != nil && m.grabbed.Kind == dispatch.KindCard && st.ListOrder[sel.Col] != m.grabbed.Source.ContainerID {
		maxCard = n
	}
	if maxCard < 0 {
		sel.Card = -1
		return sel
	}
	sel.Card = clampInt(sel.Card, 0, maxCard)
	return sel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
