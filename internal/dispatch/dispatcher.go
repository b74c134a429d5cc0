// Package dispatch applies user actions to a board optimistically and reconciles them
// with the persistence gateway.
//
// Every action follows the same protocol: keep the current state as snapshot, install
// the new state right away, hand back an *Op whose Persist performs the gateway call,
// and finally Settle the Op's Outcome. A failed Outcome puts the snapshot back.
//
// A Dispatcher is owned by a single goroutine (an event loop). Only Op.Persist may run
// elsewhere; its Outcome must be passed back to Settle on the owner goroutine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/board"
	"kanban-cli/internal/gateway"
)

var ErrEmptyTitle = errors.New("title is required")

type Action string

const (
	ActionCreateList   Action = "create-list"
	ActionCreateCard   Action = "create-card"
	ActionRenameList   Action = "rename-list"
	ActionRenameCard   Action = "rename-card"
	ActionReorderLists Action = "reorder-lists"
	ActionReorderCards Action = "reorder-cards"
	ActionDeleteList   Action = "delete-list"
	ActionDeleteCard   Action = "delete-card"
)

// Notice is a user-facing failure notification; one per failed mutation.
type Notice struct {
	OpID    uint64
	Action  Action
	Message string
	Err     error
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Op is a mutation that has been applied locally and still has to be persisted.
type Op struct {
	ID     uint64
	Action Action
	// EntityID is the id the action targets; for creations it is the new client id.
	EntityID string

	call func(ctx context.Context) error
}

// Outcome is the result of Op.Persist.
type Outcome struct {
	OpID uint64
	Err  error
}

// Persist performs the gateway call. It is safe to run on any goroutine.
func (op *Op) Persist(ctx context.Context) (out Outcome) {
	out.OpID = op.ID
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%s: gateway panic: %v", op.Action, r)
		}
	}()
	out.Err = op.call(ctx)
	return out
}

type inflight struct {
	op       *Op
	snapshot *board.State
}

type Dispatcher struct {
	gw      gateway.Gateway
	state   *board.State
	pending map[uint64]*inflight
	lastID  uint64
	counter SyncCounter

	notifier Notifier
	logger   *log.Logger
	newID    func() string
}

type Option func(*Dispatcher)

func WithNotifier(n Notifier) Option { return func(d *Dispatcher) { d.notifier = n } }

func WithLogger(l *log.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// WithIDs replaces the client id generator (tests use deterministic ids).
func WithIDs(f func() string) Option { return func(d *Dispatcher) { d.newID = f } }

func New(st *board.State, gw gateway.Gateway, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gw:       gw,
		state:    st,
		pending:  map[uint64]*inflight{},
		notifier: NotifierFunc(func(Notice) {}),
		logger:   log.StandardLogger(),
		newID:    board.NewID,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// State returns the state the rendering layer should show. It is immutable.
func (d *Dispatcher) State() *board.State { return d.state }

func (d *Dispatcher) Pending() int { return d.counter.Pending() }

func (d *Dispatcher) Status() string { return d.counter.Status() }

func (d *Dispatcher) Counter() SyncCounter { return d.counter }

// Reset installs st and forgets every in-flight mutation. Outcomes of forgotten
// mutations are ignored when they arrive.
func (d *Dispatcher) Reset(st *board.State) {
	d.state = st
	d.pending = map[uint64]*inflight{}
	d.counter.Reset()
}

// begin installs next and registers the in-flight mutation.
func (d *Dispatcher) begin(action Action, entityID string, next *board.State, call func(ctx context.Context) error) *Op {
	d.lastID++
	op := &Op{ID: d.lastID, Action: action, EntityID: entityID, call: call}
	d.pending[op.ID] = &inflight{op: op, snapshot: d.state}
	d.state = next
	d.counter.Begin()
	return op
}

// Settle reconciles a finished Op. Success keeps the optimistic state. Any error
// restores the Op's snapshot and emits a Notice.
func (d *Dispatcher) Settle(out Outcome) {
	p, ok := d.pending[out.OpID]
	if !ok {
		return
	}
	delete(d.pending, out.OpID)
	d.counter.End()
	if out.Err == nil {
		return
	}

	d.state = p.snapshot
	// Later mutations were applied on top of the state being discarded; their own
	// rollback must not bring it back.
	for id, q := range d.pending {
		if id > out.OpID {
			q.snapshot = p.snapshot
		}
	}

	msg := noticeMessage(p.op.Action, out.Err)
	fields := log.Fields{"op": p.op.Action, "opId": out.OpID, "board": d.state.BoardID}
	if gateway.IsFailure(out.Err) {
		d.logger.WithFields(fields).WithError(out.Err).Warn("mutation rejected; rolled back")
	} else {
		d.logger.WithFields(fields).WithError(out.Err).Error("mutation failed; rolled back")
	}
	d.notifier.Notify(Notice{OpID: out.OpID, Action: p.op.Action, Message: msg, Err: out.Err})
}

// Run persists op on the calling goroutine and settles it. Convenient for callers
// without an event loop.
func (d *Dispatcher) Run(ctx context.Context, op *Op) error {
	if op == nil {
		return nil
	}
	out := op.Persist(ctx)
	d.Settle(out)
	return out.Err
}

func noticeMessage(action Action, err error) string {
	if gateway.IsFailure(err) {
		return gateway.Message(err)
	}
	switch action {
	case ActionReorderLists, ActionReorderCards:
		return "An unexpected error occurred during reorder."
	default:
		return "An unexpected error occurred."
	}
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}
