// Package session runs one board's dispatcher on its own run loop.
//
// Callers on any goroutine submit actions with Do. The action and the settlement of
// its gateway call are processed on the loop; the gateway call itself runs on a
// separate goroutine bounded by the persist timeout. Readers get an immutable View
// without touching the loop.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/board"
	"kanban-cli/internal/dispatch"
	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
	"kanban-cli/internal/runloop"
)

var ErrClosed = errors.New("session closed")

// View is what a renderer needs; every field is safe to share.
type View struct {
	Board   model.Board
	State   *board.State
	Status  string
	Pending int
}

// Result describes what an action did.
type Result struct {
	OpID     uint64
	EntityID string
	// Noop is set when the action changed nothing and made no gateway call.
	Noop bool
}

type Options struct {
	// PersistTimeout bounds each gateway call; an expired call is rolled back like any
	// other failure. Zero means no timeout.
	PersistTimeout time.Duration
	Logger         *log.Logger
	// NoticeBuffer is the capacity of the Notices channel. Notices that do not fit are
	// dropped and logged.
	NoticeBuffer int
	// IDs overrides the client id generator.
	IDs func() string
}

type Session struct {
	gw      gateway.Gateway
	owner   string
	opts    Options
	logger  *log.Entry
	loop    *runloop.Loop[*dispatch.Dispatcher]
	view    atomic.Pointer[View]
	notices chan dispatch.Notice

	// bg is the parent of every gateway call; Close cancels it last.
	bg       context.Context
	cancelBg context.CancelFunc

	inflight tracker
	closeMu  sync.Mutex
	closed   bool
}

// Open loads boardID and starts its loop.
func Open(ctx context.Context, gw gateway.Gateway, owner, boardID string, opts Options) (*Session, error) {
	b, lists, err := gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: owner, BoardID: boardID})
	if err != nil {
		return nil, err
	}
	st := board.FromLists(b.ID, lists)
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.NoticeBuffer <= 0 {
		opts.NoticeBuffer = 32
	}
	s := &Session{
		gw:      gw,
		owner:   owner,
		opts:    opts,
		logger:  opts.Logger.WithField("board", b.ID),
		notices: make(chan dispatch.Notice, opts.NoticeBuffer),
	}
	dopts := []dispatch.Option{
		dispatch.WithLogger(opts.Logger),
		dispatch.WithNotifier(dispatch.NotifierFunc(s.notify)),
	}
	if opts.IDs != nil {
		dopts = append(dopts, dispatch.WithIDs(opts.IDs))
	}
	d := dispatch.New(st, gw, dopts...)
	s.view.Store(&View{Board: b, State: d.State(), Status: d.Status()})

	s.bg, s.cancelBg = context.WithCancel(context.Background())
	s.loop = runloop.New("board/"+b.ID, d, opts.Logger)
	go s.loop.Run(s.bg)
	s.logger.WithFields(log.Fields{"lists": len(st.ListOrder), "cards": len(st.Cards)}).Debug("session opened")
	return s, nil
}

func (s *Session) notify(n dispatch.Notice) {
	select {
	case s.notices <- n:
	default:
		s.logger.WithField("message", n.Message).Warn("notice dropped")
	}
}

// Notices delivers one Notice per rolled back action.
func (s *Session) Notices() <-chan dispatch.Notice { return s.notices }

func (s *Session) View() View { return *s.view.Load() }

func (s *Session) State() *board.State { return s.view.Load().State }

func (s *Session) Status() string { return s.view.Load().Status }

func (s *Session) publish(d *dispatch.Dispatcher) {
	prev := s.view.Load()
	s.view.Store(&View{Board: prev.Board, State: d.State(), Status: d.Status(), Pending: d.Pending()})
}

// Action is run against the dispatcher on the loop. It returns the Op to persist, or
// nil for a no-op.
type Action func(d *dispatch.Dispatcher) (*dispatch.Op, error)

// Do runs act on the loop and starts its gateway call. It returns once the optimistic
// state is published; the call settles later.
func (s *Session) Do(ctx context.Context, name string, act Action) (Result, error) {
	type reply struct {
		res Result
		err error
	}
	ch := make(chan reply, 1)
	ok := s.loop.Post(runloop.Func[*dispatch.Dispatcher]{N: name, F: func(_ context.Context, d *dispatch.Dispatcher) {
		op, err := act(d)
		if err != nil || op == nil {
			ch <- reply{res: Result{Noop: err == nil}, err: err}
			return
		}
		s.publish(d)
		s.persist(op)
		ch <- reply{res: Result{OpID: op.ID, EntityID: op.EntityID}}
	}})
	if !ok {
		return Result{}, ErrClosed
	}
	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.loop.Done():
		// the action may still have been processed right before the loop stopped
		select {
		case r := <-ch:
			return r.res, r.err
		default:
			return Result{}, ErrClosed
		}
	}
}

// persist runs on the loop; the call goes to its own goroutine and its Outcome comes
// back through the loop.
func (s *Session) persist(op *dispatch.Op) {
	s.inflight.add()
	go func() {
		ctx, cancel := s.persistCtx()
		out := op.Persist(ctx)
		cancel()
		if errors.Is(out.Err, context.DeadlineExceeded) {
			s.logger.WithFields(log.Fields{"op": op.Action, "timeout": s.opts.PersistTimeout}).Warn("gateway call timed out")
		}
		posted := s.loop.Post(runloop.Func[*dispatch.Dispatcher]{N: "settle", F: func(_ context.Context, d *dispatch.Dispatcher) {
			defer s.inflight.done()
			d.Settle(out)
			s.publish(d)
		}})
		if !posted {
			s.inflight.done()
		}
	}()
}

func (s *Session) persistCtx() (context.Context, context.CancelFunc) {
	if s.opts.PersistTimeout > 0 {
		return context.WithTimeout(s.bg, s.opts.PersistTimeout)
	}
	return context.WithCancel(s.bg)
}

// Wait blocks until every started gateway call has settled.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.inflight.idle():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload replaces the local state with the server's. Outcomes of calls still in
// flight are ignored afterwards.
func (s *Session) Reload(ctx context.Context) error {
	b, lists, err := s.gw.LoadBoard(ctx, gateway.LoadBoardRequest{Owner: s.owner, BoardID: s.view.Load().Board.ID})
	if err != nil {
		return err
	}
	st := board.FromLists(b.ID, lists)
	done := make(chan struct{})
	ok := s.loop.Post(runloop.Func[*dispatch.Dispatcher]{N: "reload", F: func(_ context.Context, d *dispatch.Dispatcher) {
		d.Reset(st)
		s.view.Store(&View{Board: b, State: d.State(), Status: d.Status(), Pending: d.Pending()})
		close(done)
	}})
	if !ok {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for in-flight calls (bounded by ctx), then stops the loop. Calls still
// running when ctx ends are cancelled.
func (s *Session) Close(ctx context.Context) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	err := s.Wait(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("closing with gateway calls in flight")
	}
	s.cancelBg()
	s.loop.Stop()
	return err
}

// Convenience wrappers over Do.

func (s *Session) AddList(ctx context.Context, title string) (Result, error) {
	return s.Do(ctx, "add-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.AddList(title) })
}

func (s *Session) AddCard(ctx context.Context, listID, title string) (Result, error) {
	return s.Do(ctx, "add-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.AddCard(listID, title) })
}

func (s *Session) RenameList(ctx context.Context, listID, title string) (Result, error) {
	return s.Do(ctx, "rename-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.RenameList(listID, title) })
}

func (s *Session) RenameCard(ctx context.Context, cardID, title string) (Result, error) {
	return s.Do(ctx, "rename-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.RenameCard(cardID, title) })
}

func (s *Session) MoveList(ctx context.Context, from, to int) (Result, error) {
	return s.Do(ctx, "move-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.MoveList(from, to) })
}

func (s *Session) MoveCard(ctx context.Context, srcListID, dstListID string, from, to int) (Result, error) {
	return s.Do(ctx, "move-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) {
		return d.MoveCard(srcListID, dstListID, from, to)
	})
}

func (s *Session) DeleteList(ctx context.Context, listID string) (Result, error) {
	return s.Do(ctx, "delete-list", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.DeleteList(listID) })
}

func (s *Session) DeleteCard(ctx context.Context, cardID string) (Result, error) {
	return s.Do(ctx, "delete-card", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.DeleteCard(cardID) })
}

func (s *Session) DragEnd(ctx context.Context, drop dispatch.Drop) (Result, error) {
	return s.Do(ctx, "drag-end", func(d *dispatch.Dispatcher) (*dispatch.Op, error) { return d.DragEnd(drop) })
}

// tracker counts gateway calls that have not settled. Unlike a WaitGroup it may be
// waited on while calls are being added.
type tracker struct {
	mu   sync.Mutex
	n    int
	zero chan struct{}
}

var closedCh = func() chan struct{} { c := make(chan struct{}); close(c); return c }()

func (t *tracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.zero = make(chan struct{})
	}
	t.n++
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		return
	}
	t.n--
	if t.n == 0 {
		close(t.zero)
	}
}

func (t *tracker) idle() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		return closedCh
	}
	return t.zero
}
