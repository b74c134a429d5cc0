// Package runloop serializes work on a single resource: every event is processed on one
// goroutine, in the order it was posted.
package runloop

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type Event[T any] interface {
	Name() string
	Process(ctx context.Context, resource T)
}

// Func adapts a function to an Event.
type Func[T any] struct {
	N string
	F func(ctx context.Context, resource T)
}

func (f Func[T]) Name() string                            { return f.N }
func (f Func[T]) Process(ctx context.Context, resource T) { f.F(ctx, resource) }

type Poster[T any] interface {
	Post(ev Event[T]) bool
}

// Loop owns a resource and processes posted events against it one at a time.
type Loop[T any] struct {
	name     string
	resource T
	logger   *log.Entry

	mu      sync.Mutex
	queue   []Event[T]
	closed  bool
	started bool
	cancel  context.CancelFunc

	wake   chan struct{}
	exited chan struct{}
}

func New[T any](name string, resource T, logger *log.Logger) *Loop[T] {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Loop[T]{
		name:     name,
		resource: resource,
		logger:   logger.WithField("loop", name),
		wake:     make(chan struct{}, 1),
		exited:   make(chan struct{}),
	}
}

// Post enqueues ev. It never blocks. It reports false once the loop has stopped.
func (l *Loop[T]) Post(ev Event[T]) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, ev)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Len is the number of events waiting to be processed.
func (l *Loop[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run processes events until ctx is done or Stop is called. Events still queued at
// that point are dropped.
func (l *Loop[T]) Run(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		panic("runloop: Run called twice")
	}
	l.started = true
	ctx, l.cancel = context.WithCancel(ctx)
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.closed = true
		dropped := len(l.queue)
		l.queue = nil
		l.mu.Unlock()
		if dropped > 0 {
			l.logger.WithField("dropped", dropped).Debug("run loop stopped with queued events")
		}
		close(l.exited)
	}()

	for {
		ev, ok := l.next()
		if !ok {
			select {
			case <-ctx.Done():
				l.logger.Debug("run loop stopped")
				return
			case <-l.wake:
			}
			continue
		}
		if ctx.Err() != nil {
			l.logger.Debug("run loop stopped")
			return
		}
		l.process(ctx, ev)
	}
}

func (l *Loop[T]) next() (Event[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	ev := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return ev, true
}

func (l *Loop[T]) process(ctx context.Context, ev Event[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithFields(log.Fields{"event": ev.Name(), "panic": r}).Error("event panicked")
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			l.logger.WithFields(log.Fields{"event": ev.Name(), "elapsedMs": elapsed.Milliseconds()}).Warn("slow event")
		}
	}()
	ev.Process(ctx, l.resource)
}

// Stop cancels Run and waits for it to return. Calling Stop on a loop that was never
// started marks it closed.
func (l *Loop[T]) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	if cancel == nil {
		l.closed = true
	}
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-l.exited:
	case <-time.After(time.Second):
		l.logger.Warn("run loop did not exit in time")
	}
}

// Done is closed once Run has returned.
func (l *Loop[T]) Done() <-chan struct{} { return l.exited }
