package runloop

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

type counter struct{ seen []int }

func quiet() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoop_ProcessesInOrder(t *testing.T) {
	res := &counter{}
	l := New("test", res, quiet())
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		i := i
		l.Post(Func[*counter]{N: "add", F: func(_ context.Context, c *counter) {
			c.seen = append(c.seen, i)
			if i == 99 {
				close(done)
			}
		}})
	}
	go l.Run(context.Background())
	defer l.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected all events to be processed")
	}
	for i, v := range res.seen {
		if v != i {
			t.Fatalf("expected events in post order; got %v at %d", v, i)
		}
	}
}

func TestLoop_SurvivesPanic(t *testing.T) {
	l := New("test", &counter{}, quiet())
	go l.Run(context.Background())
	defer l.Stop()

	var ran atomic.Bool
	done := make(chan struct{})
	l.Post(Func[*counter]{N: "boom", F: func(context.Context, *counter) { panic("boom") }})
	l.Post(Func[*counter]{N: "after", F: func(context.Context, *counter) { ran.Store(true); close(done) }})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected loop to keep running after a panic")
	}
	if !ran.Load() {
		t.Fatalf("expected second event to run")
	}
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := New("test", &counter{}, quiet())
	go l.Run(context.Background())
	l.Stop()
	<-l.Done()
	if l.Post(Func[*counter]{N: "late", F: func(context.Context, *counter) {}}) {
		t.Fatalf("expected Post to report false after Stop")
	}
}

func TestLoop_StopWithoutRun(t *testing.T) {
	l := New("test", &counter{}, quiet())
	l.Stop()
	if l.Post(Func[*counter]{N: "late", F: func(context.Context, *counter) {}}) {
		t.Fatalf("expected Post to report false on a stopped loop")
	}
}
