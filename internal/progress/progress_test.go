package progress

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cineshelf/cineshelf/internal/events"
)

type fakeReporter struct {
	mu       sync.Mutex
	starts   []string
	descs    []string
	finishes int
}

func (f *fakeReporter) Start(d string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, d)
}

func (f *fakeReporter) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishes++
}

func (f *fakeReporter) Error(error) {}

func (f *fakeReporter) SetDescription(d string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.descs = append(f.descs, d)
}

func (f *fakeReporter) finished() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishes
}

func queryEvent(t events.EventType, view string, page int, query string) *events.QueryEvent {
	return &events.QueryEvent{
		BaseEvent: events.BaseEvent{EventType: t, Time: time.Now()},
		View:      view,
		Page:      page,
		Query:     query,
	}
}

func TestQueryIndicator_StartAndFinish(t *testing.T) {
	rep := &fakeReporter{}
	q := NewQueryIndicator(rep)

	q.Handle(queryEvent(events.EventQueryLoading, "home", 2, ""))
	if !q.Active() {
		t.Fatal("expected indicator to be active while loading")
	}
	if len(rep.starts) != 1 || rep.starts[0] != "Loading home page 2" {
		t.Errorf("starts = %v", rep.starts)
	}

	q.Handle(queryEvent(events.EventQueryLoaded, "home", 2, ""))
	if q.Active() {
		t.Error("expected indicator to be idle after load")
	}
	if rep.finishes != 1 {
		t.Errorf("finishes = %d, want 1", rep.finishes)
	}
}

func TestQueryIndicator_OverlappingViews(t *testing.T) {
	rep := &fakeReporter{}
	q := NewQueryIndicator(rep)

	q.Handle(queryEvent(events.EventQueryLoading, "home", 1, ""))
	q.Handle(queryEvent(events.EventQueryLoading, "search", 1, "blade"))
	q.Handle(queryEvent(events.EventQueryFailed, "home", 1, ""))

	if rep.finishes != 0 {
		t.Errorf("spinner finished while search still in flight")
	}
	if len(rep.descs) != 1 || !strings.Contains(rep.descs[0], `"blade"`) {
		t.Errorf("descs = %v", rep.descs)
	}

	q.Handle(queryEvent(events.EventQueryLoaded, "search", 1, "blade"))
	if rep.finishes != 1 {
		t.Errorf("finishes = %d, want 1", rep.finishes)
	}

	// A completion for a view that never started is ignored.
	q.Handle(queryEvent(events.EventQueryLoaded, "manage", 1, ""))
	if rep.finishes != 1 {
		t.Errorf("finishes = %d after stray completion, want 1", rep.finishes)
	}
}

func TestQueryIndicator_Start(t *testing.T) {
	rep := &fakeReporter{}
	q := NewQueryIndicator(rep)
	bus := events.NewEventBus(10)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	wait := q.Start(ctx, bus)
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	bus.Publish(queryEvent(events.EventQueryLoading, "home", 1, ""))
	bus.Publish(queryEvent(events.EventQueryLoaded, "home", 1, ""))

	deadline := time.After(time.Second)
	for rep.finished() < 1 {
		select {
		case <-deadline:
			t.Fatal("indicator never finished")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestCLIProgress_Error(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIProgress(&buf)
	p.Start("Loading home page 1")
	p.Error(errors.New("Failed to load movies."))

	if !strings.Contains(buf.String(), "Error: Failed to load movies.") {
		t.Errorf("output = %q", buf.String())
	}
	// Finish after Error is a no-op.
	p.Finish()
}
