// Package progress shows a terminal spinner while catalog requests are in flight.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/cineshelf/cineshelf/internal/events"
)

// Reporter reports an indeterminate activity.
type Reporter interface {
	Start(description string)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress is a spinner on stderr.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a spinner writing to out (stderr when nil).
func NewCLIProgress(out io.Writer) *CLIProgress {
	if out == nil {
		out = os.Stderr
	}
	return &CLIProgress{out: out}
}

// Start begins spinning with the given description.
func (p *CLIProgress) Start(description string) {
	if p.bar != nil {
		p.bar.Describe(description)
		return
	}
	p.bar = progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(100),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Finish stops and clears the spinner.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// Error stops the spinner and prints err.
func (p *CLIProgress) Error(err error) {
	p.Finish()
	if err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
	}
}

// SetDescription updates the spinner description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is used when output is not a terminal.
type NoOpProgress struct{}

func (NoOpProgress) Start(string)          {}
func (NoOpProgress) Finish()               {}
func (NoOpProgress) Error(error)           {}
func (NoOpProgress) SetDescription(string) {}

// New returns a spinner when stderr is a terminal and a NoOpProgress otherwise.
func New() Reporter {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return NewCLIProgress(os.Stderr)
	}
	return NoOpProgress{}
}

// QueryIndicator drives a Reporter from list query events.
type QueryIndicator struct {
	reporter Reporter

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewQueryIndicator creates an indicator around reporter.
func NewQueryIndicator(reporter Reporter) *QueryIndicator {
	if reporter == nil {
		reporter = NoOpProgress{}
	}
	return &QueryIndicator{reporter: reporter, inFlight: make(map[string]bool)}
}

// Handle applies one event.
func (q *QueryIndicator) Handle(ev events.Event) {
	qe, ok := ev.(*events.QueryEvent)
	if !ok {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	switch qe.Type() {
	case events.EventQueryLoading:
		if len(q.inFlight) == 0 {
			q.reporter.Start(describe(qe))
		} else {
			q.reporter.SetDescription(describe(qe))
		}
		q.inFlight[qe.View] = true
	case events.EventQueryLoaded, events.EventQueryFailed:
		if !q.inFlight[qe.View] {
			return
		}
		delete(q.inFlight, qe.View)
		if len(q.inFlight) == 0 {
			q.reporter.Finish()
		}
	}
}

// Active reports whether any view has a request in flight.
func (q *QueryIndicator) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inFlight) > 0
}

// Watch consumes query events until ctx is done, then finishes the reporter.
func (q *QueryIndicator) Watch(ctx context.Context, eventBus *events.EventBus) {
	q.Start(ctx, eventBus)()
}

// Start subscribes before returning and consumes events on a goroutine.
// The returned function blocks until the indicator stops.
func (q *QueryIndicator) Start(ctx context.Context, eventBus *events.EventBus) (wait func()) {
	loading := eventBus.Subscribe(events.EventQueryLoading)
	loaded := eventBus.Subscribe(events.EventQueryLoaded)
	failed := eventBus.Subscribe(events.EventQueryFailed)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			eventBus.Unsubscribe(events.EventQueryLoading, loading)
			eventBus.Unsubscribe(events.EventQueryLoaded, loaded)
			eventBus.Unsubscribe(events.EventQueryFailed, failed)
			q.reporter.Finish()
		}()

		for {
			var (
				ev events.Event
				ok bool
			)
			select {
			case <-ctx.Done():
				return
			case ev, ok = <-loading:
			case ev, ok = <-loaded:
			case ev, ok = <-failed:
			}
			if !ok {
				return
			}
			q.Handle(ev)
		}
	}()

	return func() { <-done }
}

func describe(qe *events.QueryEvent) string {
	if qe.Query != "" {
		return fmt.Sprintf("Searching %q", qe.Query)
	}
	return fmt.Sprintf("Loading %s page %d", qe.View, qe.Page)
}
