package state

import (
	"context"
	"errors"
	"sync"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
)

// Fetcher loads one page for the given parameters.
type Fetcher func(ctx context.Context, p Params) (*models.PageResult, error)

// ListQuery runs page fetches for one view and holds the outcome.
//
// Every Run is tagged with a sequence number. Starting a new Run cancels the
// previous in-flight request, and only the latest request may write state;
// older results come back as ErrStale.
// Thread-safe for concurrent access.
type ListQuery struct {
	view     string
	fallback string
	fetch    Fetcher
	eventBus *events.EventBus

	mu        sync.RWMutex
	seq       uint64
	cancel    context.CancelFunc
	params    Params
	result    *models.PageResult
	loading   bool
	loadedOK  bool
	attempted bool
	errMsg    string
}

// NewListQuery creates a ListQuery. fallback is the message shown when a
// failure carries no server message. eventBus may be nil.
func NewListQuery(view, fallback string, fetch Fetcher, eventBus *events.EventBus) *ListQuery {
	return &ListQuery{
		view:     view,
		fallback: fallback,
		fetch:    fetch,
		eventBus: eventBus,
	}
}

// Run fetches one page. On success the result replaces the held data and
// the error is cleared. On failure the held data is kept and the error
// message is recorded.
func (q *ListQuery) Run(ctx context.Context, p Params) (*models.PageResult, error) {
	p = p.normalized()

	q.mu.Lock()
	if q.cancel != nil {
		q.cancel()
	}
	q.seq++
	seq := q.seq
	reqCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.params = p
	q.loading = true
	q.mu.Unlock()

	q.publish(newQueryEvent(events.EventQueryLoading, q.view, seq, p))

	result, err := q.fetch(reqCtx, p)
	cancel()

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		return nil, ErrStale
	}
	q.cancel = nil
	q.loading = false

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// Caller tore the view down; no message to show.
			q.mu.Unlock()
			return nil, err
		}
		q.attempted = true
		q.loadedOK = false
		q.errMsg = api.ErrorMessage(err, q.fallback)
		msg := q.errMsg
		q.mu.Unlock()

		ev := newQueryEvent(events.EventQueryFailed, q.view, seq, p)
		ev.Message = msg
		q.publish(ev)
		return nil, err
	}

	if result == nil {
		result = &models.PageResult{}
	}
	if result.Items == nil {
		result.Items = []models.Movie{}
	}
	if result.Page <= 0 {
		result.Page = p.Page
	}
	if result.Limit <= 0 {
		result.Limit = p.Limit
	}

	q.attempted = true
	q.loadedOK = true
	q.errMsg = ""
	q.result = result
	q.mu.Unlock()

	ev := newQueryEvent(events.EventQueryLoaded, q.view, seq, p)
	ev.Page = result.Page
	ev.Total = result.Total
	ev.Count = len(result.Items)
	q.publish(ev)

	return result, nil
}

// Refresh re-runs the last parameters.
func (q *ListQuery) Refresh(ctx context.Context) (*models.PageResult, error) {
	return q.Run(ctx, q.Params())
}

// Cancel aborts the in-flight request, if any, and clears loading.
// The aborted request's result is discarded.
func (q *ListQuery) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.seq++
	q.loading = false
}

// Params returns the parameters of the latest request.
func (q *ListQuery) Params() Params {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.params
}

// Result returns the last successfully loaded page, or nil.
func (q *ListQuery) Result() *models.PageResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.result == nil {
		return nil
	}
	copied := *q.result
	copied.Items = append([]models.Movie(nil), q.result.Items...)
	return &copied
}

// IsLoading returns whether a request is in flight.
func (q *ListQuery) IsLoading() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.loading
}

// Snapshot returns a copy of the current state.
func (q *ListQuery) Snapshot() Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	s := Snapshot{
		View:      q.view,
		Params:    q.params,
		Loading:   q.loading,
		LoadedOK:  q.loadedOK,
		Error:     q.errMsg,
		Seq:       q.seq,
		attempted: q.attempted,
		hasData:   q.result != nil,
		Items:     []models.Movie{},
	}
	if q.result != nil {
		s.Items = append(s.Items, q.result.Items...)
		s.Total = q.result.Total
		s.Page = q.result.Page
		s.Limit = q.result.Limit
	} else {
		s.Page = q.params.Page
		s.Limit = q.params.Limit
	}
	return s
}

func (q *ListQuery) publish(ev events.Event) {
	if q.eventBus != nil {
		q.eventBus.Publish(ev)
	}
}
