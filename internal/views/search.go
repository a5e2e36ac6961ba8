package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/state"
)

// Search is the debounced free-text search. Results are ordered client-side.
type Search struct {
	query     *state.ListQuery
	debouncer *state.Debouncer
	limit     int

	mu     sync.Mutex
	text   string
	sort   models.SortSpec
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSearch creates the Search view. eventBus may be nil.
func NewSearch(client Catalog, limit int, window time.Duration, eventBus *events.EventBus) *Search {
	s := &Search{
		limit:  limit,
		sort:   models.DefaultSort(),
		ctx:    context.Background(),
		cancel: func() {},
	}
	s.query = state.NewListQuery(ViewSearch, MsgSearchFailed, func(ctx context.Context, p state.Params) (*models.PageResult, error) {
		return client.Search(ctx, p.Query, p.Page, p.Limit)
	}, eventBus)
	s.debouncer = state.NewDebouncer(window, s.fire)
	return s
}

// Debouncer exposes the filter debouncer so callers can swap its scheduler.
func (s *Search) Debouncer() *state.Debouncer {
	return s.debouncer
}

// Mount binds the view to ctx and schedules the first search with empty text.
func (s *Search) Mount(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.sort = models.DefaultSort()
	text := s.text
	s.mu.Unlock()

	s.debouncer.Change(text)
}

// Unmount stops the debouncer and cancels in-flight work.
func (s *Search) Unmount() {
	s.debouncer.Stop()
	s.query.Cancel()

	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}

// Text returns the current search text.
func (s *Search) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetText records typed text and restarts the debounce window.
func (s *Search) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	s.debouncer.Change(text)
}

// Submit searches the current text immediately, dropping any pending debounce.
func (s *Search) Submit() {
	s.debouncer.Submit(s.Text())
}

// Clear empties the text. The reload goes through the debounce window.
func (s *Search) Clear() {
	s.SetText("")
}

// Refresh re-runs the current page with the current text.
func (s *Search) Refresh(ctx context.Context) error {
	p := s.query.Params()
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = s.limit
	p.Query = s.Text()
	return ignoreStale(s.query.Run(ctx, p))
}

// GoToPage loads page of the current text, clamped into the known range.
func (s *Search) GoToPage(ctx context.Context, page int) error {
	p := state.Params{
		Page:  catalog.ClampPage(page, s.TotalPages()),
		Limit: s.limit,
		Query: s.Text(),
	}
	return ignoreStale(s.query.Run(ctx, p))
}

// Sort returns the client-side ordering.
func (s *Search) Sort() models.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// SetSort reorders the loaded results without a refetch.
func (s *Search) SetSort(spec models.SortSpec) {
	s.mu.Lock()
	s.sort = spec
	s.mu.Unlock()
}

// Items returns the loaded page ordered by the client-side sort.
func (s *Search) Items() []models.Movie {
	return catalog.SortMovies(s.query.Snapshot().Items, s.Sort())
}

// Snapshot returns the list state.
func (s *Search) Snapshot() state.Snapshot {
	return s.query.Snapshot()
}

// TotalPages derives the page count of the last successful load.
func (s *Search) TotalPages() int {
	snap := s.query.Snapshot()
	return catalog.TotalPages(snap.Total, snap.Limit)
}

// ShowSkeleton is true whenever a search is in flight.
func (s *Search) ShowSkeleton() bool {
	return s.query.IsLoading()
}

// ShowPagination is true when the results span more than one page.
func (s *Search) ShowPagination() bool {
	return catalog.ShowPagination(s.TotalPages())
}

// fire runs a page-1 search. It is the debouncer's callback.
func (s *Search) fire(text string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	// Failures land in the query state.
	s.query.Run(ctx, state.Params{Page: 1, Limit: s.limit, Query: text})
}

func ignoreStale(_ *models.PageResult, err error) error {
	if errors.Is(err, state.ErrStale) {
		return nil
	}
	return err
}
