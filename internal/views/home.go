package views

import (
	"context"
	"sync"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/state"
)

// Home is the server-sorted catalog listing.
type Home struct {
	query *state.ListQuery
	limit int

	mu   sync.Mutex
	sort models.SortSpec
}

// NewHome creates the Home view. eventBus may be nil.
func NewHome(client Catalog, limit int, eventBus *events.EventBus) *Home {
	h := &Home{limit: limit, sort: models.DefaultSort()}
	h.query = state.NewListQuery(ViewHome, MsgLoadFailed, func(ctx context.Context, p state.Params) (*models.PageResult, error) {
		return client.ListSorted(ctx, p.Page, p.Limit, p.Sort)
	}, eventBus)
	return h
}

// Mount resets the sort to its default and loads page 1.
func (h *Home) Mount(ctx context.Context) error {
	h.mu.Lock()
	h.sort = models.DefaultSort()
	h.mu.Unlock()
	return h.load(ctx, 1)
}

// Unmount abandons any in-flight load.
func (h *Home) Unmount() {
	h.query.Cancel()
}

// Sort returns the active sort.
func (h *Home) Sort() models.SortSpec {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sort
}

// SetSort changes the server-side ordering and reloads page 1.
func (h *Home) SetSort(ctx context.Context, spec models.SortSpec) error {
	h.mu.Lock()
	h.sort = spec
	h.mu.Unlock()
	return h.load(ctx, 1)
}

// GoToPage loads page, clamped into the known page range.
func (h *Home) GoToPage(ctx context.Context, page int) error {
	return h.load(ctx, catalog.ClampPage(page, h.TotalPages()))
}

// Refresh reloads the current page.
func (h *Home) Refresh(ctx context.Context) error {
	return ignoreStale(h.query.Refresh(ctx))
}

// Snapshot returns the list state.
func (h *Home) Snapshot() state.Snapshot {
	return h.query.Snapshot()
}

// TotalPages derives the page count of the last successful load.
func (h *Home) TotalPages() int {
	s := h.query.Snapshot()
	return catalog.TotalPages(s.Total, s.Limit)
}

// ShowSkeleton is true only while the very first load is in flight.
func (h *Home) ShowSkeleton() bool {
	return h.query.Snapshot().Phase() == state.PhaseLoading
}

// ShowPagination is true after a successful load with more than one page.
func (h *Home) ShowPagination() bool {
	s := h.query.Snapshot()
	return s.LoadedOK && catalog.ShowPagination(catalog.TotalPages(s.Total, s.Limit))
}

func (h *Home) load(ctx context.Context, page int) error {
	p := state.Params{Page: page, Limit: h.limit, Sort: h.Sort()}
	return ignoreStale(h.query.Run(ctx, p))
}
