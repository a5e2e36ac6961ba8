package views

import (
	"context"
	"sync"
	"time"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/session"
	"github.com/cineshelf/cineshelf/internal/state"
)

// ManageClient reads and writes the catalog. *api.Client satisfies it.
type ManageClient interface {
	Catalog
	services.MovieWriter
}

// Manage is the admin table with a debounced filter, edit and delete.
type Manage struct {
	sess      session.Context
	query     *state.ListQuery
	debouncer *state.Debouncer
	manager   *services.MovieManager
	limit     int

	mu     sync.Mutex
	filter string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManage creates the Manage view. eventBus may be nil.
func NewManage(client ManageClient, sess session.Context, limit int, window time.Duration, eventBus *events.EventBus) *Manage {
	m := &Manage{
		sess:   sess,
		limit:  limit,
		ctx:    context.Background(),
		cancel: func() {},
	}
	m.query = state.NewListQuery(ViewManage, MsgLoadFailed, func(ctx context.Context, p state.Params) (*models.PageResult, error) {
		return client.Search(ctx, p.Query, p.Page, p.Limit)
	}, eventBus)
	m.debouncer = state.NewDebouncer(window, m.fire)
	m.manager = services.NewMovieManager(ViewManage, client, m.query, eventBus)
	return m
}

// Debouncer exposes the filter debouncer so callers can swap its scheduler.
func (m *Manage) Debouncer() *state.Debouncer {
	return m.debouncer
}

// Manager returns the edit/delete controller bound to this view's list.
func (m *Manage) Manager() *services.MovieManager {
	return m.manager
}

// Mount checks the capability and loads page 1 with the current filter.
func (m *Manage) Mount(ctx context.Context) error {
	return m.MountAt(ctx, 1, m.Filter())
}

// MountAt is Mount seeded with a filter and page, loaded in one query.
// A page past the end is retried once at the last page.
func (m *Manage) MountAt(ctx context.Context, page int, filter string) error {
	if err := requireAdmin(m.sess); err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}

	m.mu.Lock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.filter = filter
	m.mu.Unlock()

	if err := m.load(ctx, page, filter); err != nil {
		return err
	}
	if last := m.TotalPages(); last > 0 && page > last {
		return m.GoToPage(ctx, page)
	}
	return nil
}

// Unmount stops the debouncer and cancels in-flight work.
func (m *Manage) Unmount() {
	m.debouncer.Stop()
	m.query.Cancel()

	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()
}

// Filter returns the current filter text.
func (m *Manage) Filter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// SetFilter records typed text. After the debounce window page 1 is reloaded.
func (m *Manage) SetFilter(text string) {
	m.mu.Lock()
	m.filter = text
	m.mu.Unlock()
	m.debouncer.Change(text)
}

// GoToPage loads page, clamped into the known range.
func (m *Manage) GoToPage(ctx context.Context, page int) error {
	if err := requireAdmin(m.sess); err != nil {
		return err
	}
	return m.load(ctx, catalog.ClampPage(page, m.TotalPages()), m.Filter())
}

// Refresh reloads the current page.
func (m *Manage) Refresh(ctx context.Context) error {
	return ignoreStale(m.query.Refresh(ctx))
}

// Find returns the movie with id from the loaded page.
func (m *Manage) Find(id string) (models.Movie, bool) {
	for _, movie := range m.query.Snapshot().Items {
		if movie.ID == id {
			return movie, true
		}
	}
	return models.Movie{}, false
}

// Snapshot returns the list state.
func (m *Manage) Snapshot() state.Snapshot {
	return m.query.Snapshot()
}

// TotalPages derives the page count of the last successful load.
func (m *Manage) TotalPages() int {
	s := m.query.Snapshot()
	return catalog.TotalPages(s.Total, s.Limit)
}

// ShowPagination is true when the table spans more than one page.
func (m *Manage) ShowPagination() bool {
	return catalog.ShowPagination(m.TotalPages())
}

// SaveEdit saves the open edit session after re-checking the capability.
func (m *Manage) SaveEdit(ctx context.Context) (*models.Movie, error) {
	if err := requireAdmin(m.sess); err != nil {
		return nil, err
	}
	return m.manager.SaveEdit(ctx)
}

// ConfirmDelete deletes the pending movie after re-checking the capability.
func (m *Manage) ConfirmDelete(ctx context.Context) error {
	if err := requireAdmin(m.sess); err != nil {
		return err
	}
	return m.manager.ConfirmDelete(ctx)
}

func (m *Manage) fire(text string) {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	m.load(ctx, 1, text)
}

func (m *Manage) load(ctx context.Context, page int, filter string) error {
	p := state.Params{Page: page, Limit: m.limit, Query: filter}
	return ignoreStale(m.query.Run(ctx, p))
}
