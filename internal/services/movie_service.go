package services

import (
	"context"
	"errors"
	"sync"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/state"
)

// MovieManager performs admin writes and then re-runs the bound list query.
//
// Each write makes exactly one API call and, when a list is bound, exactly
// one re-query of the current page. A delete additionally steps back a page
// when it removed the last row of a trailing page.
type MovieManager struct {
	client   MovieWriter
	list     *state.ListQuery
	eventBus *events.EventBus
	logger   *logging.Logger
	view     string

	mu            sync.Mutex
	editing       *models.Movie
	editForm      catalog.MovieForm
	editErr       string
	pendingDelete *models.Movie
	busy          bool
}

// NewMovieManager creates a MovieManager. list and eventBus may be nil.
func NewMovieManager(view string, client MovieWriter, list *state.ListQuery, eventBus *events.EventBus) *MovieManager {
	return &MovieManager{
		client:   client,
		list:     list,
		eventBus: eventBus,
		logger:   logging.NewNopLogger(),
		view:     view,
	}
}

// SetLogger routes write failures to l.
func (m *MovieManager) SetLogger(l *logging.Logger) {
	if l != nil {
		m.logger = l
	}
}

// Busy reports whether a write is in flight.
func (m *MovieManager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Create validates form, posts it, and refreshes the list.
// On success form is reset to its defaults. On failure form is left as typed.
func (m *MovieManager) Create(ctx context.Context, form *catalog.MovieForm) (*models.Movie, error) {
	input, err := form.Coerce()
	if err != nil {
		m.notice(events.WarnLevel, err.Error())
		return nil, err
	}

	m.setBusy(true)
	created, err := m.client.CreateMovie(ctx, input)
	m.setBusy(false)
	if err != nil {
		return nil, m.fail("create", MsgAddFailed, err)
	}

	form.Reset()
	m.logger.Info().Str("id", created.ID).Str("title", created.Title).Msg("Movie created")
	m.notice(events.SuccessLevel, MsgMovieAdded)
	m.refresh(ctx, 0)
	return created, nil
}

// BeginEdit opens an edit session prefilled from movie.
func (m *MovieManager) BeginEdit(movie models.Movie) catalog.MovieForm {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := movie
	m.editing = &copied
	m.editForm = catalog.FormFromMovie(movie)
	m.editErr = ""
	return m.editForm
}

// Editing returns the movie being edited, if any.
func (m *MovieManager) Editing() (models.Movie, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editing == nil {
		return models.Movie{}, false
	}
	return *m.editing, true
}

// EditForm returns the current edit form.
func (m *MovieManager) EditForm() catalog.MovieForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editForm
}

// SetEditField changes one field of the open edit form.
func (m *MovieManager) SetEditField(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editing == nil {
		return ErrNoEditSession
	}
	return m.editForm.Set(field, value)
}

// EditError is the inline error of the open edit session.
func (m *MovieManager) EditError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editErr
}

// SaveEdit sends every field of the edit form with one PUT. On success the
// session closes and the current page is re-queried. On failure the session
// stays open with an inline error.
func (m *MovieManager) SaveEdit(ctx context.Context) (*models.Movie, error) {
	m.mu.Lock()
	if m.editing == nil {
		m.mu.Unlock()
		return nil, ErrNoEditSession
	}
	id := m.editing.ID
	form := m.editForm
	m.mu.Unlock()

	input, err := form.Coerce()
	if err != nil {
		m.setEditErr(err.Error())
		m.notice(events.WarnLevel, err.Error())
		return nil, err
	}

	m.setBusy(true)
	updated, err := m.client.UpdateMovie(ctx, id, input)
	m.setBusy(false)
	if err != nil {
		opErr := m.fail("update", MsgUpdateFailed, err)
		m.setEditErr(opErr.Error())
		return nil, opErr
	}

	m.CancelEdit()
	m.logger.Info().Str("id", id).Msg("Movie updated")
	m.notice(events.SuccessLevel, MsgMovieUpdated)
	m.refresh(ctx, 0)
	return updated, nil
}

// CancelEdit closes the edit session without writing.
func (m *MovieManager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editing = nil
	m.editForm = catalog.MovieForm{}
	m.editErr = ""
}

// RequestDelete asks for confirmation before deleting movie. Nothing is sent yet.
func (m *MovieManager) RequestDelete(movie models.Movie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := movie
	m.pendingDelete = &copied
}

// PendingDelete returns the movie awaiting confirmation, if any.
func (m *MovieManager) PendingDelete() (models.Movie, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pendingDelete == nil {
		return models.Movie{}, false
	}
	return *m.pendingDelete, true
}

// CancelDelete drops the pending delete.
func (m *MovieManager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = nil
}

// ConfirmDelete deletes the pending movie, then re-queries. When the deleted
// row was the only one on a page after the first, the previous page is loaded.
// A failed delete keeps the confirmation pending.
func (m *MovieManager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.pendingDelete == nil {
		m.mu.Unlock()
		return ErrNoPendingDelete
	}
	target := *m.pendingDelete
	m.mu.Unlock()

	m.setBusy(true)
	err := m.client.DeleteMovie(ctx, target.ID)
	m.setBusy(false)
	if err != nil {
		return m.fail("delete", MsgDeleteFailed, err)
	}

	m.CancelDelete()
	m.logger.Info().Str("id", target.ID).Str("title", target.Title).Msg("Movie deleted")
	m.notice(events.SuccessLevel, MsgMovieDeleted)

	if m.list != nil {
		p := m.list.Params()
		itemsOnPage := 0
		if loaded := m.list.Result(); loaded != nil {
			itemsOnPage = len(loaded.Items)
		}
		m.refresh(ctx, catalog.PageAfterDelete(p.Page, itemsOnPage))
	}
	return nil
}

// refresh re-runs the bound list. page 0 keeps the current page.
func (m *MovieManager) refresh(ctx context.Context, page int) {
	if m.list == nil {
		return
	}
	p := m.list.Params()
	if page > 0 {
		p.Page = page
	}
	if _, err := m.list.Run(ctx, p); err != nil && !errors.Is(err, state.ErrStale) {
		m.logger.Debug().Err(err).Msg("Refresh after write failed")
	}
}

func (m *MovieManager) fail(op, fallback string, err error) *OpError {
	msg := api.ErrorMessage(err, fallback)
	m.logger.Error().Err(err).Str("op", op).Msg("Movie " + op + " failed")
	m.notice(events.ErrorLevel, msg)
	return &OpError{Op: op, Message: msg, Err: err}
}

func (m *MovieManager) notice(level events.NoticeLevel, msg string) {
	if m.eventBus != nil {
		m.eventBus.PublishNotice(level, m.view, msg)
	}
}

func (m *MovieManager) setBusy(busy bool) {
	m.mu.Lock()
	m.busy = busy
	m.mu.Unlock()
}

func (m *MovieManager) setEditErr(msg string) {
	m.mu.Lock()
	m.editErr = msg
	m.mu.Unlock()
}
