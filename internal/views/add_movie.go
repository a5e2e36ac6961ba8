package views

import (
	"context"
	"sync"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/session"
)

// AddMovie is the admin create form.
type AddMovie struct {
	sess    session.Context
	manager *services.MovieManager

	mu   sync.Mutex
	form catalog.MovieForm
}

// NewAddMovie creates the AddMovie view. eventBus may be nil.
func NewAddMovie(client services.MovieWriter, sess session.Context, eventBus *events.EventBus) *AddMovie {
	return &AddMovie{
		sess:    sess,
		manager: services.NewMovieManager(ViewAdd, client, nil, eventBus),
		form:    catalog.DefaultMovieForm(),
	}
}

// SetLogger routes service logging to l.
func (a *AddMovie) SetLogger(l *logging.Logger) {
	a.manager.SetLogger(l)
}

// Mount checks the capability and resets the form.
func (a *AddMovie) Mount() error {
	if err := requireAdmin(a.sess); err != nil {
		return err
	}
	a.mu.Lock()
	a.form.Reset()
	a.mu.Unlock()
	return nil
}

// Form returns the form as typed.
func (a *AddMovie) Form() catalog.MovieForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form
}

// Set changes one form field.
func (a *AddMovie) Set(field, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form.Set(field, value)
}

// Submit validates and creates the movie. The form resets only on success.
func (a *AddMovie) Submit(ctx context.Context) (*models.Movie, error) {
	if err := requireAdmin(a.sess); err != nil {
		return nil, err
	}

	a.mu.Lock()
	form := a.form
	a.mu.Unlock()

	created, err := a.manager.Create(ctx, &form)

	a.mu.Lock()
	a.form = form
	a.mu.Unlock()
	return created, err
}
