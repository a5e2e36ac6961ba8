// Package services provides frontend-agnostic catalog operations.
// Services publish notices on the event bus and never touch a UI directly.
package services

import (
	"context"
	"errors"

	"github.com/cineshelf/cineshelf/internal/models"
)

// Notice texts shown after catalog mutations.
const (
	MsgMovieAdded     = "Movie added!"
	MsgAddFailed      = "Failed to add movie"
	MsgMovieUpdated   = "Movie updated."
	MsgUpdateFailed   = "Update failed."
	MsgMovieDeleted   = "Movie deleted."
	MsgDeleteFailed   = "Delete failed."
	MsgLoggedIn       = "Logged in successfully"
	MsgLoginFailed    = "Login failed"
	MsgSignedUp       = "Account created successfully"
	MsgSignupFailed   = "Signup failed"
	MsgLoggedOut      = "Logged out"
	MsgNotPermitted   = "Admin access required"
	MsgNoMovieOnPage  = "Movie is not on the loaded page"
	MsgEditNotStarted = "No movie is being edited"
)

var (
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	// ErrNoEditSession is returned by SaveEdit without a prior BeginEdit.
	ErrNoEditSession = errors.New(MsgEditNotStarted)
)

// MovieWriter performs catalog writes. *api.Client satisfies it.
type MovieWriter interface {
	CreateMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id string, input models.MovieInput) (*models.Movie, error)
	DeleteMovie(ctx context.Context, id string) error
}

// Authenticator exchanges credentials for a session. *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
}

// OpError is a failed operation with the message shown to the user.
// The cause stays reachable through errors.As and errors.Is.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }
