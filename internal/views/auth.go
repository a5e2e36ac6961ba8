package views

import (
	"context"
	"sync"

	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/session"
)

// Login is the sign-in form.
type Login struct {
	auth *services.AuthService

	mu       sync.Mutex
	email    string
	password string
	busy     bool
}

// NewLogin creates the Login view.
func NewLogin(auth *services.AuthService) *Login {
	return &Login{auth: auth}
}

// SetEmail sets the email field.
func (l *Login) SetEmail(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.email = email
}

// SetPassword sets the password field.
func (l *Login) SetPassword(password string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.password = password
}

// Busy reports whether a sign-in is in flight.
func (l *Login) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// Submit signs in. The password is cleared after every attempt.
func (l *Login) Submit(ctx context.Context) (*session.Session, error) {
	l.mu.Lock()
	email, password := l.email, l.password
	l.busy = true
	l.mu.Unlock()

	s, err := l.auth.Login(ctx, email, password)

	l.mu.Lock()
	l.busy = false
	l.password = ""
	l.mu.Unlock()
	return s, err
}

// Signup is the registration form.
type Signup struct {
	auth *services.AuthService

	mu       sync.Mutex
	name     string
	email    string
	password string
	confirm  string
}

// NewSignup creates the Signup view.
func NewSignup(auth *services.AuthService) *Signup {
	return &Signup{auth: auth}
}

// SetFields sets every form field at once.
func (s *Signup) SetFields(name, email, password, confirm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.email, s.password, s.confirm = name, email, password, confirm
}

// Submit registers and signs in.
func (s *Signup) Submit(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	name, email, password, confirm := s.name, s.email, s.password, s.confirm
	s.mu.Unlock()

	sess, err := s.auth.Signup(ctx, name, email, password, confirm)
	if err == nil {
		s.SetFields("", "", "", "")
	}
	return sess, err
}
