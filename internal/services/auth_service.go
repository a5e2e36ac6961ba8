package services

import (
	"context"
	"strings"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/session"
)

// AuthService signs users in and out and keeps the session context current.
type AuthService struct {
	client   Authenticator
	session  session.Context
	eventBus *events.EventBus
	logger   *logging.Logger
	view     string
}

// NewAuthService creates an AuthService. eventBus may be nil.
func NewAuthService(view string, client Authenticator, sess session.Context, eventBus *events.EventBus) *AuthService {
	return &AuthService{
		client:   client,
		session:  sess,
		eventBus: eventBus,
		logger:   logging.NewNopLogger(),
		view:     view,
	}
}

// SetLogger routes auth failures to l.
func (s *AuthService) SetLogger(l *logging.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Login validates the credentials locally, then exchanges them for a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if err := catalog.ValidateLogin(email, password); err != nil {
		s.notice(events.WarnLevel, err.Error())
		return nil, err
	}

	auth, err := s.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.fail("login", MsgLoginFailed, err)
	}
	return s.signIn(auth, MsgLoggedIn), nil
}

// Signup validates the form locally, then registers and signs in.
func (s *AuthService) Signup(ctx context.Context, name, email, password, confirm string) (*session.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := catalog.ValidateSignup(name, email, password, confirm); err != nil {
		s.notice(events.WarnLevel, err.Error())
		return nil, err
	}

	auth, err := s.client.Signup(ctx, models.SignupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, s.fail("signup", MsgSignupFailed, err)
	}
	return s.signIn(auth, MsgSignedUp), nil
}

// Logout clears the session.
func (s *AuthService) Logout() {
	s.session.Clear()
	s.notice(events.InfoLevel, MsgLoggedOut)
}

func (s *AuthService) signIn(auth *models.AuthResponse, msg string) *session.Session {
	s.session.Set(session.Session{Token: auth.Token, User: auth.User})
	current, _ := s.session.Current()

	s.logger.Info().Str("email", current.User.Email).Str("role", current.User.Role).Msg("Signed in")
	s.notice(events.SuccessLevel, msg)
	return &current
}

func (s *AuthService) fail(op, fallback string, err error) *OpError {
	msg := api.ErrorMessage(err, fallback)
	s.logger.Warn().Err(err).Str("op", op).Msg("Authentication failed")
	s.notice(events.ErrorLevel, msg)
	return &OpError{Op: op, Message: msg, Err: err}
}

func (s *AuthService) notice(level events.NoticeLevel, msg string) {
	if s.eventBus != nil {
		s.eventBus.PublishNotice(level, s.view, msg)
	}
}
