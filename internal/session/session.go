// Package session holds the signed-in user and derives what they may do.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/models"
)

// Session is a signed-in user and their bearer token.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Capabilities is what the current session may do.
type Capabilities struct {
	CanManageMovies bool
}

// CapabilitiesFor derives the capability set of a session.
func CapabilitiesFor(s *Session) Capabilities {
	if s == nil {
		return Capabilities{}
	}
	return Capabilities{CanManageMovies: s.User.IsAdmin()}
}

// Context is the read/write view of the session that views depend on.
type Context interface {
	Current() (Session, bool)
	Capabilities() Capabilities
	Set(s Session)
	Clear()
}

// Store persists a session between process runs.
type Store interface {
	Load() (*Session, error)
	Save(s Session) error
	Clear() error
}

// Manager is the process-wide session holder. It starts signed out.
// Thread-safe for concurrent access.
type Manager struct {
	eventBus *events.EventBus
	store    Store
	logger   *logging.Logger
	now      func() time.Time

	mu        sync.RWMutex
	current   *Session
	caps      Capabilities
	listeners []func(Capabilities)
}

// NewManager creates a signed-out Manager. eventBus may be nil.
func NewManager(eventBus *events.EventBus) *Manager {
	return &Manager{
		eventBus: eventBus,
		logger:   logging.NewNopLogger(),
		now:      time.Now,
	}
}

// SetLogger routes persistence warnings to l.
func (m *Manager) SetLogger(l *logging.Logger) {
	if l != nil {
		m.logger = l
	}
}

// SetStore makes Set and Clear persist through store.
func (m *Manager) SetStore(store Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
}

// Load restores a persisted session. An expired token is discarded and
// removed from the store.
func (m *Manager) Load() error {
	m.mu.RLock()
	store := m.store
	m.mu.RUnlock()

	if store == nil {
		return nil
	}

	s, err := store.Load()
	if err != nil {
		return err
	}
	if s == nil || s.Token == "" {
		return nil
	}
	if expired(s.Token, m.now()) {
		return store.Clear()
	}

	m.apply(s)
	return nil
}

// Current returns the session and whether one is set.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Capabilities returns the capability set computed at the last change.
func (m *Manager) Capabilities() Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caps
}

// OnChange registers fn to run after every Set and Clear.
func (m *Manager) OnChange(fn func(Capabilities)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Set signs in. A missing role is read from the token's role claim.
func (m *Manager) Set(s Session) {
	if s.User.Role == "" {
		if claims, err := ParseClaims(s.Token); err == nil {
			s.User.Role = claims.Role
			if s.User.Email == "" {
				s.User.Email = claims.Email
			}
			if s.User.Name == "" {
				s.User.Name = claims.Name
			}
		}
	}
	if s.User.Role == "" {
		s.User.Role = constants.RoleUser
	}
	s.User.Role = strings.ToLower(s.User.Role)

	m.apply(&s)

	if store := m.getStore(); store != nil {
		if err := store.Save(s); err != nil {
			m.logger.Warn().Err(err).Msg("Session not saved; you will need to sign in again next time")
		}
	}
}

// Clear signs out.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.current = nil
	m.caps = Capabilities{}
	listeners := append([]func(Capabilities){}, m.listeners...)
	store := m.store
	m.mu.Unlock()

	if store != nil {
		if err := store.Clear(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to remove saved session")
		}
	}
	if m.eventBus != nil {
		m.eventBus.PublishSession(false, "", "", "")
	}
	for _, fn := range listeners {
		fn(Capabilities{})
	}
}

func (m *Manager) apply(s *Session) {
	m.mu.Lock()
	copied := *s
	m.current = &copied
	m.caps = CapabilitiesFor(&copied)
	caps := m.caps
	listeners := append([]func(Capabilities){}, m.listeners...)
	m.mu.Unlock()

	if m.eventBus != nil {
		m.eventBus.PublishSession(true, copied.User.Name, copied.User.Email, copied.User.Role)
	}
	for _, fn := range listeners {
		fn(caps)
	}
}

func (m *Manager) getStore() Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}
