package mockserver

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/models"
)

var (
	errNotFound      = errors.New("movie not found")
	errEmailTaken    = errors.New("email already registered")
	errBadCredential = errors.New("invalid email or password")
)

type account struct {
	user         models.User
	passwordHash []byte
}

// Store is the in-memory catalog behind the mock API.
type Store struct {
	mu     sync.RWMutex
	movies []models.Movie
	users  map[string]*account // by lower-case email
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{users: make(map[string]*account)}
}

// newID returns a 24-character hex id in the shape of the real backend's ids.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func slicePage(all []models.Movie, page, limit int) models.PageResult {
	page, limit = clampPage(page, limit)
	items := []models.Movie{}
	if page-1 < (len(all)+limit-1)/limit {
		start := (page - 1) * limit
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		items = append(items, all[start:end]...)
	}
	return models.PageResult{Items: items, Total: len(all), Page: page, Limit: limit}
}

// List returns one page ordered by spec.
func (s *Store) List(spec models.SortSpec, page, limit int) models.PageResult {
	s.mu.RLock()
	sorted := catalog.SortMovies(s.movies, spec)
	s.mu.RUnlock()
	return slicePage(sorted, page, limit)
}

// Search returns one page of movies whose title or description contains q,
// case-insensitively, in insertion order. An empty q matches everything.
func (s *Store) Search(q string, page, limit int) models.PageResult {
	q = strings.ToLower(strings.TrimSpace(q))

	s.mu.RLock()
	matches := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		if q == "" ||
			strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.Description), q) {
			matches = append(matches, m)
		}
	}
	s.mu.RUnlock()

	return slicePage(matches, page, limit)
}

// Get returns the movie with id.
func (s *Store) Get(id string) (models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.movies[i], nil
	}
	return models.Movie{}, errNotFound
}

// Create adds m with a fresh id.
func (s *Store) Create(m models.Movie) models.Movie {
	m.ID = newID()
	s.mu.Lock()
	s.movies = append(s.movies, m)
	s.mu.Unlock()
	return m
}

// Update overwrites every field of the movie with id.
func (s *Store) Update(id string, m models.Movie) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Movie{}, errNotFound
	}
	m.ID = id
	s.movies[i] = m
	return m, nil
}

// Delete removes the movie with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return errNotFound
	}
	s.movies = append(s.movies[:i], s.movies[i+1:]...)
	return nil
}

// Len returns the number of movies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

func (s *Store) indexOf(id string) int {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return i
		}
	}
	return -1
}

// AddUser registers an account. The password is stored as a bcrypt hash.
func (s *Store) AddUser(name, email, password, role string) (models.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[key]; exists {
		return models.User{}, errEmailTaken
	}
	u := models.User{ID: newID(), Name: name, Email: strings.TrimSpace(email), Role: role}
	s.users[key] = &account{user: u, passwordHash: hash}
	return u, nil
}

// Authenticate checks a password against the stored hash.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	acct, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, errBadCredential
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return models.User{}, errBadCredential
	}
	return acct.user, nil
}
