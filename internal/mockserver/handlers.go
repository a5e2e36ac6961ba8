package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/session"
	"github.com/cineshelf/cineshelf/internal/util/sanitize"
)

const maxRequestBody = 1 << 20 // 1 MiB

type ctxKey int

const claimsKey ctxKey = iota

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorBody{Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value", name)
	}
	return n, nil
}

func pageParams(r *http.Request) (int, int, error) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intParam(r, "limit", constants.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// requireAdmin rejects requests without a valid admin token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := s.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.Role != constants.RoleAdmin {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(claimsKey).(*session.Claims)
	return c
}

func (s *Server) handleListSorted(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	spec := models.DefaultSort()
	if by := r.URL.Query().Get("by"); by != "" {
		if spec.By, err = models.ParseSortField(by); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if order := r.URL.Query().Get("order"); order != "" {
		if spec.Order, err = models.ParseSortOrder(order); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	respondJSON(w, http.StatusOK, s.store.List(spec, page, limit))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.store.Search(r.URL.Query().Get("q"), page, limit))
}

// movieFromInput validates a create/update payload.
func movieFromInput(in models.MovieInput) (models.Movie, error) {
	m := models.Movie{
		Title:       sanitize.Line(in.Title),
		Description: sanitize.Text(in.Description),
		Rating:      in.Rating,
		PosterURL:   in.PosterURL,
		IMDbRank:    in.IMDbRank,
	}
	if m.Title == "" {
		return m, errors.New("Title is required")
	}
	if m.Rating < 0 || m.Rating > constants.MaxRating {
		return m, errors.New("Rating must be between 0 and 10")
	}
	if m.IMDbRank < 0 {
		return m, errors.New("IMDb rank must not be negative")
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes < 0 {
			return m, errors.New("Duration must not be negative")
		}
		m.DurationMinutes = *in.DurationMinutes
	}
	if in.ReleaseDate != "" {
		d, err := models.ParseDate(in.ReleaseDate)
		if err != nil {
			return m, errors.New("Release date must be YYYY-MM-DD")
		}
		m.ReleaseDate = d
	}
	return m, nil
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var in models.MovieInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := movieFromInput(in)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created := s.store.Create(m)
	s.logger.Debug().Str("id", created.ID).Str("by", claimsFrom(r.Context()).Email).Msg("movie created")
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.MovieInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := movieFromInput(in)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.Update(id, m)
	if errors.Is(err, errNotFound) {
		respondError(w, http.StatusNotFound, "Movie not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); errors.Is(err, errNotFound) {
		respondError(w, http.StatusNotFound, "Movie not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Movie deleted"})
}

func (s *Server) authResponse(w http.ResponseWriter, status int, u models.User) {
	token, err := s.tokens.Sign(u)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	respondJSON(w, status, models.AuthResponse{Token: token, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.authResponse(w, http.StatusOK, u)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	if len(req.Password) < constants.MinPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	u, err := s.store.AddUser(strings.TrimSpace(req.Name), req.Email, req.Password, constants.RoleUser)
	if errors.Is(err, errEmailTaken) {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create user")
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	s.authResponse(w, http.StatusCreated, u)
}
