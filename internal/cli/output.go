package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/state"
	strutil "github.com/cineshelf/cineshelf/internal/util/strings"
)

// reportedError is a failure whose message already went out as a notice.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown to the user as a notice.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// serviceFailure marks service errors, which publish their own notice.
func serviceFailure(err error) error {
	var op *services.OpError
	if errors.As(err, &op) || catalog.IsValidation(err) {
		return &reportedError{err: err}
	}
	return err
}

// loadFailure turns a failed list load into the message the view recorded.
func loadFailure(snap state.Snapshot, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || snap.Error == "" {
		return err
	}
	return errors.New(snap.Error)
}

// pageJSON is the --json shape of a list page.
type pageJSON struct {
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Items      []models.Movie `json:"items"`
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// printPage renders a page of movies as a table with a pagination footer.
func printPage(w io.Writer, items []models.Movie, snap state.Snapshot, asJSON bool) error {
	totalPages := catalog.TotalPages(snap.Total, snap.Limit)

	if asJSON {
		return writeJSON(w, pageJSON{
			Page:       snap.Page,
			Limit:      snap.Limit,
			Total:      snap.Total,
			TotalPages: totalPages,
			Items:      items,
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "No movies found")
		return nil
	}

	fmt.Fprintf(w, "%-24s %-40s %6s %-10s %5s %5s\n", "ID", "TITLE", "RATING", "RELEASED", "MIN", "RANK")
	fmt.Fprintln(w, strings.Repeat("-", 95))
	for _, m := range items {
		fmt.Fprintf(w, "%-24s %-40s %6.1f %-10s %5s %5s\n",
			m.ID, truncate(m.Title, 40), m.Rating, m.ReleaseDate.String(),
			blankZero(m.DurationMinutes), blankZero(m.IMDbRank))
	}

	if catalog.ShowPagination(totalPages) {
		fmt.Fprintf(w, "\nPage %d of %d (%s)\n", snap.Page, totalPages, strutil.Count(snap.Total, "movie"))
	}
	return nil
}

func printMovie(w io.Writer, m *models.Movie) {
	fmt.Fprintf(w, "ID:          %s\n", m.ID)
	fmt.Fprintf(w, "Title:       %s\n", m.Title)
	fmt.Fprintf(w, "Rating:      %.1f\n", m.Rating)
	if s := m.ReleaseDate.String(); s != "" {
		fmt.Fprintf(w, "Released:    %s\n", s)
	}
	if m.DurationMinutes > 0 {
		fmt.Fprintf(w, "Duration:    %d min\n", m.DurationMinutes)
	}
	if m.IMDbRank > 0 {
		fmt.Fprintf(w, "IMDb rank:   %d\n", m.IMDbRank)
	}
	if m.PosterURL != "" {
		fmt.Fprintf(w, "Poster:      %s\n", m.PosterURL)
	}
	if m.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", m.Description)
	}
}

func blankZero(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
