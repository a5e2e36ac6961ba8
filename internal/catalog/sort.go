package catalog

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cineshelf/cineshelf/internal/models"
)

// SortMovies returns a sorted copy of movies. The input is not modified.
//
// rating and durationMinutes compare numerically, with missing values as 0.
// releaseDate compares chronologically, with a missing date as the Unix epoch.
// Anything else sorts by title using English collation. Ties keep their
// original relative order.
func SortMovies(movies []models.Movie, spec models.SortSpec) []models.Movie {
	out := make([]models.Movie, len(movies))
	copy(out, movies)

	dir := 1
	if spec.Order == models.Descending {
		dir = -1
	}

	var cmp func(a, b *models.Movie) int
	switch spec.By {
	case models.SortByRating:
		cmp = func(a, b *models.Movie) int { return compareFloat(a.Rating, b.Rating) }
	case models.SortByDurationMinutes:
		cmp = func(a, b *models.Movie) int { return compareInt(a.DurationMinutes, b.DurationMinutes) }
	case models.SortByReleaseDate:
		cmp = func(a, b *models.Movie) int { return releaseTime(a).Compare(releaseTime(b)) }
	default:
		// collate.Collator is not safe for concurrent use
		col := collate.New(language.English)
		cmp = func(a, b *models.Movie) int { return col.CompareString(a.Title, b.Title) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		return dir*cmp(&out[i], &out[j]) < 0
	})
	return out
}

var epoch = time.Unix(0, 0).UTC()

func releaseTime(m *models.Movie) time.Time {
	if m.ReleaseDate == nil || m.ReleaseDate.IsZero() {
		return epoch
	}
	return m.ReleaseDate.Time
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
