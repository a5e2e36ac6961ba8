package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/util/sanitize"
)

// Form field keys, matching the JSON names of models.MovieInput.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldRating      = "rating"
	FieldReleaseDate = "releaseDate"
	FieldDuration    = "durationMinutes"
	FieldPosterURL   = "posterUrl"
	FieldIMDbRank    = "imdbRank"
)

// MovieForm holds movie fields as the user typed them.
type MovieForm struct {
	Title           string
	Description     string
	Rating          string
	ReleaseDate     string
	DurationMinutes string
	PosterURL       string
	IMDbRank        string
}

// DefaultMovieForm is the blank add form.
func DefaultMovieForm() MovieForm {
	return MovieForm{
		Rating:          strconv.Itoa(constants.DefaultRating),
		DurationMinutes: strconv.Itoa(constants.DefaultDurationMinutes),
		IMDbRank:        strconv.Itoa(constants.DefaultIMDbRank),
	}
}

// FormFromMovie prefills an edit form from a loaded record.
func FormFromMovie(m models.Movie) MovieForm {
	f := MovieForm{
		Title:       m.Title,
		Description: m.Description,
		Rating:      strconv.FormatFloat(m.Rating, 'f', -1, 64),
		ReleaseDate: m.ReleaseDate.String(),
		PosterURL:   m.PosterURL,
		IMDbRank:    strconv.Itoa(m.IMDbRank),
	}
	if m.DurationMinutes > 0 {
		f.DurationMinutes = strconv.Itoa(m.DurationMinutes)
	}
	return f
}

// Reset restores the blank add form.
func (f *MovieForm) Reset() {
	*f = DefaultMovieForm()
}

// Set assigns one field by key. Unknown keys return an error.
func (f *MovieForm) Set(field, value string) error {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldRating:
		f.Rating = value
	case FieldReleaseDate:
		f.ReleaseDate = value
	case FieldDuration:
		f.DurationMinutes = value
	case FieldPosterURL:
		f.PosterURL = value
	case FieldIMDbRank:
		f.IMDbRank = value
	default:
		return fmt.Errorf("unknown movie field %q", field)
	}
	return nil
}

// Coerce validates the form and converts it to a typed payload.
// Invalid input yields FieldErrors and no payload; nothing is ever sent as NaN.
func (f MovieForm) Coerce() (models.MovieInput, error) {
	errs := FieldErrors{}
	in := models.MovieInput{
		Title:       sanitize.Line(f.Title),
		Description: sanitize.Text(f.Description),
	}

	if in.Title == "" {
		errs[FieldTitle] = "Title is required"
	}

	if s := strings.TrimSpace(f.Rating); s != "" {
		rating, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil || math.IsNaN(rating) || math.IsInf(rating, 0):
			errs[FieldRating] = "Rating must be a number"
		case rating < 0 || rating > constants.MaxRating:
			errs[FieldRating] = "Rating must be between 0 and 10"
		default:
			in.Rating = rating
		}
	}

	if s := strings.TrimSpace(f.ReleaseDate); s != "" {
		if d, err := models.ParseDate(s); err != nil {
			errs[FieldReleaseDate] = "Release date must be YYYY-MM-DD"
		} else {
			in.ReleaseDate = d.String()
		}
	}

	if s := strings.TrimSpace(f.DurationMinutes); s != "" {
		d, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs[FieldDuration] = "Duration must be a whole number of minutes"
		case d <= 0:
			errs[FieldDuration] = "Duration must be greater than 0"
		default:
			in.DurationMinutes = &d
		}
	}

	if s := strings.TrimSpace(f.IMDbRank); s != "" {
		rank, err := strconv.Atoi(s)
		switch {
		case err != nil:
			errs[FieldIMDbRank] = "IMDb rank must be a whole number"
		case rank < 0:
			errs[FieldIMDbRank] = "IMDb rank cannot be negative"
		default:
			in.IMDbRank = rank
		}
	}

	if s := strings.TrimSpace(f.PosterURL); s != "" {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs[FieldPosterURL] = "Poster URL must be an absolute http(s) URL"
		} else {
			in.PosterURL = s
		}
	}

	if len(errs) > 0 {
		return models.MovieInput{}, errs
	}
	return in, nil
}

// FieldErrors maps a form field key to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

// ValidationError is a client-side rejection that never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	var fe FieldErrors
	return errors.As(err, &ve) || errors.As(err, &fe)
}
