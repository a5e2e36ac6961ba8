package models

import (
	"fmt"
	"strings"
)

// SortField names a sortable movie attribute.
type SortField string

const (
	SortByTitle           SortField = "title"
	SortByRating          SortField = "rating"
	SortByReleaseDate     SortField = "releaseDate"
	SortByDurationMinutes SortField = "durationMinutes"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortFields lists the fields in the order the UI offers them.
var SortFields = []SortField{SortByTitle, SortByRating, SortByReleaseDate, SortByDurationMinutes}

// SortSpec selects the ordering of a list.
type SortSpec struct {
	By    SortField `json:"by"`
	Order SortOrder `json:"order"`
}

// DefaultSort is restored whenever a view mounts.
func DefaultSort() SortSpec {
	return SortSpec{By: SortByTitle, Order: Ascending}
}

// ParseSortField accepts a field name case-insensitively. "name" and
// "duration" are accepted as aliases.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "name":
		return SortByTitle, nil
	case "rating":
		return SortByRating, nil
	case "releasedate", "release-date", "date":
		return SortByReleaseDate, nil
	case "durationminutes", "duration":
		return SortByDurationMinutes, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want title, rating, releaseDate or durationMinutes)", s)
}

// ParseSortOrder accepts asc or desc case-insensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
}

// Toggle returns the opposite direction.
func (o SortOrder) Toggle() SortOrder {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Next returns the field after f, wrapping around.
func (f SortField) Next() SortField {
	for i, field := range SortFields {
		if field == f {
			return SortFields[(i+1)%len(SortFields)]
		}
	}
	return SortByTitle
}

// Label is the human-readable name of the field.
func (f SortField) Label() string {
	switch f {
	case SortByRating:
		return "Rating"
	case SortByReleaseDate:
		return "Release Date"
	case SortByDurationMinutes:
		return "Duration"
	default:
		return "Name"
	}
}
