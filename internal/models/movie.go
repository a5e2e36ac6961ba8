// Package models defines the catalog API's wire types.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date-only format used for releaseDate on the wire.
const DateLayout = "2006-01-02"

// Movie is one catalog record as returned by the API.
// Numeric fields the server omits decode as zero.
type Movie struct {
	ID              string  `json:"_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Rating          float64 `json:"rating"`
	ReleaseDate     *Date   `json:"releaseDate,omitempty"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	PosterURL       string  `json:"posterUrl,omitempty"`
	IMDbRank        int     `json:"imdbRank,omitempty"`
}

// MovieInput is the create/update payload. Text fields are always sent,
// so an empty description or poster URL clears it on the server.
// ReleaseDate and DurationMinutes are left out when empty.
type MovieInput struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Rating          float64 `json:"rating"`
	ReleaseDate     string  `json:"releaseDate,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	PosterURL       string  `json:"posterUrl"`
	IMDbRank        int     `json:"imdbRank"`
}

// PageResult is one page of a list or search response.
type PageResult struct {
	Items []Movie `json:"items"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// Date is a calendar date. It decodes both "2006-01-02" and RFC 3339
// timestamps and always encodes as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns the Date for y-m-d in UTC.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date-only or RFC 3339 string.
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return &Date{t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &Date{t.UTC()}, nil
	}
	return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// String returns the date as YYYY-MM-DD, or "" for a nil date.
func (d *Date) String() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts null, "", "YYYY-MM-DD" and RFC 3339.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("releaseDate: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// Input returns the full-overwrite payload for m.
func (m Movie) Input() MovieInput {
	in := MovieInput{
		Title:       m.Title,
		Description: m.Description,
		Rating:      m.Rating,
		ReleaseDate: m.ReleaseDate.String(),
		PosterURL:   m.PosterURL,
		IMDbRank:    m.IMDbRank,
	}
	if m.DurationMinutes > 0 {
		d := m.DurationMinutes
		in.DurationMinutes = &d
	}
	return in
}
