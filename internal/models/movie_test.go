package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestMovieDecode(t *testing.T) {
	body := `{
		"_id": "65f1c0",
		"title": "Inception",
		"rating": 8.8,
		"releaseDate": "2010-07-16T00:00:00.000Z",
		"durationMinutes": 148,
		"posterUrl": "https://img.example.com/inception.jpg",
		"imdbRank": 14
	}`

	var m Movie
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if m.ID != "65f1c0" {
		t.Errorf("ID = %q, want 65f1c0", m.ID)
	}
	if m.Rating != 8.8 || m.DurationMinutes != 148 || m.IMDbRank != 14 {
		t.Errorf("numeric fields = %v %d %d", m.Rating, m.DurationMinutes, m.IMDbRank)
	}
	if got := m.ReleaseDate.String(); got != "2010-07-16" {
		t.Errorf("ReleaseDate = %q, want 2010-07-16", got)
	}
}

func TestMovieDecodeMissingFields(t *testing.T) {
	var m Movie
	if err := json.Unmarshal([]byte(`{"_id":"x","title":"Untitled","releaseDate":null}`), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if m.Rating != 0 || m.DurationMinutes != 0 {
		t.Errorf("missing numbers should decode as zero, got %v %d", m.Rating, m.DurationMinutes)
	}
	if m.ReleaseDate != nil && !m.ReleaseDate.IsZero() {
		t.Errorf("null releaseDate should be empty, got %v", m.ReleaseDate)
	}
}

func TestDateRoundTrip(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"1994-09-23"`, "1994-09-23", false},
		{`"1994-09-23T12:30:00Z"`, "1994-09-23", false},
		{`""`, "", false},
		{`"23/09/1994"`, "", true},
		{`42`, "", true},
	}

	for _, tt := range tests {
		var d Date
		err := json.Unmarshal([]byte(tt.in), &d)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && d.String() != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, d.String(), tt.want)
		}
	}

	out, err := json.Marshal(NewDate(2001, time.December, 19))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2001-12-19"` {
		t.Errorf("Marshal = %s, want \"2001-12-19\"", out)
	}
}

func TestMovieInputOmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(MovieInput{Title: "Heat", Rating: 8.3})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "releaseDate") || strings.Contains(s, "durationMinutes") {
		t.Errorf("empty optionals should be omitted, got %s", s)
	}
	if !strings.Contains(s, `"imdbRank":0`) {
		t.Errorf("imdbRank should always be sent, got %s", s)
	}
}

func TestMovieInput(t *testing.T) {
	m := Movie{
		ID:              "m1",
		Title:           "Alien",
		Rating:          8.5,
		ReleaseDate:     NewDate(1979, time.May, 25),
		DurationMinutes: 117,
		IMDbRank:        51,
	}

	in := m.Input()
	if in.Title != "Alien" || in.Rating != 8.5 || in.IMDbRank != 51 {
		t.Errorf("Input() = %+v", in)
	}
	if in.ReleaseDate != "1979-05-25" {
		t.Errorf("ReleaseDate = %q, want 1979-05-25", in.ReleaseDate)
	}
	if in.DurationMinutes == nil || *in.DurationMinutes != 117 {
		t.Errorf("DurationMinutes = %v, want 117", in.DurationMinutes)
	}

	if (Movie{Title: "Short"}).Input().DurationMinutes != nil {
		t.Error("zero duration should be omitted from the payload")
	}
}

func TestParseSort(t *testing.T) {
	fields := map[string]SortField{
		"title":           SortByTitle,
		"Name":            SortByTitle,
		"rating":          SortByRating,
		"releaseDate":     SortByReleaseDate,
		"release-date":    SortByReleaseDate,
		"durationMinutes": SortByDurationMinutes,
		"duration":        SortByDurationMinutes,
	}
	for in, want := range fields {
		got, err := ParseSortField(in)
		if err != nil || got != want {
			t.Errorf("ParseSortField(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortField("budget"); err == nil {
		t.Error("ParseSortField(budget) should fail")
	}

	if o, err := ParseSortOrder("DESC"); err != nil || o != Descending {
		t.Errorf("ParseSortOrder(DESC) = %q, %v", o, err)
	}
	if _, err := ParseSortOrder("up"); err == nil {
		t.Error("ParseSortOrder(up) should fail")
	}
}

func TestSortCycling(t *testing.T) {
	if DefaultSort() != (SortSpec{By: SortByTitle, Order: Ascending}) {
		t.Errorf("DefaultSort() = %+v", DefaultSort())
	}
	if Ascending.Toggle() != Descending || Descending.Toggle() != Ascending {
		t.Error("Toggle should flip the order")
	}
	if SortByDurationMinutes.Next() != SortByTitle {
		t.Errorf("Next() should wrap around to title")
	}
	if SortByRating.Label() != "Rating" {
		t.Errorf("Label() = %q", SortByRating.Label())
	}
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
	if (&User{Role: "user"}).IsAdmin() {
		t.Error("user role must not be admin")
	}
	if !(&User{Role: "admin"}).IsAdmin() {
		t.Error("admin role should be admin")
	}
}
