// Package state provides observable list-query state for the catalog views.
// Containers publish events on every transition so any frontend (CLI, TUI)
// can subscribe and redraw.
package state

import (
	"errors"
	"time"

	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
)

// ErrStale is returned by ListQuery.Run when a newer request superseded this one.
// Its result was discarded and nothing in the state changed.
var ErrStale = errors.New("stale list query result discarded")

// Phase is the render state of a list. Exactly one applies at a time; an
// error message is an overlay shown alongside any of them.
type Phase int

const (
	// PhaseIdle means nothing has been loaded successfully yet.
	PhaseIdle Phase = iota
	// PhaseLoading is the initial load, before any request finished.
	PhaseLoading
	// PhaseEmpty is a successful result with no rows.
	PhaseEmpty
	// PhasePopulated has at least one row.
	PhasePopulated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	case PhasePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Params is the per-view query state.
type Params struct {
	Page  int
	Limit int
	Sort  models.SortSpec
	Query string
}

// normalized clamps page and limit to at least 1.
func (p Params) normalized() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Snapshot is an immutable copy of a ListQuery's state.
type Snapshot struct {
	View     string
	Params   Params
	Items    []models.Movie
	Total    int
	Page     int
	Limit    int
	Loading  bool
	LoadedOK bool
	Error    string
	Seq      uint64

	attempted bool
	hasData   bool
}

// Phase derives the render state.
func (s Snapshot) Phase() Phase {
	switch {
	case s.Loading && !s.attempted:
		return PhaseLoading
	case !s.hasData:
		return PhaseIdle
	case len(s.Items) == 0:
		return PhaseEmpty
	default:
		return PhasePopulated
	}
}

// Initial reports whether no request has completed yet.
func (s Snapshot) Initial() bool {
	return !s.attempted
}

func newQueryEvent(eventType events.EventType, view string, seq uint64, p Params) *events.QueryEvent {
	return &events.QueryEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			Time:      time.Now(),
		},
		View:  view,
		Seq:   seq,
		Page:  p.Page,
		Limit: p.Limit,
		Query: p.Query,
	}
}
