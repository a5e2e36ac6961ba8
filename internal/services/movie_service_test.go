package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/state"
)

// fakeWriter records calls and fails when err is set.
type fakeWriter struct {
	mu      sync.Mutex
	err     error
	creates []models.MovieInput
	updates map[string]models.MovieInput
	deletes []string
}

func (f *fakeWriter) CreateMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, input)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Movie{ID: "new", Title: input.Title}, nil
}

func (f *fakeWriter) UpdateMovie(ctx context.Context, id string, input models.MovieInput) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[string]models.MovieInput{}
	}
	f.updates[id] = input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Movie{ID: id, Title: input.Title}, nil
}

func (f *fakeWriter) DeleteMovie(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.err
}

func (f *fakeWriter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates) + len(f.deletes)
}

// pagedCatalog serves total movies in pages and records requested pages.
type pagedCatalog struct {
	mu    sync.Mutex
	total int
	pages []int
}

func (c *pagedCatalog) fetch(ctx context.Context, p state.Params) (*models.PageResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, p.Page)

	start := (p.Page - 1) * p.Limit
	var items []models.Movie
	for i := start; i < c.total && i < start+p.Limit; i++ {
		items = append(items, models.Movie{ID: fmt.Sprintf("m%02d", i), Title: fmt.Sprintf("Movie %02d", i)})
	}
	return &models.PageResult{Items: items, Total: c.total, Page: p.Page, Limit: p.Limit}, nil
}

func (c *pagedCatalog) requested() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.pages...)
}

func newManagedList(t *testing.T, total, page int) (*MovieManager, *fakeWriter, *pagedCatalog) {
	t.Helper()
	cat := &pagedCatalog{total: total}
	list := state.NewListQuery("manage", "Failed to load movies.", cat.fetch, nil)
	if _, err := list.Run(context.Background(), state.Params{Page: page, Limit: 10}); err != nil {
		t.Fatal(err)
	}
	writer := &fakeWriter{}
	return NewMovieManager("manage", writer, list, nil), writer, cat
}

func TestConfirmDeletePageCorrection(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		page     int
		wantPage int
	}{
		{"last row on trailing page", 21, 3, 2},
		{"several rows on trailing page", 25, 3, 3},
		{"only row on first page", 1, 1, 1},
		{"full middle page", 30, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, writer, cat := newManagedList(t, tt.total, tt.page)

			mgr.RequestDelete(models.Movie{ID: "m20"})
			if writer.calls() != 0 {
				t.Fatal("RequestDelete must not call the API")
			}

			if err := mgr.ConfirmDelete(context.Background()); err != nil {
				t.Fatalf("ConfirmDelete() error = %v", err)
			}

			pages := cat.requested()
			if len(pages) != 2 {
				t.Fatalf("queries = %v, want initial load plus exactly one refresh", pages)
			}
			if pages[1] != tt.wantPage {
				t.Errorf("refresh page = %d, want %d", pages[1], tt.wantPage)
			}
			if _, pending := mgr.PendingDelete(); pending {
				t.Error("pending delete should clear after success")
			}
		})
	}
}

func TestConfirmDeleteWithoutRequest(t *testing.T) {
	mgr, writer, _ := newManagedList(t, 5, 1)
	if err := mgr.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("ConfirmDelete() = %v, want ErrNoPendingDelete", err)
	}
	mgr.RequestDelete(models.Movie{ID: "m1"})
	mgr.CancelDelete()
	if err := mgr.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("ConfirmDelete() after cancel = %v, want ErrNoPendingDelete", err)
	}
	if writer.calls() != 0 {
		t.Errorf("API calls = %d, want 0", writer.calls())
	}
}

func TestConfirmDeleteFailureKeepsPending(t *testing.T) {
	mgr, writer, cat := newManagedList(t, 5, 1)
	writer.err = &api.APIError{StatusCode: 500}

	mgr.RequestDelete(models.Movie{ID: "m1"})
	err := mgr.ConfirmDelete(context.Background())
	if err == nil || err.Error() != MsgDeleteFailed {
		t.Fatalf("ConfirmDelete() = %v, want %q", err, MsgDeleteFailed)
	}
	if _, pending := mgr.PendingDelete(); !pending {
		t.Error("failed delete should stay pending for a retry")
	}
	if len(cat.requested()) != 1 {
		t.Errorf("failed delete should not re-query, got %v", cat.requested())
	}
}

func TestCreateCoercesAndResets(t *testing.T) {
	mgr, writer, cat := newManagedList(t, 3, 1)

	form := catalog.DefaultMovieForm()
	form.Title = "Inception"
	form.Rating = "8.5"
	form.DurationMinutes = "142"

	created, err := mgr.Create(context.Background(), &form)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "new" {
		t.Errorf("created = %+v", created)
	}

	sent := writer.creates[0]
	if sent.Rating != 8.5 || sent.DurationMinutes == nil || *sent.DurationMinutes != 142 {
		t.Errorf("sent = %+v, want numeric 8.5 and 142", sent)
	}
	if form != catalog.DefaultMovieForm() {
		t.Errorf("form = %+v, want defaults after success", form)
	}
	if got := cat.requested(); len(got) != 2 || got[1] != 1 {
		t.Errorf("queries = %v, want one refresh of page 1", got)
	}
}

func TestCreateFailureKeepsForm(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	notices := bus.Subscribe(events.EventNotice)

	writer := &fakeWriter{err: &api.APIError{StatusCode: 400, Message: "Title already exists"}}
	mgr := NewMovieManager("add", writer, nil, bus)

	form := catalog.DefaultMovieForm()
	form.Title = "Heat"
	_, err := mgr.Create(context.Background(), &form)
	if err == nil || err.Error() != "Title already exists" {
		t.Fatalf("Create() = %v, want server message", err)
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Error("OpError should unwrap to the API error")
	}
	if form.Title != "Heat" {
		t.Error("form should be left intact on failure")
	}

	select {
	case ev := <-notices:
		n := ev.(*events.NoticeEvent)
		if n.Level != events.ErrorLevel || n.Message != "Title already exists" {
			t.Errorf("notice = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for error notice")
	}
}

func TestCreateValidationSkipsNetwork(t *testing.T) {
	writer := &fakeWriter{}
	mgr := NewMovieManager("add", writer, nil, nil)

	form := catalog.DefaultMovieForm()
	form.Title = "Heat"
	form.Rating = "great"

	_, err := mgr.Create(context.Background(), &form)
	if !catalog.IsValidation(err) {
		t.Fatalf("Create() = %v, want validation error", err)
	}
	if writer.calls() != 0 {
		t.Errorf("API calls = %d, want 0", writer.calls())
	}
}

func TestEditSession(t *testing.T) {
	mgr, writer, cat := newManagedList(t, 12, 2)

	if _, err := mgr.SaveEdit(context.Background()); !errors.Is(err, ErrNoEditSession) {
		t.Errorf("SaveEdit() without session = %v, want ErrNoEditSession", err)
	}

	mgr.BeginEdit(models.Movie{ID: "m10", Title: "Old", Rating: 6, DurationMinutes: 90})
	if err := mgr.SetEditField(catalog.FieldTitle, "New"); err != nil {
		t.Fatal(err)
	}

	writer.err = &api.APIError{StatusCode: 500}
	if _, err := mgr.SaveEdit(context.Background()); err == nil {
		t.Fatal("SaveEdit() should fail")
	}
	if mgr.EditError() != MsgUpdateFailed {
		t.Errorf("EditError() = %q, want %q", mgr.EditError(), MsgUpdateFailed)
	}
	if _, open := mgr.Editing(); !open {
		t.Error("failed save should keep the edit session open")
	}

	writer.err = nil
	if _, err := mgr.SaveEdit(context.Background()); err != nil {
		t.Fatalf("SaveEdit() error = %v", err)
	}
	if _, open := mgr.Editing(); open {
		t.Error("successful save should close the edit session")
	}

	sent := writer.updates["m10"]
	if sent.Title != "New" || sent.Rating != 6 || sent.DurationMinutes == nil || *sent.DurationMinutes != 90 {
		t.Errorf("update payload = %+v, want every field", sent)
	}
	if got := cat.requested(); len(got) != 2 || got[1] != 2 {
		t.Errorf("queries = %v, want one refresh of page 2", got)
	}
}

func TestSaveEditSendsClearedFields(t *testing.T) {
	mgr, writer, _ := newManagedList(t, 3, 1)

	mgr.BeginEdit(models.Movie{
		ID:              "m01",
		Title:           "Heat",
		Description:     "Cops and robbers.",
		PosterURL:       "https://img.example/heat.jpg",
		ReleaseDate:     models.NewDate(1995, time.December, 15),
		DurationMinutes: 170,
	})
	for _, field := range []string{catalog.FieldDescription, catalog.FieldPosterURL, catalog.FieldReleaseDate} {
		if err := mgr.SetEditField(field, ""); err != nil {
			t.Fatalf("SetEditField(%s) error = %v", field, err)
		}
	}
	if _, err := mgr.SaveEdit(context.Background()); err != nil {
		t.Fatalf("SaveEdit() error = %v", err)
	}

	raw, err := json.Marshal(writer.updates["m01"])
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"description", "posterUrl"} {
		v, ok := body[key]
		if !ok {
			t.Errorf("update body %s is missing %q", raw, key)
			continue
		}
		if v != "" {
			t.Errorf("%s = %v, want empty string", key, v)
		}
	}
	if _, ok := body["releaseDate"]; ok {
		t.Errorf("update body %s should leave out an empty releaseDate", raw)
	}
	if body["title"] != "Heat" || body["durationMinutes"] != float64(170) {
		t.Errorf("update body %s lost unchanged fields", raw)
	}
}

func TestCancelEdit(t *testing.T) {
	mgr := NewMovieManager("manage", &fakeWriter{}, nil, nil)
	mgr.BeginEdit(models.Movie{ID: "x", Title: "X"})
	mgr.CancelEdit()
	if err := mgr.SetEditField(catalog.FieldTitle, "Y"); !errors.Is(err, ErrNoEditSession) {
		t.Errorf("SetEditField() after cancel = %v, want ErrNoEditSession", err)
	}
}
