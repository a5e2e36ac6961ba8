package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cineshelf/cineshelf/internal/mockserver"
	"github.com/cineshelf/cineshelf/internal/models"
)

// lockedBuffer collects stdout and stderr; notices are written from a watcher goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runCLI executes the CLI with args, feeding stdin to prompts.
// It returns everything written to stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	oldReader, oldOut := stdinReader, promptOut
	stdinReader = bufio.NewReader(strings.NewReader(stdin))
	promptOut = io.Discard
	t.Cleanup(func() {
		stdinReader, promptOut = oldReader, oldOut
	})

	var out lockedBuffer
	root := NewRootCmd()
	AddCommands(root)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// startMock serves a seeded mock API in a fresh config dir and returns its base URL.
func startMock(t *testing.T) (string, *mockserver.Store) {
	t.Helper()
	t.Setenv("CINESHELF_CONFIG_DIR", t.TempDir())
	t.Setenv("CINESHELF_API_URL", "")

	store := mockserver.NewStore()
	if err := mockserver.Seed(store); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(mockserver.New(store, mockserver.Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api", store
}

func loginAs(t *testing.T, baseURL, email, password string) {
	t.Helper()
	out, err := runCLI(t, password+"\n", "--api-url", baseURL, "auth", "login", "--email", email)
	if err != nil {
		t.Fatalf("auth login error = %v\n%s", err, out)
	}
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, path := range [][]string{
		{"movies", "list"},
		{"movies", "search"},
		{"movies", "add"},
		{"movies", "edit"},
		{"movies", "delete"},
		{"auth", "login"},
		{"auth", "signup"},
		{"auth", "logout"},
		{"auth", "whoami"},
		{"browse"},
		{"config", "init"},
		{"completion"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
}

func TestMoviesList(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "", "--api-url", baseURL, "movies", "list")
	if err != nil {
		t.Fatalf("movies list error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "12 Angry Men") {
		t.Errorf("first page should start with 12 Angry Men:\n%s", out)
	}
	if !strings.Contains(out, "Page 1 of 3 (25 movies)") {
		t.Errorf("missing pagination footer:\n%s", out)
	}

	out, err = runCLI(t, "", "--api-url", baseURL, "movies", "list", "--sort", "rating", "--order", "desc", "--page", "3")
	if err != nil {
		t.Fatalf("sorted list error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Untitled Short") || !strings.Contains(out, "Page 3 of 3") {
		t.Errorf("lowest rated movie should be on page 3:\n%s", out)
	}

	if _, err := runCLI(t, "", "--api-url", baseURL, "movies", "list", "--sort", "budget"); err == nil {
		t.Error("unknown sort field should fail")
	}
}

func TestMoviesListJSON(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "", "--quiet", "--api-url", baseURL, "movies", "list", "--page", "2", "--json")
	if err != nil {
		t.Fatalf("movies list --json error = %v\n%s", err, out)
	}
	for _, want := range []string{`"page": 2`, `"totalPages": 3`, `"total": 25`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s:\n%s", want, out)
		}
	}
}

func TestMoviesListUnreachable(t *testing.T) {
	t.Setenv("CINESHELF_CONFIG_DIR", t.TempDir())
	t.Setenv("CINESHELF_API_URL", "")

	srv := httptest.NewServer(nil)
	baseURL := srv.URL + "/api"
	srv.Close()

	if _, err := runCLI(t, "", "--api-url", baseURL, "movies", "list"); err == nil {
		t.Error("list against a closed server should fail")
	}
}

func TestMoviesSearch(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "", "--api-url", baseURL, "movies", "search", "alien", "--sort", "title", "--order", "desc")
	if err != nil {
		t.Fatalf("movies search error = %v\n%s", err, out)
	}
	arrival := strings.Index(out, "Arrival")
	alien := strings.Index(out, "Alien")
	if arrival < 0 || alien < 0 || arrival > alien {
		t.Errorf("want Arrival before Alien under title desc:\n%s", out)
	}
	if strings.Contains(out, "Page 1 of") {
		t.Errorf("single page should not show pagination:\n%s", out)
	}

	out, err = runCLI(t, "", "--api-url", baseURL, "movies", "search", "no such film")
	if err != nil {
		t.Fatalf("empty search error = %v", err)
	}
	if !strings.Contains(out, "No movies found") {
		t.Errorf("output = %q, want No movies found", out)
	}
}

func TestAuthLoginWhoamiLogout(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "", "--api-url", baseURL, "auth", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Not signed in") || !strings.Contains(out, "Login, Sign Up") {
		t.Errorf("anonymous whoami:\n%s", out)
	}

	out, err = runCLI(t, mockserver.SeedAdminPassword+"\n", "--api-url", baseURL, "auth", "login", "--email", mockserver.SeedAdminEmail)
	if err != nil {
		t.Fatalf("login error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Signed in as "+mockserver.SeedAdminEmail+" (ADMIN)") {
		t.Errorf("login output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("CINESHELF_CONFIG_DIR"), "session.json")); err != nil {
		t.Errorf("session file not written: %v", err)
	}

	out, err = runCLI(t, "", "--api-url", baseURL, "auth", "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Role:  ADMIN") || !strings.Contains(out, "Add Movie, Manage, Logout") {
		t.Errorf("admin whoami:\n%s", out)
	}

	if out, err = runCLI(t, "", "--api-url", baseURL, "auth", "logout"); err != nil {
		t.Fatalf("logout error = %v\n%s", err, out)
	}
	out, _ = runCLI(t, "", "--api-url", baseURL, "auth", "whoami")
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("whoami after logout:\n%s", out)
	}
}

func TestAuthLoginWrongPassword(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "wrong-password\n", "--api-url", baseURL, "auth", "login", "--email", mockserver.SeedAdminEmail)
	if err == nil {
		t.Fatal("login with a wrong password should fail")
	}
	if !Reported(err) {
		t.Errorf("login failure should be reported as a notice, got %v", err)
	}
	if !strings.Contains(out, "Invalid email or password") {
		t.Errorf("server message missing from output:\n%s", out)
	}
}

func TestAuthSignup(t *testing.T) {
	baseURL, _ := startMock(t)

	out, err := runCLI(t, "long-enough\nlong-enough\n", "--api-url", baseURL, "auth", "signup", "--name", "Ada", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("signup error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Signed in as ada@example.com (USER)") {
		t.Errorf("signup output:\n%s", out)
	}

	// Mismatched confirmation never reaches the server.
	_, err = runCLI(t, "long-enough\ndifferent\n", "--api-url", baseURL, "auth", "signup", "--name", "Bo", "--email", "bo@example.com")
	if err == nil {
		t.Error("signup with mismatched passwords should fail")
	}
}

func TestMoviesAddRequiresAdmin(t *testing.T) {
	baseURL, store := startMock(t)
	loginAs(t, baseURL, mockserver.SeedUserEmail, mockserver.SeedUserPassword)

	if _, err := runCLI(t, "", "--api-url", baseURL, "movies", "add", "--title", "Sneaky"); err == nil {
		t.Error("viewer add should fail")
	}
	if store.Len() != mockserver.SeedCount() {
		t.Errorf("store changed: Len() = %d", store.Len())
	}
}

func TestRejectedSessionIsCleared(t *testing.T) {
	baseURL, store := startMock(t)
	loginAs(t, baseURL, mockserver.SeedAdminEmail, mockserver.SeedAdminPassword)

	// Same catalog, different signing secret: the saved token is now foreign.
	other := httptest.NewServer(mockserver.New(store, mockserver.Options{}).Handler())
	t.Cleanup(other.Close)

	out, err := runCLI(t, "", "--api-url", other.URL+"/api", "movies", "add", "--title", "Stale")
	if err == nil {
		t.Fatal("add with a rejected token should fail")
	}
	if !strings.Contains(out, "Invalid or expired token") || !strings.Contains(out, "has been cleared") {
		t.Errorf("add output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("CINESHELF_CONFIG_DIR"), "session.json")); !os.IsNotExist(err) {
		t.Errorf("session file still present: %v", err)
	}

	out, _ = runCLI(t, "", "--api-url", baseURL, "auth", "whoami")
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("whoami after rejection:\n%s", out)
	}
}

func TestMoviesAddEditDelete(t *testing.T) {
	baseURL, store := startMock(t)
	loginAs(t, baseURL, mockserver.SeedAdminEmail, mockserver.SeedAdminPassword)

	out, err := runCLI(t, "", "--api-url", baseURL, "movies", "add",
		"--title", "Paprika", "--rating", "7.7", "--release-date", "2006-11-25", "--duration", "90")
	if err != nil {
		t.Fatalf("add error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Title:       Paprika") || !strings.Contains(out, "Movie added!") {
		t.Errorf("add output:\n%s", out)
	}

	created := store.Search("paprika", 1, 10)
	if created.Total != 1 {
		t.Fatalf("store search = %+v", created)
	}
	id := created.Items[0].ID

	// Not on the default manage page.
	if _, err := runCLI(t, "", "--api-url", baseURL, "movies", "edit", id, "--rating", "8"); err == nil {
		t.Error("edit of a movie not on the loaded page should fail")
	}

	out, err = runCLI(t, "", "--api-url", baseURL, "movies", "edit", id, "--query", "paprika", "--rating", "8")
	if err != nil {
		t.Fatalf("edit error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Rating:      8.0") || !strings.Contains(out, "Duration:    90 min") {
		t.Errorf("edit should keep unchanged fields:\n%s", out)
	}

	out, err = runCLI(t, "n\n", "--api-url", baseURL, "movies", "delete", id, "--query", "paprika")
	if err != nil || !strings.Contains(out, "Cancelled") {
		t.Fatalf("declined delete = %v\n%s", err, out)
	}

	out, err = runCLI(t, "", "--api-url", baseURL, "movies", "delete", id, "--query", "paprika", "--yes")
	if err != nil {
		t.Fatalf("delete error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Movie deleted.") || !strings.Contains(out, "No movies found") {
		t.Errorf("delete output:\n%s", out)
	}
	if store.Len() != mockserver.SeedCount() {
		t.Errorf("Len() = %d, want %d", store.Len(), mockserver.SeedCount())
	}
}

func TestMoviesDeleteLastRowStepsBack(t *testing.T) {
	baseURL, store := startMock(t)
	loginAs(t, baseURL, mockserver.SeedAdminEmail, mockserver.SeedAdminPassword)

	// 31 movies at 10 per page leaves one row on page 4.
	var last models.Movie
	for i := 1; i <= 31-mockserver.SeedCount(); i++ {
		last = store.Create(models.Movie{Title: fmt.Sprintf("Extra %d", i)})
	}

	out, err := runCLI(t, "", "--api-url", baseURL, "movies", "delete", last.ID, "--page", "4", "--yes")
	if err != nil {
		t.Fatalf("delete error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Page 3 of 3 (30 movies)") {
		t.Errorf("should land on page 3 after deleting the only row of page 4:\n%s", out)
	}
}
