// Package views holds the view models of the catalog screens. They own the
// per-screen query state and are driven by the CLI and the interactive browser.
package views

import (
	"context"
	"errors"
	"strings"

	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/session"
)

// View names, used to tag events and notices.
const (
	ViewHome   = "home"
	ViewSearch = "search"
	ViewManage = "manage"
	ViewAdd    = "add"
	ViewLogin  = "login"
	ViewSignup = "signup"
)

// Fallback messages for failed list loads.
const (
	MsgLoadFailed   = "Failed to load movies."
	MsgSearchFailed = "Failed to search movies."
)

// ErrNotAdmin is returned when an admin-only view is used without CanManageMovies.
var ErrNotAdmin = errors.New("admin access required")

// Catalog reads pages of movies. *api.Client satisfies it.
type Catalog interface {
	ListSorted(ctx context.Context, page, limit int, sort models.SortSpec) (*models.PageResult, error)
	Search(ctx context.Context, query string, page, limit int) (*models.PageResult, error)
}

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Label string
	Path  string
}

// NavItems returns the menu for the session. Admin entries appear only with
// CanManageMovies.
func NavItems(sess session.Context) []NavItem {
	items := []NavItem{
		{Label: "Home", Path: "/"},
		{Label: "Search", Path: "/search"},
	}
	if sess.Capabilities().CanManageMovies {
		items = append(items,
			NavItem{Label: "Add Movie", Path: "/admin/add"},
			NavItem{Label: "Manage", Path: "/admin/manage"},
		)
	}
	if _, signedIn := sess.Current(); signedIn {
		items = append(items, NavItem{Label: "Logout", Path: "/logout"})
	} else {
		items = append(items,
			NavItem{Label: "Login", Path: "/login"},
			NavItem{Label: "Sign Up", Path: "/signup"},
		)
	}
	return items
}

// RoleBadge is the upper-case role label shown next to a signed-in user.
func RoleBadge(sess session.Context) string {
	s, ok := sess.Current()
	if !ok {
		return ""
	}
	if s.User.Role == "" {
		return "USER"
	}
	return strings.ToUpper(s.User.Role)
}

func requireAdmin(sess session.Context) error {
	if sess == nil || !sess.Capabilities().CanManageMovies {
		return ErrNotAdmin
	}
	return nil
}
