package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cineshelf/cineshelf/internal/catalog"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/views"
)

// newMoviesCmd creates the 'movies' command group.
func newMoviesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List, search and manage movies",
		Long: `Catalog commands.

Commands:
  list    - Browse the catalog with server-side sorting
  search  - Free-text search
  add     - Add a movie (admin)
  edit    - Edit a movie on a manage page (admin)
  delete  - Delete a movie on a manage page (admin)`,
	}

	cmd.AddCommand(newMoviesListCmd())
	cmd.AddCommand(newMoviesSearchCmd())
	cmd.AddCommand(newMoviesAddCmd())
	cmd.AddCommand(newMoviesEditCmd())
	cmd.AddCommand(newMoviesDeleteCmd())

	return cmd
}

// parseSortFlags turns --sort/--order into a SortSpec. ok is false when
// neither flag was given.
func parseSortFlags(by, order string) (spec models.SortSpec, ok bool, err error) {
	spec = models.DefaultSort()
	if by == "" && order == "" {
		return spec, false, nil
	}
	if by != "" {
		if spec.By, err = models.ParseSortField(by); err != nil {
			return spec, false, err
		}
	}
	if order != "" {
		if spec.Order, err = models.ParseSortOrder(order); err != nil {
			return spec, false, err
		}
	}
	return spec, true, nil
}

// newMoviesListCmd creates the 'movies list' command.
func newMoviesListCmd() *cobra.Command {
	var (
		page       int
		sortBy     string
		sortOrder  string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies",
		Long: `List one page of the catalog, ordered by the server.

Sort fields: title, rating, releaseDate, durationMinutes

Examples:
  # First page, by title
  cineshelf movies list

  # Best rated first
  cineshelf movies list --sort rating --order desc

  # Page 3 as JSON
  cineshelf movies list --page 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, sorted, err := parseSortFlags(sortBy, sortOrder)
			if err != nil {
				return err
			}

			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			ctx := GetContext()
			home := views.NewHome(a.client, a.cfg.PageSize, a.bus)
			defer home.Unmount()

			if err := home.Mount(ctx); err != nil {
				return loadFailure(home.Snapshot(), err)
			}
			if sorted && spec != home.Sort() {
				if err := home.SetSort(ctx, spec); err != nil {
					return loadFailure(home.Snapshot(), err)
				}
			}
			if page > 1 {
				if err := home.GoToPage(ctx, page); err != nil {
					return loadFailure(home.Snapshot(), err)
				}
			}

			snap := home.Snapshot()
			return printPage(cmd.OutOrStdout(), snap.Items, snap, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field")
	cmd.Flags().StringVar(&sortOrder, "order", "", "Sort order: asc or desc")
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// newMoviesSearchCmd creates the 'movies search' command.
func newMoviesSearchCmd() *cobra.Command {
	var (
		page       int
		sortBy     string
		sortOrder  string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search movies",
		Long: `Search the catalog. Results of the page are ordered locally.

Examples:
  cineshelf movies search "blade runner"
  cineshelf movies search alien --sort rating --order desc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, sorted, err := parseSortFlags(sortBy, sortOrder)
			if err != nil {
				return err
			}
			text := ""
			if len(args) == 1 {
				text = args[0]
			}

			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			ctx := GetContext()
			search := views.NewSearch(a.client, a.cfg.PageSize, a.cfg.DebounceWindow(), a.bus)
			search.Mount(ctx)
			defer search.Unmount()

			search.SetText(text)
			search.Submit()

			snap := search.Snapshot()
			if !snap.LoadedOK {
				return loadFailure(snap, fmt.Errorf("search failed"))
			}
			if page > 1 {
				if err := search.GoToPage(ctx, page); err != nil {
					return loadFailure(search.Snapshot(), err)
				}
			}
			if sorted {
				search.SetSort(spec)
			}

			return printPage(cmd.OutOrStdout(), search.Items(), search.Snapshot(), outputJSON)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field")
	cmd.Flags().StringVar(&sortOrder, "order", "", "Sort order: asc or desc")
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// movieFlags binds the form fields to string flags so input is coerced
// the same way as typed form text.
type movieFlags struct {
	values map[string]*string
}

var movieFlagFields = []struct {
	flag  string
	field string
	usage string
}{
	{"title", catalog.FieldTitle, "Title"},
	{"description", catalog.FieldDescription, "Description"},
	{"rating", catalog.FieldRating, "Rating, 0-10"},
	{"release-date", catalog.FieldReleaseDate, "Release date, YYYY-MM-DD"},
	{"duration", catalog.FieldDuration, "Duration in minutes"},
	{"poster-url", catalog.FieldPosterURL, "Poster image URL"},
	{"rank", catalog.FieldIMDbRank, "IMDb rank"},
}

func addMovieFlags(cmd *cobra.Command) *movieFlags {
	mf := &movieFlags{values: make(map[string]*string)}
	for _, f := range movieFlagFields {
		mf.values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return mf
}

// apply calls set for every flag given on the command line.
func (mf *movieFlags) apply(cmd *cobra.Command, set func(field, value string) error) (int, error) {
	n := 0
	for _, f := range movieFlagFields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if err := set(f.field, *mf.values[f.flag]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// newMoviesAddCmd creates the 'movies add' command.
func newMoviesAddCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie (admin)",
		Long: `Add a movie to the catalog. Requires an admin session.

Unset fields keep the form defaults (rating 0, duration 120, rank 0).

Example:
  cineshelf movies add --title "Heat" --rating 8.3 --release-date 1995-12-15 --duration 170`,
		Args: cobra.NoArgs,
	}
	mf := addMovieFlags(cmd)
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("title")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		add := views.NewAddMovie(a.client, a.session, a.bus)
		add.SetLogger(a.logger)
		if err := add.Mount(); err != nil {
			return err
		}
		if _, err := mf.apply(cmd, add.Set); err != nil {
			return err
		}

		created, err := add.Submit(GetContext())
		if err != nil {
			return a.writeFailure(err)
		}

		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), created)
		}
		printMovie(cmd.OutOrStdout(), created)
		return nil
	}

	return cmd
}

// mountManage opens the manage view on page with filter.
func mountManage(a *app, page int, filter string) (*views.Manage, error) {
	ctx := GetContext()
	manage := views.NewManage(a.client, a.session, a.cfg.AdminPageSize, a.cfg.DebounceWindow(), a.bus)
	manage.Manager().SetLogger(a.logger)

	if err := manage.MountAt(ctx, page, filter); err != nil {
		manage.Unmount()
		return nil, loadFailure(manage.Snapshot(), err)
	}
	return manage, nil
}

func findOnPage(manage *views.Manage, id string) (models.Movie, error) {
	movie, ok := manage.Find(id)
	if !ok {
		snap := manage.Snapshot()
		return movie, fmt.Errorf("%s: %s (page %d; use --page or --query)", services.MsgNoMovieOnPage, id, snap.Page)
	}
	return movie, nil
}

// newMoviesEditCmd creates the 'movies edit' command.
func newMoviesEditCmd() *cobra.Command {
	var (
		page   int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a movie (admin)",
		Long: `Edit a movie from a manage page. Requires an admin session.

The movie must be on the loaded page, selected with --page and --query.
Fields not given keep their current values.

Example:
  cineshelf movies edit 65f1c0 --query heat --rating 8.4`,
		Args: cobra.ExactArgs(1),
	}
	mf := addMovieFlags(cmd)
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Manage page holding the movie")
	cmd.Flags().StringVar(&filter, "query", "", "Manage filter text")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		manage, err := mountManage(a, page, filter)
		if err != nil {
			return err
		}
		defer manage.Unmount()

		movie, err := findOnPage(manage, args[0])
		if err != nil {
			return err
		}

		manager := manage.Manager()
		manager.BeginEdit(movie)
		n, err := mf.apply(cmd, manager.SetEditField)
		if err != nil {
			return err
		}
		if n == 0 {
			manager.CancelEdit()
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change")
			return nil
		}

		updated, err := manage.SaveEdit(GetContext())
		if err != nil {
			return a.writeFailure(err)
		}
		printMovie(cmd.OutOrStdout(), updated)
		return nil
	}

	return cmd
}

// newMoviesDeleteCmd creates the 'movies delete' command.
func newMoviesDeleteCmd() *cobra.Command {
	var (
		page   int
		filter string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movie (admin)",
		Long: `Delete a movie from a manage page. Requires an admin session.

After the delete the page is reloaded. Deleting the last movie of a page
moves back one page.

Example:
  cineshelf movies delete 65f1c0 --page 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			manage, err := mountManage(a, page, filter)
			if err != nil {
				return err
			}
			defer manage.Unmount()

			movie, err := findOnPage(manage, args[0])
			if err != nil {
				return err
			}

			manager := manage.Manager()
			manager.RequestDelete(movie)

			if !yes {
				ok, err := promptConfirm(fmt.Sprintf("Delete %q?", strings.TrimSpace(movie.Title)))
				if err != nil {
					manager.CancelDelete()
					return err
				}
				if !ok {
					manager.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := manage.ConfirmDelete(GetContext()); err != nil {
				return a.writeFailure(err)
			}

			snap := manage.Snapshot()
			return printPage(cmd.OutOrStdout(), snap.Items, snap, false)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Manage page holding the movie")
	cmd.Flags().StringVar(&filter, "query", "", "Manage filter text")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
