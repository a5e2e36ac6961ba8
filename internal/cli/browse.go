package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cineshelf/cineshelf/internal/tui"
	"github.com/cineshelf/cineshelf/internal/views"
)

// newBrowseCmd creates the 'browse' command.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive search",
		Long: `Open the interactive browser. Results update as you type, after a
short pause; Enter searches immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("browse needs an interactive terminal; use 'movies search' instead")
			}

			a, err := newApp(appOptions{interactive: true})
			if err != nil {
				return err
			}
			defer a.close()

			opts := tui.Options{Badge: views.RoleBadge(a.session)}
			if s, ok := a.session.Current(); ok {
				opts.User = s.User.Name
			}

			search := views.NewSearch(a.client, a.cfg.PageSize, a.cfg.DebounceWindow(), a.bus)
			return tui.Run(GetContext(), search, a.bus, opts)
		},
	}
}
