package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cineshelf/cineshelf/internal/services"
	"github.com/cineshelf/cineshelf/internal/views"
)

// newAuthCmd creates the 'auth' command group.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and sign out",
		Long: `Account commands. The session is kept in the config directory
(session.json, owner-only permissions) until logout or token expiry.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthSignupCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthService(a *app, view string) *services.AuthService {
	svc := services.NewAuthService(view, a.client, a.session, a.bus)
	svc.SetLogger(a.logger)
	return svc
}

// newAuthLoginCmd creates the 'auth login' command.
func newAuthLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with email and password. The password is always prompted.

Example:
  cineshelf auth login --email admin@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			if email == "" {
				if email, err = promptLine("Email", ""); err != nil {
					return err
				}
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			login := views.NewLogin(newAuthService(a, views.ViewLogin))
			login.SetEmail(email)
			login.SetPassword(password)

			s, err := login.Submit(GetContext())
			if err != nil {
				return serviceFailure(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.User.Email, views.RoleBadge(a.session))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")

	return cmd
}

// newAuthSignupCmd creates the 'auth signup' command.
func newAuthSignupCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account and sign in. Passwords need at least 8 characters
and are prompted twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			if name == "" {
				if name, err = promptLine("Name", ""); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptLine("Email", ""); err != nil {
					return err
				}
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			signup := views.NewSignup(newAuthService(a, views.ViewSignup))
			signup.SetFields(name, email, password, confirm)

			s, err := signup.Submit(GetContext())
			if err != nil {
				return serviceFailure(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.User.Email, views.RoleBadge(a.session))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")

	return cmd
}

// newAuthLogoutCmd creates the 'auth logout' command.
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			if _, ok := a.session.Current(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			newAuthService(a, views.ViewLogin).Logout()
			return nil
		},
	}
}

// newAuthWhoamiCmd creates the 'auth whoami' command.
func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(appOptions{errOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			s, ok := a.session.Current()
			if !ok {
				fmt.Fprintln(out, "Not signed in")
			} else {
				fmt.Fprintf(out, "Name:  %s\n", s.User.Name)
				fmt.Fprintf(out, "Email: %s\n", s.User.Email)
				fmt.Fprintf(out, "Role:  %s\n", views.RoleBadge(a.session))
			}

			labels := make([]string, 0, 6)
			for _, item := range views.NavItems(a.session) {
				labels = append(labels, item.Label)
			}
			fmt.Fprintf(out, "Menu:  %s\n", strings.Join(labels, ", "))
			return nil
		},
	}
}
