package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/content"
	"github.com/folioadmin/folioadmin/internal/guard"
)

const (
	hintLoginFirst    = "not authenticated. Please run 'folioadmin login' first"
	hintAlreadyLogged = "already logged in. Use --force to log in again"
)

// requireLogin is the PreRunE of every command that needs a token.
func requireLogin(app *App) func(*cobra.Command, []string) error {
	return guard.Command(guard.AuthenticatedOnly{}, app, hintLoginFirst)
}

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the portfolio backend",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return guard.Command(guard.PublicOnly{Passthrough: force}, app, hintAlreadyLogged)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set FOLIO_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FOLIO_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&force, "force", false, "Log in again even if a session exists")

	return cmd
}

func runLogin(cmd *cobra.Command, app *App, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("FOLIO_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FOLIO_PASSWORD")
	}

	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required (use --email flag or FOLIO_EMAIL env var)")
	}

	if password == "" {
		p, err := app.ReadPassword("Password: ")
		if err != nil {
			return err
		}
		password = p
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logging in to %s...\n", app.Config.API.BaseURL)

	res := app.Content.Login(cmd.Context(), content.Credentials{Email: email, Password: password}, app.Sessions)
	if !res.Success {
		return fmt.Errorf("login failed: %w", res.Err())
	}

	fmt.Fprintln(out, "✓ Login successful!")
	if claims, ok := app.Sessions.Claims(); ok && claims.Email != "" {
		fmt.Fprintf(out, "  User: %s\n", claims.Email)
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			wasLoggedIn := app.Sessions.IsAuthenticated()
			if err := app.Sessions.Logout(); err != nil {
				return fmt.Errorf("failed to erase stored token: %w", err)
			}
			if wasLoggedIn {
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			}
			return nil
		},
	}
}

// NewStatusCmd creates the status command
func NewStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:       %s\n", app.Config.API.BaseURL)
			fmt.Fprintf(out, "Authenticated: %t\n", app.Sessions.IsAuthenticated())

			claims, ok := app.Sessions.Claims()
			if !ok {
				return nil
			}
			if claims.Email != "" {
				fmt.Fprintf(out, "User:          %s\n", claims.Email)
			}
			if claims.Subject != "" {
				fmt.Fprintf(out, "Subject:       %s\n", claims.Subject)
			}
			if !claims.ExpiresAt.IsZero() {
				note := ""
				if claims.Expired(time.Now()) {
					note = " (expired, run 'folioadmin login --force')"
				}
				fmt.Fprintf(out, "Expires:       %s%s\n", claims.ExpiresAt.Local().Format(time.RFC1123), note)
			}
			return nil
		},
	}
}
