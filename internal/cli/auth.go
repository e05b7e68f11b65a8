package cli

import (
	"bufio"
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a competition administrator",
	Long: `Log in to the backend. The session stays valid locally for the
configured TTL (1 hour by default).

Examples:
  scic login
  scic login --email admin@scic.vn
  echo "$PASSWORD" | scic login --email admin@scic.vn --password-stdin`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in and for how long",
	RunE:  runStatus,
}

var (
	loginEmail         string
	loginPasswordStdin bool
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Administrator email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	email := loginEmail
	if email == "" {
		email = prompt(cmd, reader, "Email: ")
	}

	var password string
	if loginPasswordStdin {
		password = readSecret(cmd, reader, "")
	} else {
		password = readSecret(cmd, reader, "Password: ")
	}

	creds := form.Login{Email: email, Password: password}
	if err := validation.Validate(creds); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging in...")
		identity, err := a.client.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			return err
		}

		if jsonOutput {
			info, _ := a.guard.Current(ctx)
			return printJSON(cmd, statusView(info, true))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s (valid for %s)\n", identity, a.guard.TTL())
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if !a.guard.IsValid(ctx) {
			// Still clear leftovers such as stale cookies
			a.client.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Logging out...")
		a.client.Logout(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out successfully.")
		return nil
	})
}

type sessionStatus struct {
	Authenticated bool      `json:"authenticated"`
	Identity      string    `json:"identity,omitempty"`
	IssuedAt      time.Time `json:"issued_at,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

func statusView(info session.Info, ok bool) sessionStatus {
	if !ok {
		return sessionStatus{}
	}
	return sessionStatus{
		Authenticated: true,
		Identity:      info.Identity,
		IssuedAt:      info.IssuedAt,
		ExpiresAt:     info.ExpiresAt,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		info, ok := a.guard.Current(ctx)
		if jsonOutput {
			return printJSON(cmd, statusView(info, ok))
		}

		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "🔓 Not logged in. Run: scic login")
			return nil
		}

		remaining := a.guard.TimeRemaining(ctx).Round(time.Second)
		fmt.Fprintf(out, "👤 %s\n", info.Identity)
		fmt.Fprintf(out, "   Logged in: %s\n", formatTime(info.IssuedAt))
		fmt.Fprintf(out, "   Expires:   %s (%s left)\n", formatTime(info.ExpiresAt), remaining)
		return nil
	})
}
