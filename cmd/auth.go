// ABOUTME: login, register, logout, and whoami commands
// ABOUTME: Every session change goes through the session manager so the TUI sees the same state

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	regUsername string
	regEmail    string
	regPassword string
	regConfirm  string
	regRole     string
)

// promptPassword asks for a password without echoing it. Tests replace it.
var promptPassword = func(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	return password, err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session on this machine",
	Long: `Sign in with email and password.

The password is taken from --password, then CABDESK_PASSWORD, and is
otherwise prompted for.

Exit codes:
  0 - Signed in
  1 - Credentials rejected
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout, loginEmail, loginPassword)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `Create an account with a role of ADMIN, HR, or DRIVER, then sign in.

Exit codes:
  0 - Account created and signed in
  1 - Registration rejected, or created but automatic sign-in failed
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRegister(ctx, os.Stdout, forms.Registration{
			Username: regUsername,
			Email:    regEmail,
			Password: regPassword,
			Confirm:  regConfirm,
			Role:     regRole,
		})
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session stored on this machine",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user and, for JWT tokens, when the token expires.

Exit codes:
  0 - Signed in
  1 - Not signed in
  2 - Error`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout, time.Now())
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prefer CABDESK_PASSWORD or the prompt)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&regUsername, "username", "", "Display name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "Password, at least 6 characters (prompted if omitted)")
	registerCmd.Flags().StringVar(&regConfirm, "confirm", "", "Password confirmation (defaults to --password)")
	registerCmd.Flags().StringVar(&regRole, "role", "HR", "Role: ADMIN, HR, or DRIVER")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, email, password string) int {
	return withDeps(ctx, w, func(d *deps) int {
		d.manager.Hydrate(ctx)

		if password == "" {
			password = d.cfg.Password
		}
		if password == "" {
			p, err := promptPassword("Password for " + strings.TrimSpace(email))
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
			password = p
		}

		if err := d.manager.Login(ctx, email, password); err != nil {
			fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
			return exitCodeFor(err)
		}

		user := d.manager.CurrentUser()
		if IsJSONOutput() {
			printJSON(w, user)
		} else {
			fmt.Fprintf(w, "Logged in as %s (%s)\n", user.Email, user.Role)
		}
		return exitOK
	})
}

// runRegister creates an account, signs in, and returns exit code
func runRegister(ctx context.Context, w io.Writer, form forms.Registration) int {
	if form.Password == "" {
		p, err := promptPassword("Choose a password")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		form.Password = p
		c, err := promptPassword("Confirm password")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		form.Confirm = c
	} else if form.Confirm == "" {
		form.Confirm = form.Password
	}

	if err := form.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitError
	}

	return withDeps(ctx, w, func(d *deps) int {
		d.manager.Hydrate(ctx)

		err := d.manager.Register(ctx, form.Session())
		switch {
		case errors.Is(err, session.ErrRegisteredNotLoggedIn):
			fmt.Fprintf(w, "Account created, but signing in failed: %s\n", errorMessage(err))
			fmt.Fprintln(w, "Run 'cabdesk login' to sign in.")
			return exitDenied
		case err != nil:
			fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
			if errors.Is(err, session.ErrValidation) {
				return exitError
			}
			return exitCodeFor(err)
		}

		user := d.manager.CurrentUser()
		if IsJSONOutput() {
			printJSON(w, user)
		} else {
			fmt.Fprintf(w, "Account created. Logged in as %s (%s)\n", user.Email, user.Role)
		}
		return exitOK
	})
}

// runLogout clears the stored session and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	return withDeps(ctx, w, func(d *deps) int {
		d.manager.Hydrate(ctx)
		was := d.manager.CurrentUser()
		d.manager.Logout(ctx)

		if IsJSONOutput() {
			printJSON(w, map[string]bool{"logged_out": true})
			return exitOK
		}
		if was == nil {
			fmt.Fprintln(w, "Not logged in.")
		} else {
			fmt.Fprintf(w, "Logged out %s\n", was.Email)
		}
		return exitOK
	})
}

// runWhoami prints the signed-in user and returns exit code
func runWhoami(ctx context.Context, w io.Writer, now time.Time) int {
	return withDeps(ctx, w, func(d *deps) int {
		d.manager.Hydrate(ctx)
		user := d.manager.CurrentUser()
		if user == nil {
			if IsJSONOutput() {
				printJSON(w, map[string]bool{"authenticated": false})
			} else {
				fmt.Fprintln(w, "Not logged in.")
			}
			return exitDenied
		}

		info, isJWT := session.InspectToken(d.manager.Token())
		if IsJSONOutput() {
			out := map[string]any{
				"authenticated": true,
				"email":         user.Email,
				"username":      user.Username,
				"role":          user.Role,
			}
			if isJWT && !info.ExpiresAt.IsZero() {
				out["expires_at"] = info.ExpiresAt.UTC().Format(time.RFC3339)
				out["expired"] = info.Expired(now)
			}
			printJSON(w, out)
			return exitOK
		}

		fmt.Fprintf(w, "Email:    %s\nUsername: %s\nRole:     %s\n", user.Email, user.Username, user.Role)
		if isJWT && !info.ExpiresAt.IsZero() {
			state := "valid"
			if info.Expired(now) {
				state = "expired"
			}
			fmt.Fprintf(w, "Token:    %s until %s\n", state, info.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return exitOK
	})
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
