// ABOUTME: Root command for the cabdesk CLI
// ABOUTME: Handles global flags and wires config, session store, API client, and session manager

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/config"
	"github.com/markalston/cabdesk/internal/debuglog"
	"github.com/markalston/cabdesk/internal/router"
	"github.com/markalston/cabdesk/internal/session"
	"github.com/markalston/cabdesk/internal/store"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	storeName  string
	configDir  string
)

const defaultAPIURL = config.DefaultAPIURL

// Exit codes shared by every command
const (
	exitOK     = 0
	exitDenied = 1 // not logged in, wrong role, or credentials rejected
	exitError  = 2 // connectivity, invalid input, or backend failure
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "cabdesk",
	Short: "Client for the cab booking service",
	Long: `cabdesk is a terminal client for the corporate cab booking service.

Sign in once and the session is kept on this machine; commands for the
admin, HR, and driver roles are available to users holding that role.

Environment Variables:
  CABDESK_API_URL        Backend API URL (default: http://localhost:8080/api)
  CABDESK_SESSION_STORE  Session store: file, sqlite, redis, or memory (default: file)
  CABDESK_CONFIG_DIR     Directory for the session and debug log
  CABDESK_REDIS_URL      Redis URL when the session store is redis
  CABDESK_PASSWORD       Password for non-interactive login
  CABDESK_LOG_LEVEL      debug.log verbosity (default: info)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides CABDESK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&storeName, "store", "", "Session store: file, sqlite, redis, or memory (overrides CABDESK_SESSION_STORE)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the session and debug log (overrides CABDESK_CONFIG_DIR)")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv(config.EnvPrefix + "API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// deps is everything a command needs to talk to the backend as the current user
type deps struct {
	cfg     *config.Config
	store   store.Store
	client  *client.Client
	manager *session.Manager
}

// setup loads configuration, applies flag overrides, and opens the session store
func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	cfg.APIURL = GetAPIURL()
	if storeName != "" {
		cfg.SessionStore = storeName
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := debuglog.Init(cfg.ConfigDir, cfg.LogLevel)
	if err != nil {
		// Logging is best effort; commands still work without debug.log
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
	}

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		debuglog.Close()
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	c := client.New(cfg.APIURL, client.WithTimeout(cfg.HTTPTimeout))
	m := session.NewManager(st, c, session.WithLogger(logger))
	c.SetTokenSource(m.Token)

	logger.Debug().
		Str("api_url", cfg.APIURL).
		Str("store", string(cfg.StoreKind())).
		Msg("command setup")

	return &deps{cfg: cfg, store: st, client: c, manager: m}, nil
}

// Close releases the session store and the debug log
func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		debuglog.Error("closing session store", err)
	}
	debuglog.Close()
}

// authorize hydrates the session and checks the router would show the user
// the dashboard want. It prints the reason and returns a non-zero exit code
// when the user may not continue.
func authorize(ctx context.Context, w io.Writer, d *deps, want router.View) (session.UserProfile, int) {
	d.manager.Hydrate(ctx)
	snap := d.manager.Snapshot()

	switch view := router.Route(snap, false); {
	case !view.IsDashboard():
		fmt.Fprintln(w, "Error: not logged in. Run 'cabdesk login' first.")
		return session.UserProfile{}, exitDenied
	case view != want:
		fmt.Fprintf(w, "Error: %s commands need the %s role; you are signed in as %s\n",
			want, roleFor(want), snap.Role())
		return session.UserProfile{}, exitDenied
	}
	return *snap.User, exitOK
}

func roleFor(view router.View) session.Role {
	switch view {
	case router.ViewAdmin:
		return session.RoleAdmin
	case router.ViewHR:
		return session.RoleHR
	case router.ViewDriver:
		return session.RoleDriver
	}
	return session.RoleUnknown
}

// exitCodeFor maps a failed call to an exit code; auth rejections are "denied"
func exitCodeFor(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
		return exitDenied
	}
	if errors.Is(err, session.ErrRejected) {
		return exitDenied
	}
	return exitError
}

// errorMessage returns the user-facing text for err
func errorMessage(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// withDeps runs fn with freshly wired dependencies and returns its exit code
func withDeps(ctx context.Context, w io.Writer, fn func(d *deps) int) int {
	d, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer d.Close()
	return fn(d)
}
