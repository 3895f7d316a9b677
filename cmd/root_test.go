// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration plus exit-code mapping

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/router"
	"github.com/markalston/cabdesk/internal/session"
)

func TestGetAPIURL_Default(t *testing.T) {
	os.Unsetenv("CABDESK_API_URL")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "http://localhost:8080/api" {
		t.Errorf("expected default URL http://localhost:8080/api, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	t.Setenv("CABDESK_API_URL", "http://backend.example.com/api")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "http://backend.example.com/api" {
		t.Errorf("expected http://backend.example.com/api, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	t.Setenv("CABDESK_API_URL", "http://backend.example.com/api")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	url := GetAPIURL()
	if url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestSetup_FlagsOverrideConfig(t *testing.T) {
	useTestEnv(t, "http://flag.example.com/api")
	storeName = "sqlite"

	d, err := setup(context.Background())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer d.Close()

	if d.cfg.APIURL != "http://flag.example.com/api" {
		t.Errorf("expected flag API URL, got %s", d.cfg.APIURL)
	}
	if d.cfg.ConfigDir != configDir {
		t.Errorf("expected config dir %s, got %s", configDir, d.cfg.ConfigDir)
	}
	if d.client.BaseURL() != "http://flag.example.com/api" {
		t.Errorf("client built with %s", d.client.BaseURL())
	}
	if d.manager.State() != session.StateLoading {
		t.Errorf("expected manager to await hydration, got %s", d.manager.State())
	}
}

func TestSetup_InvalidStore(t *testing.T) {
	useTestEnv(t, "http://localhost:8080/api")
	storeName = "floppy"

	if _, err := setup(context.Background()); err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", &client.APIError{StatusCode: 401}, exitDenied},
		{"forbidden", fmt.Errorf("wrapped: %w", &client.APIError{StatusCode: 403}), exitDenied},
		{"server error", &client.APIError{StatusCode: 500}, exitError},
		{"rejected login", &session.Error{Kind: session.KindRejected, Message: "bad"}, exitDenied},
		{"network", &session.Error{Kind: session.KindNetwork, Message: "login failed"}, exitError},
		{"plain", errors.New("boom"), exitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRoleFor(t *testing.T) {
	if roleFor(router.ViewAdmin) != session.RoleAdmin {
		t.Error("admin view needs ADMIN")
	}
	if roleFor(router.ViewHR) != session.RoleHR {
		t.Error("hr view needs HR")
	}
	if roleFor(router.ViewDriver) != session.RoleDriver {
		t.Error("driver view needs DRIVER")
	}
	if roleFor(router.ViewLogin) != session.RoleUnknown {
		t.Error("non-dashboard views map to UNKNOWN")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"login", "register", "logout", "whoami", "admin", "hr", "driver", "ui"}
	for _, name := range want {
		if _, _, err := rootCmd.Find([]string{name}); err != nil {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
	for _, path := range [][]string{
		{"admin", "bookings"}, {"admin", "drivers"}, {"admin", "add-driver"},
		{"hr", "bookings"}, {"hr", "book"},
		{"driver", "trips"}, {"driver", "complete"},
	} {
		c, _, err := rootCmd.Find(path)
		if err != nil || c.Name() != path[1] {
			t.Errorf("subcommand %v not registered", path)
		}
	}
}
