// ABOUTME: Tests for configuration loading
// ABOUTME: Uses map lookupers so the process environment is never touched

package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/markalston/cabdesk/internal/store"
	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"CABDESK_CONFIG_DIR": "/tmp/cabdesk",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.StoreKind() != store.KindFile {
		t.Errorf("expected file store, got %s", cfg.StoreKind())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %s", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"CABDESK_API_URL":       "https://cabs.example.com/api",
		"CABDESK_SESSION_STORE": "redis",
		"CABDESK_REDIS_URL":     "redis://localhost:6379/2",
		"CABDESK_HTTP_TIMEOUT":  "5s",
		"CABDESK_CONFIG_DIR":    "/tmp/cabdesk",
		"CABDESK_PASSWORD":      "pw",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := cfg.StoreOptions()
	if opts.Kind != store.KindRedis || opts.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("unexpected store options %+v", opts)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.Password != "pw" {
		t.Errorf("expected password from env")
	}
}

func TestLoadWith_UnprefixedIgnored(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_URL":            "http://wrong.example.com",
		"CABDESK_CONFIG_DIR": "/tmp/cabdesk",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("unprefixed variable should be ignored, got %s", cfg.APIURL)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad store",
			env:     map[string]string{"CABDESK_SESSION_STORE": "etcd"},
			wantErr: "SESSION_STORE",
		},
		{
			name:    "redis without url",
			env:     map[string]string{"CABDESK_SESSION_STORE": "redis"},
			wantErr: "REDIS_URL",
		},
		{
			name:    "bad api url",
			env:     map[string]string{"CABDESK_API_URL": "not a url"},
			wantErr: "API_URL",
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"CABDESK_HTTP_TIMEOUT": "0s"},
			wantErr: "HTTP_TIMEOUT",
		},
		{
			name:    "unparseable timeout",
			env:     map[string]string{"CABDESK_HTTP_TIMEOUT": "soon"},
			wantErr: "reading environment",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.env["CABDESK_CONFIG_DIR"] = "/tmp/cabdesk"
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}
