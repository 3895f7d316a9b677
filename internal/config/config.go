// ABOUTME: Configuration loader for the cabdesk client
// ABOUTME: Reads CABDESK_ environment variables (and an optional .env) with defaults

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/markalston/cabdesk/internal/store"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every variable name below
const EnvPrefix = "CABDESK_"

// DefaultAPIURL is used when neither flag nor environment name a backend
const DefaultAPIURL = "http://localhost:8080/api"

// Config holds the client settings read from CABDESK_ variables
type Config struct {
	APIURL       string        `env:"API_URL, default=http://localhost:8080/api"`
	SessionStore string        `env:"SESSION_STORE, default=file"`
	ConfigDir    string        `env:"CONFIG_DIR"`
	RedisURL     string        `env:"REDIS_URL"`
	LogLevel     string        `env:"LOG_LEVEL, default=info"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT, default=30s"`

	// Password lets scripted logins skip the interactive prompt
	Password string `env:"PASSWORD"`
}

// StoreKind returns the parsed session store backend
func (c *Config) StoreKind() store.Kind {
	kind, err := store.ParseKind(c.SessionStore)
	if err != nil {
		return store.KindFile
	}
	return kind
}

// StoreOptions describes the session store this config selects
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Kind:      c.StoreKind(),
		ConfigDir: c.ConfigDir,
		RedisURL:  c.RedisURL,
	}
}

// Load reads .env (if present) then the process environment
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l, applying defaults and validation
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = store.DefaultConfigDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("%sAPI_URL is not a valid URL: %q", EnvPrefix, c.APIURL)
	}

	kind, err := store.ParseKind(c.SessionStore)
	if err != nil {
		return fmt.Errorf("%sSESSION_STORE: %w", EnvPrefix, err)
	}
	if kind == store.KindRedis && c.RedisURL == "" {
		return fmt.Errorf("%sREDIS_URL is required when %sSESSION_STORE=redis", EnvPrefix, EnvPrefix)
	}
	if (kind == store.KindFile || kind == store.KindSQLite) && c.ConfigDir == "" {
		return fmt.Errorf("%sCONFIG_DIR is required when no home directory is available", EnvPrefix)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%sHTTP_TIMEOUT must be positive, got %s", EnvPrefix, c.HTTPTimeout)
	}
	return nil
}
