// ABOUTME: Session store backends and the factory that picks one
// ABOUTME: Backends are passive key-value mirrors; all logic lives in the session manager

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store is a durable key-value surface
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Kind names a store backend
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
	KindMemory Kind = "memory"
)

// Options selects and configures a backend
type Options struct {
	Kind      Kind
	ConfigDir string
	RedisURL  string
}

// ParseKind validates a backend name; empty means file
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindFile:
		return KindFile, nil
	case KindSQLite:
		return KindSQLite, nil
	case KindRedis:
		return KindRedis, nil
	case KindMemory:
		return KindMemory, nil
	default:
		return "", fmt.Errorf("invalid session store %q (must be file, sqlite, redis, or memory)", s)
	}
}

// Open builds the backend described by opts
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case "", KindFile:
		if opts.ConfigDir == "" {
			return nil, fmt.Errorf("file store needs a config directory")
		}
		return NewFile(opts.ConfigDir), nil
	case KindSQLite:
		if opts.ConfigDir == "" {
			return nil, fmt.Errorf("sqlite store needs a config directory")
		}
		return OpenSQLite(filepath.Join(opts.ConfigDir, SQLiteFileName))
	case KindRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis store needs CABDESK_REDIS_URL")
		}
		return OpenRedis(ctx, opts.RedisURL)
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Kind)
	}
}
