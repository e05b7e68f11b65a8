// Package storage provides the persistent backends behind session.Store.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/session"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the store selected by cfg.Driver, sealed with cfg.Secret when
// one is set. The returned closer must be closed when the store is no longer
// needed.
func Open(ctx context.Context, cfg config.Storage) (session.Store, io.Closer, error) {
	store, closer, err := open(ctx, cfg)
	if err != nil || cfg.Secret == "" {
		return store, closer, err
	}
	return NewSealed(store, cfg.Secret), closer, nil
}

func open(ctx context.Context, cfg config.Storage) (session.Store, io.Closer, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nopCloser{}, nil
	case "file", "":
		return NewFile(cfg.Path), nopCloser{}, nil
	case DriverSQLite:
		s, err := OpenSQL(ctx, DriverSQLite, sqlitePath(cfg.Path))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case DriverPostgres:
		s, err := OpenSQL(ctx, DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		r, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// sqlitePath swaps the default session.json extension for a database file
func sqlitePath(path string) string {
	if strings.HasSuffix(path, ".json") {
		return strings.TrimSuffix(path, ".json") + ".db"
	}
	return path
}
