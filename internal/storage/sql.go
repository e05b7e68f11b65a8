package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/existflow/scic/internal/session"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQL stores session values in the kv_state table of a sqlite or postgres database
type SQL struct {
	db     *sql.DB
	driver string
}

var _ session.Store = (*SQL)(nil)

// OpenSQL opens or creates the database and runs migrations.
// For sqlite, dsn is a file path.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := NewSQL(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database and runs migrations
func NewSQL(ctx context.Context, db *sql.DB, driver string) (*SQL, error) {
	s := &SQL{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// placeholder returns the n-th (1-based) bind parameter for the driver
func (s *SQL) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	q := "SELECT value FROM kv_state WHERE key = " + s.placeholder(1)

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	q := fmt.Sprintf(
		"INSERT INTO kv_state (key, value) VALUES (%s, %s) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		s.placeholder(1), s.placeholder(2))

	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := "DELETE FROM kv_state WHERE key = " + s.placeholder(1)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, q, k); err != nil {
			return fmt.Errorf("failed to clear %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *SQL) Close() error {
	return s.db.Close()
}
