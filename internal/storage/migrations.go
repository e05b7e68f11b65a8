package storage

import (
	"context"
	"fmt"
)

// migrate runs all database migrations
func (s *SQL) migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateKVState,
	}

	for i, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateKVState = `
CREATE TABLE IF NOT EXISTS kv_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`
