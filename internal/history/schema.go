package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// migrations[v] moves a history database from user_version v to v+1.
// Append to the list; never edit a released step.
var migrations = []string{
	schemaSQL,
}

// ErrSchemaMismatch is returned for a history database written by a newer
// build than this one.
var ErrSchemaMismatch = errors.New("history schema is newer than this build")

// migrate brings the database up to len(migrations), one transaction per
// step. The version lives in SQLite's user_version header field.
func (s *Store) migrate(ctx context.Context) error {
	version, err := s.userVersion(ctx)
	if err != nil {
		return err
	}
	latest := len(migrations)
	if version > latest {
		return fmt.Errorf("%w: %s is at version %d, this build knows %d (delete it to start a fresh history)",
			ErrSchemaMismatch, s.path, version, latest)
	}
	for v := version; v < latest; v++ {
		if err := s.applyMigration(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) userVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read history version: %w", err)
	}
	return version, nil
}

func (s *Store) applyMigration(ctx context.Context, from int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", from+1, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[from]); err != nil {
		return fmt.Errorf("apply migration %d: %w", from+1, err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", from+1)); err != nil {
		return fmt.Errorf("record history version %d: %w", from+1, err)
	}
	return tx.Commit()
}
