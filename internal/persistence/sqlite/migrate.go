package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the schema history in order. Each entry runs inside a
// transaction and bumps PRAGMA user_version on success, so a database is
// always at a known version.
var migrations = []string{
	`
	CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('Employee', 'ProjectManager', 'Admin')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);

	CREATE TABLE projects (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		manager_id TEXT NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE assignments (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		manager_id  TEXT NOT NULL REFERENCES users(id),
		employee_id TEXT NOT NULL REFERENCES users(id),
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK (start_date <= end_date)
	);
	CREATE INDEX idx_assignments_employee ON assignments(employee_id, start_date, end_date);
	CREATE INDEX idx_assignments_manager ON assignments(manager_id, employee_id);

	CREATE TABLE events (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		date       TEXT NOT NULL,
		type       TEXT NOT NULL CHECK (type IN ('RemoteWork', 'PaidLeave')),
		status     TEXT NOT NULL CHECK (status IN ('Pending', 'Accepted', 'Declined')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (user_id, date)
	);
	CREATE INDEX idx_events_user_date ON events(user_id, date);

	CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	);
	`,
}

// Migrate brings the database up to the current schema version.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	var version int
	if err := pool.DB().QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports", version)
	}

	for next := version; next < len(migrations); next++ {
		statements := migrations[next]
		target := next + 1
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, statements); err != nil {
				return fmt.Errorf("migration %d failed: %w", target, err)
			}
			// PRAGMA does not accept placeholders.
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
				return fmt.Errorf("failed to record schema version %d: %w", target, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
