package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/persistence"
)

// setupTestPool opens a migrated pool for the white-box connection and
// migration tests. Repository behavior is tested from the external test
// package through testfixtures.NewSQLiteHarness.
func setupTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "leavedesk_test.db")
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return pool
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := setupTestPool(t)

	// A second run must be a no-op, not a re-creation attempt.
	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var version int
	if err := pool.DB().QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to read user_version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), version)
	}
}

func TestConnectionPool_WithTransaction_RollsBackOnError(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	err := NewUserRepository(pool).CreateUser(ctx, persistence.User{
		ID:           "user1",
		Email:        "a@example.com",
		DisplayName:  "A",
		PasswordHash: "hashed_password",
		Role:         "Employee",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	wantErr := context.Canceled
	err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, execErr := tx.ExecContext(ctx, "DELETE FROM users"); execErr != nil {
			return execErr
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected propagated error, got %v", err)
	}

	if _, err := NewUserRepository(pool).GetUser(ctx, "user1"); err != nil {
		t.Fatalf("expected user to survive rollback: %v", err)
	}
}
