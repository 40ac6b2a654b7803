// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"contentops/internal/store"
)

// TestDB connects to the Postgres test database and returns a cleanup
// function. The test is skipped when TEST_DATABASE_URL is not set, so
// backend tests only run where a database is actually available.
func TestDB(t *testing.T) (*store.Postgres, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database-backed test")
	}

	ctx := context.Background()
	pg, err := store.NewPostgres(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pg.RunMigrations(connString); err != nil {
		pg.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		pg.Pool.Exec(ctx, "DELETE FROM suggestions")
		pg.Close()
	}

	return pg, cleanup
}
