//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/testhelpers"
)

// scratchDatabase creates an empty database owned by the container superuser plus a login role,
// and returns a connection string for that role. grantSchema controls CREATE on schema public.
func scratchDatabase(t *testing.T, name, user string, grantSchema bool) string {
	t.Helper()
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	_, _ = testDB.DB.Exec(ctx, "DROP DATABASE IF EXISTS "+name)
	_, _ = testDB.DB.Exec(ctx, "DROP USER IF EXISTS "+user)

	_, err := testDB.DB.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)
	_, err = testDB.DB.Exec(ctx, "CREATE USER "+user+" WITH PASSWORD 'test_password'")
	require.NoError(t, err)
	_, err = testDB.DB.Exec(ctx, "GRANT CONNECT ON DATABASE "+name+" TO "+user)
	require.NoError(t, err)

	host, err := testDB.Container.Host(ctx)
	require.NoError(t, err)
	port, err := testDB.Container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	if grantSchema {
		superDB, err := sql.Open("pgx", fmt.Sprintf("postgres://supplier:test_password@%s:%s/%s?sslmode=disable", host, port.Port(), name))
		require.NoError(t, err)
		_, err = superDB.Exec("GRANT ALL ON SCHEMA public TO " + user)
		_ = superDB.Close()
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_, _ = testDB.DB.Exec(ctx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()`, name)
		time.Sleep(100 * time.Millisecond)
		_, _ = testDB.DB.Exec(ctx, "DROP DATABASE IF EXISTS "+name)
		_, _ = testDB.DB.Exec(ctx, "DROP USER IF EXISTS "+user)
	})

	return fmt.Sprintf("postgres://%s:test_password@%s:%s/%s?sslmode=disable", user, host, port.Port(), name)
}

func runMigrationsWithTimeout(t *testing.T, db *sql.DB) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- database.RunMigrations(db, zap.NewNop())
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(30 * time.Second):
		t.Fatal("migrations hung instead of returning")
		return nil
	}
}

// Migrations must fail fast, not hang, when the role cannot create tables.
func TestRunMigrations_InsufficientPermissions(t *testing.T) {
	connStr := scratchDatabase(t, "test_migration_perms", "restricted_user", false)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	err = runMigrationsWithTimeout(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestRunMigrations_AppliesSchemaAndIsIdempotent(t *testing.T) {
	connStr := scratchDatabase(t, "test_migration_success", "full_perms_user", true)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, runMigrationsWithTimeout(t, db))
	require.NoError(t, runMigrationsWithTimeout(t, db), "a second run must be a no-op")

	for _, table := range []string{"supplier_evaluations", "supplier_evaluation_sequences", "supplier_metrics", "supplier_ratings"} {
		var exists bool
		require.NoError(t, db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table).Scan(&exists))
		assert.True(t, exists, "table %s", table)
	}

	// A finalized evaluation must carry finalized_at.
	_, err = db.Exec(`
		INSERT INTO supplier_evaluations
			(evaluation_number, reference_date, supplier_id, evaluator_id, evaluation_date, period_start, period_end, status)
		VALUES ('SPE-2026-0001', '2026-10-19', 1, 1, '2026-10-19', '2026-07-01', '2026-09-30', 'finalized')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier_evaluations_finalized_at_chk")
}
