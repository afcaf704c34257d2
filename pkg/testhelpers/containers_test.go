//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestGetTestDB_MigrationsApplied(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	for _, table := range []string{
		"supplier_evaluations",
		"supplier_evaluation_sequences",
		"supplier_metrics",
		"supplier_ratings",
	} {
		var exists bool
		err := testDB.DB.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist after migrations", table)
		}
	}
}

func TestGetTestDB_Shared(t *testing.T) {
	if GetTestDB(t) != GetTestDB(t) {
		t.Error("expected the same TestDB instance on repeated calls")
	}
}

func TestGetTestRedis_Ping(t *testing.T) {
	rdb := GetTestRedis(t)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
