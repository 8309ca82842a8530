package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/clinicflow/scheduling-api/internal/adapters/sqlite"
)

// OpenMigratedDB opens a fresh database file under t.TempDir and applies the schema.
func OpenMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "scheduling.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}
