package sqldb_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"detox/internal/platform/sqldb"
)

func TestOpenSQLiteCreatesSchemaIdempotently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "detox.db")

	db, err := sqldb.Open(ctx, "sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if db.Dialect.Name != "sqlite" || db.Dialect.ForUpdate != "" {
		t.Fatalf("unexpected dialect %+v", db.Dialect)
	}
	_ = db.Close()

	db, err = sqldb.Open(ctx, "sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, table := range []string{"users", "daily_logs", "challenge_outcomes"} {
		var n int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := sqldb.Open(context.Background(), "postgres", "x"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()
	dsn := sqldb.SQLiteDSN("/tmp/detox.db")
	if !strings.HasPrefix(dsn, "file:/tmp/detox.db?") || !strings.Contains(dsn, "_txlock=immediate") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if got := sqldb.SQLiteDSN("file:memdb?mode=memory"); got != "file:memdb?mode=memory" {
		t.Fatalf("expected file: dsn untouched, got %q", got)
	}
	if sqldb.MySQL.InsertIgnore != "INSERT IGNORE INTO" || !strings.Contains(sqldb.MySQL.ForUpdate, "FOR UPDATE") {
		t.Fatalf("unexpected mysql dialect %+v", sqldb.MySQL)
	}
}

func TestSchemaComparesUsernamesBytewise(t *testing.T) {
	t.Parallel()
	for _, ddl := range sqldb.Schema(sqldb.MySQL) {
		if !strings.Contains(ddl, "username VARCHAR(191) COLLATE utf8mb4_bin NOT NULL") {
			t.Fatalf("mysql username column is not binary: %s", ddl)
		}
	}
	for _, ddl := range sqldb.Schema(sqldb.SQLite) {
		if strings.Contains(ddl, "COLLATE") {
			t.Fatalf("sqlite ddl should keep its binary default: %s", ddl)
		}
	}
}
