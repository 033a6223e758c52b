package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect holds the few statements that differ between the supported engines.
type Dialect struct {
	Name string
	// InsertIgnore prefixes an insert that silently skips primary key conflicts.
	InsertIgnore string
	// ForUpdate is appended to a select that must lock the read rows until commit.
	ForUpdate string
	// Binary follows a text column that must compare byte for byte.
	Binary string
}

var (
	SQLite = Dialect{Name: "sqlite", InsertIgnore: "INSERT OR IGNORE INTO"}
	MySQL  = Dialect{Name: "mysql", InsertIgnore: "INSERT IGNORE INTO", ForUpdate: " FOR UPDATE", Binary: " COLLATE utf8mb4_bin"}
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

// Schema returns the DDL for d. Usernames compare byte for byte on every engine.
func Schema(d Dialect) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
  username VARCHAR(191)` + d.Binary + ` NOT NULL PRIMARY KEY,
  points INTEGER NOT NULL DEFAULT 0,
  balance DOUBLE NOT NULL DEFAULT 0,
  baseline_minutes INTEGER NOT NULL,
  created_at VARCHAR(32) NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS daily_logs (
  username VARCHAR(191)` + d.Binary + ` NOT NULL,
  log_date VARCHAR(10) NOT NULL,
  total_minutes INTEGER NOT NULL,
  youtube_minutes INTEGER NOT NULL,
  instagram_minutes INTEGER NOT NULL,
  updated_at VARCHAR(32) NOT NULL,
  PRIMARY KEY (username, log_date)
)`,
		`CREATE TABLE IF NOT EXISTS challenge_outcomes (
  username VARCHAR(191)` + d.Binary + ` NOT NULL,
  challenge_id VARCHAR(16) NOT NULL,
  outcome_date VARCHAR(10) NOT NULL,
  recorded_at VARCHAR(32) NOT NULL,
  PRIMARY KEY (username, challenge_id, outcome_date)
)`,
	}
}

// Open connects to driver/dsn and ensures the schema. For sqlite the dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err = sql.Open("sqlite", SQLiteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer at a time; transactions carry their own connection.
		db.SetMaxOpenConns(1)
		dialect = SQLite
	case "mysql":
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		dialect = MySQL
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	out := &DB{DB: db, Dialect: dialect}
	if err := out.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func (d *DB) ensureSchema(ctx context.Context) error {
	for _, ddl := range Schema(d.Dialect) {
		if _, err := d.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
