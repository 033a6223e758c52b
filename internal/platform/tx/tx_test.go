package tx_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
)

func openDB(t *testing.T) *sqldb.DB {
	t.Helper()
	db, err := sqldb.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "detox.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countUsers(t *testing.T, db *sqldb.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

func TestSQLManagerCommitsAndRollsBack(t *testing.T) {
	t.Parallel()
	db := openDB(t)
	m := tx.NewSQLManager(db.DB)
	insert := func(ctx context.Context, name string) error {
		_, err := tx.From(ctx, db.DB).ExecContext(ctx, `INSERT INTO users (username, baseline_minutes, created_at) VALUES (?, 300, 'now')`, name)
		return err
	}

	if err := m.Within(context.Background(), func(ctx context.Context) error {
		return insert(ctx, "alice")
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	boom := errors.New("boom")
	err := m.Within(context.Background(), func(ctx context.Context) error {
		if err := insert(ctx, "bob"); err != nil {
			return err
		}
		return m.Within(ctx, func(inner context.Context) error {
			if err := insert(inner, "carol"); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := countUsers(t, db); n != 1 {
		t.Fatalf("expected only committed row, got %d", n)
	}
}

func TestAfterCommitRunsOnlyOnOutermostCommit(t *testing.T) {
	t.Parallel()
	db := openDB(t)
	m := tx.NewSQLManager(db.DB)

	var fired []string
	err := m.Within(context.Background(), func(ctx context.Context) error {
		return m.Within(ctx, func(inner context.Context) error {
			tx.AfterCommit(inner, func() { fired = append(fired, "nested") })
			if len(fired) != 0 {
				t.Fatalf("hook ran before commit")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(fired) != 1 || fired[0] != "nested" {
		t.Fatalf("expected hook after commit, got %v", fired)
	}

	fired = nil
	boom := errors.New("boom")
	err = m.Within(context.Background(), func(ctx context.Context) error {
		if err := m.Within(ctx, func(inner context.Context) error {
			tx.AfterCommit(inner, func() { fired = append(fired, "rolled back") })
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(fired) != 0 {
		t.Fatalf("hook ran after rollback: %v", fired)
	}
}

func TestAfterCommitWithoutUnitRunsImmediately(t *testing.T) {
	t.Parallel()
	ran := false
	tx.AfterCommit(context.Background(), func() { ran = true })
	if !ran {
		t.Fatalf("expected immediate run outside a unit")
	}

	ran = false
	err := tx.NoopManager{}.Within(context.Background(), func(ctx context.Context) error {
		tx.AfterCommit(ctx, func() { ran = true })
		return errors.New("failed")
	})
	if err == nil || ran {
		t.Fatalf("noop unit should drop hooks on error, err=%v ran=%v", err, ran)
	}
}
