package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	profileout "detox/internal/modules/profile/adapter/out"
	"detox/internal/modules/profile/domain"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/sqldb"
)

func TestSQLProfileStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqldb.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "detox.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := profileout.NewSQLProfileStore(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Create(ctx, domain.Profile{Username: "alice", BaselineMinutes: 300, CreatedAt: created}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err = store.Create(ctx, domain.Profile{Username: "alice", BaselineMinutes: 100, CreatedAt: created})
	if !errors.Is(err, apperrors.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if _, err := db.ExecContext(ctx, `UPDATE users SET points = 40, balance = 1.5 WHERE username = 'alice'`); err != nil {
		t.Fatalf("seed points: %v", err)
	}
	p, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Points != 40 || p.BaselineMinutes != 300 || !p.CreatedAt.Equal(created) {
		t.Fatalf("unexpected profile %+v", p)
	}

	if err := store.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	p, _ = store.Get(ctx, "alice")
	if p.Points != 0 || p.Balance != 0 || p.BaselineMinutes != 300 {
		t.Fatalf("expected zeroed balances with baseline kept, got %+v", p)
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Reset(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reset, got %v", err)
	}
}
