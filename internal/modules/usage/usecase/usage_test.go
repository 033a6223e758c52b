package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	challengeout "detox/internal/modules/challenge/adapter/out"
	challengeservice "detox/internal/modules/challenge/service"
	challengeusecase "detox/internal/modules/challenge/usecase"
	usageout "detox/internal/modules/usage/adapter/out"
	"detox/internal/modules/usage/dto"
	usagein "detox/internal/modules/usage/port/in"
	usageport "detox/internal/modules/usage/port/out"
	"detox/internal/modules/usage/service"
	"detox/internal/modules/usage/usecase"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/lock"
	"detox/internal/platform/logging"
	"detox/internal/platform/metrics"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	promdto "github.com/prometheus/client_model/go"
)

type fixedClock struct{ at time.Time }

func (f fixedClock) Now() time.Time { return f.at }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("scan-%d", s.n)
}

type fakeRecognizer struct {
	tokens []string
	err    error
}

func (f fakeRecognizer) Recognize(context.Context, string, string) (usageport.RecognizedText, error) {
	return usageport.RecognizedText{Recognizer: "fake", Tokens: f.tokens}, f.err
}

var now = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

type fixture struct {
	db *sqldb.DB
	uc usagein.Usecase
}

func newFixture(t *testing.T, recognizer usageport.Recognizer) fixture {
	t.Helper()
	return buildFixture(t, recognizer, nil, nil)
}

// buildFixture wires the interactor with outer as its unit of work, or a
// plain SQL transaction manager when outer is nil. The engine always runs on
// the SQL manager and joins whatever transaction the interactor opened.
func buildFixture(t *testing.T, recognizer usageport.Recognizer, outer func(*tx.SQLManager) tx.Manager, logger hclog.Logger) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqldb.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "detox.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clk := fixedClock{at: now}
	locker := lock.NewLocal()
	txm := tx.NewSQLManager(db.DB)
	engine := challengeservice.NewEngine(challengeout.NewSQLOutcomeStore(db, clk), challengeout.NewSQLLedger(db), locker, txm, clk, logger)
	svc := service.NewUsageService(clk, &seqIDs{}, usageout.NewSQLDailyLogStore(db), usageout.NewMemoryScanCache(clk), recognizer, service.Options{ScanTTL: time.Minute})
	var unit tx.Manager = txm
	if outer != nil {
		unit = outer(txm)
	}
	uc := usecase.NewInteractor(svc, challengeusecase.NewInteractor(engine), locker, unit)
	return fixture{db: db, uc: uc}
}

func (f fixture) addUser(t *testing.T, name string, baseline int) {
	t.Helper()
	_, err := f.db.ExecContext(context.Background(),
		`INSERT INTO users (username, points, balance, baseline_minutes, created_at) VALUES (?, 0, 0, ?, ?)`,
		name, baseline, now.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func TestScanConfirmStoresDayAndEvaluates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, fakeRecognizer{tokens: []string{"Screen time", "Instagram", "1h 30m", "YouTube", "45m"}})
	f.addUser(t, "alice", 300)
	ctx := context.Background()

	scan, err := f.uc.Scan(ctx, dto.ScanInput{User: "alice", ImagePath: "/shots/today.png"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !scan.Detected || scan.Total != 135 || scan.Instagram != 90 || scan.YouTube != 45 || scan.ScanID == "" {
		t.Fatalf("unexpected scan preview %+v", scan)
	}
	if scan.Recognizer != "fake" || scan.Tokens != 5 {
		t.Fatalf("unexpected scan metadata %+v", scan)
	}

	out, err := f.uc.Confirm(ctx, dto.ConfirmInput{User: "alice", ScanID: scan.ScanID})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Day.Total != 135 || out.Day.Date.Format("2006-01-02") != "2026-03-10" {
		t.Fatalf("unexpected day %+v", out.Day)
	}
	passed := 0
	for _, r := range out.Evaluation.Results {
		if r.Recorded {
			passed++
		}
	}
	if passed != 3 {
		t.Fatalf("expected C1, C2 and C4 to record (monk mode fails at 135), got %d: %+v", passed, out.Evaluation.Results)
	}

	if _, err := f.uc.Confirm(ctx, dto.ConfirmInput{User: "alice", ScanID: scan.ScanID}); !errors.Is(err, apperrors.ErrScanNotFound) {
		t.Fatalf("expected confirmed scan to be consumed, got %v", err)
	}
	day, err := f.uc.GetDay(ctx, "alice", time.Time{})
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if day.Instagram != 90 {
		t.Fatalf("unexpected stored day %+v", day)
	}
}

func TestScanWithoutUsageIsNotCached(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.addUser(t, "bob", 300)

	scan, err := f.uc.Scan(context.Background(), dto.ScanInput{User: "bob", Tokens: []string{"45m", "Instagram"}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if scan.Detected || scan.Total != 0 || scan.ScanID != "" {
		t.Fatalf("expected no usage detected, got %+v", scan)
	}
}

func TestScanRecognizerFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, fakeRecognizer{err: errors.New("plugin crashed")})
	_, err := f.uc.Scan(context.Background(), dto.ScanInput{User: "bob", ImagePath: "/x.png"})
	if !errors.Is(err, apperrors.ErrRecognizer) {
		t.Fatalf("expected recognizer error, got %v", err)
	}
	if _, err := f.uc.Scan(context.Background(), dto.ScanInput{User: "bob"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input without image or tokens, got %v", err)
	}
}

func TestLogOverwritesDay(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.addUser(t, "carol", 300)
	ctx := context.Background()
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	if _, err := f.uc.Log(ctx, dto.LogInput{User: "carol", Date: date, Total: 400, YouTube: 200, Instagram: 100}); err != nil {
		t.Fatalf("first log: %v", err)
	}
	out, err := f.uc.Log(ctx, dto.LogInput{User: "carol", Date: date, Total: 100, YouTube: 20, Instagram: 30})
	if err != nil {
		t.Fatalf("second log: %v", err)
	}
	if out.Evaluation.PointsAwarded != 0 {
		t.Fatalf("unexpected points %d", out.Evaluation.PointsAwarded)
	}
	days, err := f.uc.History(ctx, dto.HistoryInput{User: "carol"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(days) != 1 || days[0].Total != 100 || days[0].YouTube != 20 {
		t.Fatalf("expected one overwritten day, got %+v", days)
	}
}

func TestLogRejectsInconsistentFigures(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.addUser(t, "dan", 300)
	_, err := f.uc.Log(context.Background(), dto.LogInput{User: "dan", Total: 10, YouTube: 50})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogForUnknownUserSavesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Log(ctx, dto.LogInput{User: "ghost", Total: 100})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	days, err := f.uc.History(ctx, dto.HistoryInput{User: "ghost"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(days) != 0 {
		t.Fatalf("expected the day write to roll back, got %+v", days)
	}
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.addUser(t, "erin", 300)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		date := time.Date(2026, 3, i, 0, 0, 0, 0, time.UTC)
		if _, err := f.uc.Log(ctx, dto.LogInput{User: "erin", Date: date, Total: 100 + i}); err != nil {
			t.Fatalf("log day %d: %v", i, err)
		}
	}
	days, err := f.uc.History(ctx, dto.HistoryInput{User: "erin", Limit: 2})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(days) != 2 || days[0].Total != 105 || days[1].Total != 104 {
		t.Fatalf("unexpected history %+v", days)
	}
	if err := f.uc.ClearHistory(ctx, "erin"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := f.uc.GetDay(ctx, "erin", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected cleared day, got %v", err)
	}
}

// failingCommit runs the unit on the real manager, then fails it after fn
// succeeds so everything written inside rolls back.
type failingCommit struct {
	inner tx.Manager
}

func (m failingCommit) Within(ctx context.Context, fn func(context.Context) error) error {
	return m.inner.Within(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return errors.New("commit failed")
	})
}

// Not parallel: it reads process-wide counters.
func TestRewardSignalWaitsForOuterCommit(t *testing.T) {
	var logs bytes.Buffer
	broken := false
	f := buildFixture(t, nil, func(m *tx.SQLManager) tx.Manager {
		return switchable{ok: m, broken: failingCommit{inner: m}, fail: &broken}
	}, logging.New("detox", "info", false, &logs))
	f.addUser(t, "gina", 300)
	ctx := context.Background()

	for day := 1; day <= 6; day++ {
		date := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
		if _, err := f.uc.Log(ctx, dto.LogInput{User: "gina", Date: date, Total: 200, YouTube: 60, Instagram: 30}); err != nil {
			t.Fatalf("log day %d: %v", day, err)
		}
	}

	rewards := counterValue(t, metrics.RewardsIssuedTotal.WithLabelValues("C1"))
	points := counterValue(t, metrics.RewardPointsTotal)
	broken = true
	_, err := f.uc.Log(ctx, dto.LogInput{User: "gina", Date: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), Total: 200, YouTube: 60, Instagram: 30})
	if err == nil {
		t.Fatalf("expected the failed commit to surface")
	}

	if got := counterValue(t, metrics.RewardsIssuedTotal.WithLabelValues("C1")); got != rewards {
		t.Fatalf("rewards counter moved from %v to %v on a rolled back day", rewards, got)
	}
	if got := counterValue(t, metrics.RewardPointsTotal); got != points {
		t.Fatalf("reward points moved from %v to %v on a rolled back day", points, got)
	}
	if strings.Contains(logs.String(), "challenge completed") {
		t.Fatalf("completion logged for a rolled back day: %s", logs.String())
	}
	var stored int
	if err := f.db.QueryRowContext(ctx, `SELECT points FROM users WHERE username = ?`, "gina").Scan(&stored); err != nil {
		t.Fatalf("read points: %v", err)
	}
	if stored != 0 {
		t.Fatalf("expected no points after rollback, got %d", stored)
	}

	broken = false
	out, err := f.uc.Log(ctx, dto.LogInput{User: "gina", Date: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), Total: 200, YouTube: 60, Instagram: 30})
	if err != nil {
		t.Fatalf("retry day 7: %v", err)
	}
	if out.Evaluation.PointsAwarded != 25 {
		t.Fatalf("expected 25 points on retry, got %d", out.Evaluation.PointsAwarded)
	}
	if got := counterValue(t, metrics.RewardsIssuedTotal.WithLabelValues("C1")); got != rewards+1 {
		t.Fatalf("expected one reward after the retry commits, got %v want %v", got, rewards+1)
	}
	if !strings.Contains(logs.String(), "challenge completed") {
		t.Fatalf("expected completion log after commit: %s", logs.String())
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m promdto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

type switchable struct {
	ok     tx.Manager
	broken tx.Manager
	fail   *bool
}

func (s switchable) Within(ctx context.Context, fn func(context.Context) error) error {
	if *s.fail {
		return s.broken.Within(ctx, fn)
	}
	return s.ok.Within(ctx, fn)
}
