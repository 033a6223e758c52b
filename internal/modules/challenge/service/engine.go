package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"detox/internal/modules/challenge/domain"
	challengeout "detox/internal/modules/challenge/port/out"
	"detox/internal/platform/clock"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/lock"
	"detox/internal/platform/logging"
	"detox/internal/platform/metrics"
	"detox/internal/platform/tx"
	"detox/internal/platform/username"
)

// Engine records qualifying days and credits completion rewards. Each
// evaluation runs under the user's lock inside one transaction.
type Engine struct {
	outcomes challengeout.OutcomeStore
	ledger   challengeout.Ledger
	locker   lock.Locker
	txm      tx.Manager
	clock    clock.Clock
	logger   hclog.Logger
}

func NewEngine(outcomes challengeout.OutcomeStore, ledger challengeout.Ledger, locker lock.Locker, txm tx.Manager, clk clock.Clock, logger hclog.Logger) *Engine {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Engine{
		outcomes: outcomes,
		ledger:   ledger,
		locker:   locker,
		txm:      txm,
		clock:    clk,
		logger:   logging.OrNull(logger).Named("challenge"),
	}
}

// Evaluate scores usage for date against every challenge with the given baseline.
func (e *Engine) Evaluate(ctx context.Context, user string, date time.Time, usage domain.Usage, baseline int) (domain.Evaluation, error) {
	return e.evaluate(ctx, user, date, usage, func(context.Context) (int, error) { return baseline, nil })
}

// EvaluateStored is Evaluate with the baseline read from the ledger inside the same unit.
func (e *Engine) EvaluateStored(ctx context.Context, user string, date time.Time, usage domain.Usage) (domain.Evaluation, error) {
	return e.evaluate(ctx, user, date, usage, func(ctx context.Context) (int, error) {
		baseline, err := e.ledger.Baseline(ctx, user)
		if err != nil {
			return 0, wrapStore("read baseline", err)
		}
		return baseline, nil
	})
}

func (e *Engine) evaluate(ctx context.Context, user string, date time.Time, usage domain.Usage, baselineOf func(context.Context) (int, error)) (domain.Evaluation, error) {
	user = username.Canonical(user)
	if err := validate(user, date, usage); err != nil {
		metrics.EvaluationsTotal.WithLabelValues("invalid").Inc()
		return domain.Evaluation{}, err
	}

	started := e.clock.Now()
	ctx, unlock, err := e.locker.Lock(ctx, user)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		return domain.Evaluation{}, fmt.Errorf("%w: lock user %s: %w", apperrors.ErrPersistence, user, err)
	}
	defer unlock()

	var result domain.Evaluation
	err = e.txm.Within(ctx, func(ctx context.Context) error {
		if err := e.ledger.LockAccount(ctx, user); err != nil {
			return wrapStore("lock account", err)
		}
		baseline, err := baselineOf(ctx)
		if err != nil {
			return err
		}
		if baseline < 0 {
			return fmt.Errorf("%w: baseline %d is negative", apperrors.ErrValidation, baseline)
		}
		result, err = e.score(ctx, user, date, usage, baseline)
		if err != nil {
			return err
		}
		tx.AfterCommit(ctx, func() { e.committed(user, result, started) })
		return nil
	})
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		e.logger.Warn("evaluation rolled back", "user", user, "date", clock.FormatDate(date), "error", err)
		return domain.Evaluation{}, err
	}
	e.logger.Debug("evaluated", "user", user, "date", clock.FormatDate(date), "total", usage.Total, "points", result.PointsAwarded)
	return result, nil
}

// committed reports an evaluation once the outermost unit holding it commits.
func (e *Engine) committed(user string, result domain.Evaluation, started time.Time) {
	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()
	metrics.EvaluateDurationSeconds.Observe(e.clock.Now().Sub(started).Seconds())
	for _, r := range result.Results {
		if r.Recorded {
			metrics.ChallengeDaysPassedTotal.WithLabelValues(string(r.ChallengeID)).Inc()
		}
		if r.JustClaimed {
			metrics.RewardsIssuedTotal.WithLabelValues(string(r.ChallengeID)).Inc()
			metrics.RewardPointsTotal.Add(float64(r.Reward))
			e.logger.Info("challenge completed", "user", user, "challenge", r.ChallengeID, "reward", r.Reward, "days", r.Progress)
		}
	}
}

func (e *Engine) score(ctx context.Context, user string, date time.Time, usage domain.Usage, baseline int) (domain.Evaluation, error) {
	out := domain.Evaluation{User: user, Date: date}
	for _, def := range domain.Registry() {
		r := domain.Result{ChallengeID: def.ID, WindowDays: def.WindowDays}

		has, err := e.outcomes.HasOutcome(ctx, user, def.ID, date)
		if err != nil {
			return domain.Evaluation{}, wrapStore("check outcome", err)
		}
		if has {
			r.AlreadyRecorded = true
			r.Passed = true
		} else if def.Passes(usage, baseline) {
			r.Passed = true
			r.Recorded, err = e.outcomes.InsertOutcome(ctx, user, def.ID, date)
			if err != nil {
				return domain.Evaluation{}, wrapStore("insert outcome", err)
			}
		}

		r.Progress, err = e.outcomes.CountOutcomes(ctx, user, def.ID)
		if err != nil {
			return domain.Evaluation{}, wrapStore("count outcomes", err)
		}
		r.State = def.State(r.Progress)
		if r.Recorded && r.Progress == def.WindowDays {
			if err := e.ledger.CreditPoints(ctx, user, def.RewardPoints); err != nil {
				return domain.Evaluation{}, wrapStore("credit points", err)
			}
			r.JustClaimed = true
			r.Reward = def.RewardPoints
			out.PointsAwarded += def.RewardPoints
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}

// Board reports every challenge's progress for date. today is nil when no usage was logged.
func (e *Engine) Board(ctx context.Context, user string, date time.Time, today *domain.Usage) ([]domain.Progress, int, error) {
	user = username.Canonical(user)
	baseline, err := e.ledger.Baseline(ctx, user)
	if err != nil {
		return nil, 0, wrapStore("read baseline", err)
	}
	counts, err := e.outcomes.CountsByChallenge(ctx, user)
	if err != nil {
		return nil, 0, wrapStore("count outcomes", err)
	}
	passed, err := e.outcomes.OutcomesOn(ctx, user, date)
	if err != nil {
		return nil, 0, wrapStore("read outcomes", err)
	}
	defs := domain.Registry()
	out := make([]domain.Progress, 0, len(defs))
	for _, def := range defs {
		out = append(out, domain.Describe(def, counts[def.ID], passed[def.ID], today, baseline))
	}
	return out, baseline, nil
}

// ClearOutcomes drops every recorded day of user. Callers run it inside their own unit.
func (e *Engine) ClearOutcomes(ctx context.Context, user string) error {
	user = username.Canonical(user)
	if err := e.outcomes.ClearAllOutcomes(ctx, user); err != nil {
		return wrapStore("clear outcomes", err)
	}
	return nil
}

func validate(user string, date time.Time, usage domain.Usage) error {
	if user == "" {
		return fmt.Errorf("%w: user is required", apperrors.ErrValidation)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	return usage.Validate()
}

// wrapStore marks err as a persistence failure unless it already carries a domain sentinel.
func wrapStore(op string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrPersistence):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%w: %s: %w", apperrors.ErrPersistence, op, err)
	}
}
