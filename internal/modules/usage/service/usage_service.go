package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"detox/internal/modules/usage/domain"
	usageout "detox/internal/modules/usage/port/out"
	"detox/internal/platform/clock"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/id"
	"detox/internal/platform/logging"
	"detox/internal/platform/metrics"
	"detox/internal/platform/username"
)

type Options struct {
	Location *time.Location
	ScanTTL  time.Duration
	Logger   hclog.Logger
}

type UsageService struct {
	clock      clock.Clock
	idGen      id.Generator
	store      usageout.DailyLogStore
	scans      usageout.ScanCache
	recognizer usageout.Recognizer
	loc        *time.Location
	ttl        time.Duration
	logger     hclog.Logger
}

func NewUsageService(clk clock.Clock, idGen id.Generator, store usageout.DailyLogStore, scans usageout.ScanCache, recognizer usageout.Recognizer, opts Options) *UsageService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ScanTTL <= 0 {
		opts.ScanTTL = 15 * time.Minute
	}
	return &UsageService{
		clock:      clk,
		idGen:      idGen,
		store:      store,
		scans:      scans,
		recognizer: recognizer,
		loc:        opts.Location,
		ttl:        opts.ScanTTL,
		logger:     logging.OrNull(opts.Logger).Named("usage"),
	}
}

func (s *UsageService) Today() time.Time {
	return clock.Today(s.clock, s.loc)
}

// Scan parses the tokens of one screenshot. Tokens are recognized from
// imagePath unless given. Only scans with detected usage are cached.
func (s *UsageService) Scan(ctx context.Context, user, imagePath, recognizer string, tokens []string) (domain.Scan, time.Time, error) {
	user = username.Canonical(user)
	if user == "" {
		return domain.Scan{}, time.Time{}, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	if tokens == nil {
		if imagePath == "" {
			return domain.Scan{}, time.Time{}, fmt.Errorf("%w: image path or tokens are required", apperrors.ErrInvalidInput)
		}
		if s.recognizer == nil {
			return domain.Scan{}, time.Time{}, fmt.Errorf("%w: no recognizer configured", apperrors.ErrRecognizer)
		}
		text, err := s.recognizer.Recognize(ctx, recognizer, imagePath)
		if err != nil {
			metrics.ScansTotal.WithLabelValues("error").Inc()
			if errors.Is(err, apperrors.ErrRecognizer) || errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) {
				return domain.Scan{}, time.Time{}, err
			}
			return domain.Scan{}, time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrRecognizer, err)
		}
		tokens = text.Tokens
		recognizer = text.Recognizer
	}

	now := s.clock.Now()
	scan := domain.Scan{
		User:       user,
		Recognizer: recognizer,
		Tokens:     len(tokens),
		Usage:      domain.Parse(tokens),
		CreatedAt:  now,
	}
	if !scan.Usage.Detected() {
		metrics.ScansTotal.WithLabelValues("empty").Inc()
		s.logger.Debug("scan found no usage", "user", user, "tokens", len(tokens))
		return scan, time.Time{}, nil
	}
	scan.ID = s.idGen.New()
	if err := s.scans.Put(ctx, scan, s.ttl); err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return domain.Scan{}, time.Time{}, fmt.Errorf("%w: cache scan: %w", apperrors.ErrPersistence, err)
	}
	metrics.ScansTotal.WithLabelValues("detected").Inc()
	s.logger.Debug("scan cached", "user", user, "scan", scan.ID, "total", scan.Usage.Total())
	return scan, now.Add(s.ttl), nil
}

func (s *UsageService) PendingScan(ctx context.Context, user, scanID string) (domain.Scan, error) {
	scan, err := s.scans.Get(ctx, username.Canonical(user), scanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrScanNotFound) {
			return domain.Scan{}, err
		}
		return domain.Scan{}, fmt.Errorf("%w: read scan: %w", apperrors.ErrPersistence, err)
	}
	return scan, nil
}

// DropScan forgets a confirmed scan. A failure only leaves it to expire.
func (s *UsageService) DropScan(ctx context.Context, user, scanID string) {
	if err := s.scans.Delete(ctx, user, scanID); err != nil {
		s.logger.Warn("drop scan", "user", user, "scan", scanID, "error", err)
	}
}

// Record overwrites the user's log for date with usage.
func (s *UsageService) Record(ctx context.Context, user string, date time.Time, usage domain.Aggregate) (domain.DayLog, error) {
	if err := usage.Validate(); err != nil {
		return domain.DayLog{}, err
	}
	day := domain.DayLog{
		User:      user,
		Date:      date,
		Total:     usage.Total(),
		YouTube:   usage.YouTube(),
		Instagram: usage.Instagram(),
		UpdatedAt: s.clock.Now(),
	}
	if err := s.store.UpsertDay(ctx, day); err != nil {
		return domain.DayLog{}, fmt.Errorf("%w: save day: %w", apperrors.ErrPersistence, err)
	}
	return day, nil
}

func (s *UsageService) Day(ctx context.Context, user string, date time.Time) (domain.DayLog, error) {
	day, err := s.store.GetDay(ctx, user, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.DayLog{}, err
		}
		return domain.DayLog{}, fmt.Errorf("%w: read day: %w", apperrors.ErrPersistence, err)
	}
	return day, nil
}

func (s *UsageService) History(ctx context.Context, user string, limit int) ([]domain.DayLog, error) {
	days, err := s.store.ListDays(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list days: %w", apperrors.ErrPersistence, err)
	}
	return days, nil
}

func (s *UsageService) Clear(ctx context.Context, user string) error {
	if err := s.store.ClearDays(ctx, user); err != nil {
		return fmt.Errorf("%w: clear days: %w", apperrors.ErrPersistence, err)
	}
	return nil
}
