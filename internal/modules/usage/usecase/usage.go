package usecase

import (
	"context"
	"fmt"
	"time"

	challengedto "detox/internal/modules/challenge/dto"
	challengein "detox/internal/modules/challenge/port/in"
	"detox/internal/modules/usage/domain"
	"detox/internal/modules/usage/dto"
	usagein "detox/internal/modules/usage/port/in"
	"detox/internal/modules/usage/service"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/lock"
	"detox/internal/platform/tx"
	"detox/internal/platform/username"
)

type Interactor struct {
	svc        *service.UsageService
	challenges challengein.Usecase
	locker     lock.Locker
	txm        tx.Manager
}

func NewInteractor(svc *service.UsageService, challenges challengein.Usecase, locker lock.Locker, txm tx.Manager) usagein.Usecase {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Interactor{svc: svc, challenges: challenges, locker: locker, txm: txm}
}

func (i *Interactor) Today() time.Time {
	return i.svc.Today()
}

func (i *Interactor) Scan(ctx context.Context, input dto.ScanInput) (dto.ScanOutput, error) {
	scan, expires, err := i.svc.Scan(ctx, input.User, input.ImagePath, input.Recognizer, input.Tokens)
	if err != nil {
		return dto.ScanOutput{}, err
	}
	return dto.ScanOutput{
		ScanID:     scan.ID,
		User:       scan.User,
		Recognizer: scan.Recognizer,
		Tokens:     scan.Tokens,
		Detected:   scan.Usage.Detected(),
		Total:      scan.Usage.Total(),
		YouTube:    scan.Usage.YouTube(),
		Instagram:  scan.Usage.Instagram(),
		Apps:       scan.Usage.Apps(),
		ExpiresAt:  expires,
	}, nil
}

func (i *Interactor) Confirm(ctx context.Context, input dto.ConfirmInput) (dto.LogOutput, error) {
	user := username.Canonical(input.User)
	scan, err := i.svc.PendingScan(ctx, user, input.ScanID)
	if err != nil {
		return dto.LogOutput{}, err
	}
	if !scan.Usage.Detected() {
		return dto.LogOutput{}, apperrors.ErrNoUsageDetected
	}
	out, err := i.record(ctx, user, input.Date, scan.Usage)
	if err != nil {
		return dto.LogOutput{}, err
	}
	i.svc.DropScan(ctx, user, scan.ID)
	return out, nil
}

func (i *Interactor) Log(ctx context.Context, input dto.LogInput) (dto.LogOutput, error) {
	return i.record(ctx, username.Canonical(input.User), input.Date, domain.FromTotals(input.Total, input.YouTube, input.Instagram))
}

// record saves the day and evaluates it as one unit under the user's lock.
func (i *Interactor) record(ctx context.Context, user string, date time.Time, usage domain.Aggregate) (dto.LogOutput, error) {
	if user == "" {
		return dto.LogOutput{}, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	if date.IsZero() {
		date = i.svc.Today()
	}
	if err := usage.Validate(); err != nil {
		return dto.LogOutput{}, err
	}

	ctx, unlock, err := i.locker.Lock(ctx, user)
	if err != nil {
		return dto.LogOutput{}, fmt.Errorf("%w: lock user %s: %w", apperrors.ErrPersistence, user, err)
	}
	defer unlock()

	var out dto.LogOutput
	err = i.txm.Within(ctx, func(ctx context.Context) error {
		day, err := i.svc.Record(ctx, user, date, usage)
		if err != nil {
			return err
		}
		out.Day = toDayOutput(day)
		if i.challenges == nil {
			return nil
		}
		out.Evaluation, err = i.challenges.Evaluate(ctx, challengedto.EvaluateInput{
			User:  user,
			Date:  date,
			Usage: challengedto.UsageSnapshot{Total: usage.Total(), Apps: usage.Apps()},
		})
		return err
	})
	if err != nil {
		return dto.LogOutput{}, err
	}
	return out, nil
}

func (i *Interactor) GetDay(ctx context.Context, user string, date time.Time) (dto.DayOutput, error) {
	if date.IsZero() {
		date = i.svc.Today()
	}
	day, err := i.svc.Day(ctx, username.Canonical(user), date)
	if err != nil {
		return dto.DayOutput{}, err
	}
	return toDayOutput(day), nil
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) ([]dto.DayOutput, error) {
	user := username.Canonical(input.User)
	if user == "" {
		return nil, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	days, err := i.svc.History(ctx, user, input.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DayOutput, 0, len(days))
	for _, d := range days {
		out = append(out, toDayOutput(d))
	}
	return out, nil
}

func (i *Interactor) ClearHistory(ctx context.Context, user string) error {
	return i.svc.Clear(ctx, username.Canonical(user))
}

func toDayOutput(d domain.DayLog) dto.DayOutput {
	return dto.DayOutput{
		User:      d.User,
		Date:      d.Date,
		Total:     d.Total,
		YouTube:   d.YouTube,
		Instagram: d.Instagram,
		UpdatedAt: d.UpdatedAt,
	}
}
