package usecase

import (
	"context"
	"fmt"
	"strings"

	"detox/internal/modules/challenge/domain"
	"detox/internal/modules/challenge/dto"
	challengein "detox/internal/modules/challenge/port/in"
	"detox/internal/modules/challenge/service"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/username"
)

type Interactor struct {
	engine *service.Engine
}

func NewInteractor(engine *service.Engine) challengein.Usecase {
	return &Interactor{engine: engine}
}

func (i *Interactor) Evaluate(ctx context.Context, input dto.EvaluateInput) (dto.EvaluationOutput, error) {
	usage := toUsage(input.Usage)
	var (
		eval domain.Evaluation
		err  error
	)
	if input.Baseline != nil {
		eval, err = i.engine.Evaluate(ctx, input.User, input.Date, usage, *input.Baseline)
	} else {
		eval, err = i.engine.EvaluateStored(ctx, input.User, input.Date, usage)
	}
	if err != nil {
		return dto.EvaluationOutput{}, err
	}
	out := dto.EvaluationOutput{User: eval.User, Date: eval.Date, PointsAwarded: eval.PointsAwarded}
	for _, r := range eval.Results {
		def, _ := domain.Lookup(r.ChallengeID)
		out.Results = append(out.Results, dto.ChallengeResult{
			ID:              string(r.ChallengeID),
			Title:           def.Title,
			Passed:          r.Passed,
			AlreadyRecorded: r.AlreadyRecorded,
			Recorded:        r.Recorded,
			Progress:        r.Progress,
			WindowDays:      r.WindowDays,
			State:           string(r.State),
			JustClaimed:     r.JustClaimed,
			Reward:          r.Reward,
		})
	}
	return out, nil
}

func (i *Interactor) Board(ctx context.Context, input dto.BoardInput) (dto.BoardOutput, error) {
	user := username.Canonical(input.User)
	if user == "" {
		return dto.BoardOutput{}, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	var today *domain.Usage
	if input.Today != nil {
		u := toUsage(*input.Today)
		today = &u
	}
	rows, baseline, err := i.engine.Board(ctx, user, input.Date, today)
	if err != nil {
		return dto.BoardOutput{}, err
	}
	out := dto.BoardOutput{User: user, Date: input.Date, Baseline: baseline}
	for _, p := range rows {
		out.Rows = append(out.Rows, dto.BoardRow{
			ChallengeOutput: toChallengeOutput(p.Definition),
			Count:           p.Count,
			Percent:         p.Percent(),
			State:           string(p.State),
			Today:           string(p.Today),
			TodayValue:      p.TodayValue,
			Limit:           p.Limit,
		})
	}
	return out, nil
}

func (i *Interactor) Catalog(context.Context) []dto.ChallengeOutput {
	defs := domain.Registry()
	out := make([]dto.ChallengeOutput, 0, len(defs))
	for _, def := range defs {
		out = append(out, toChallengeOutput(def))
	}
	return out
}

func (i *Interactor) ClearProgress(ctx context.Context, user string) error {
	return i.engine.ClearOutcomes(ctx, user)
}

func toUsage(s dto.UsageSnapshot) domain.Usage {
	apps := make(map[string]int, len(s.Apps))
	for label, minutes := range s.Apps {
		apps[strings.ToLower(label)] = minutes
	}
	return domain.Usage{Total: s.Total, Apps: apps}
}

func toChallengeOutput(def domain.Definition) dto.ChallengeOutput {
	return dto.ChallengeOutput{
		ID:           string(def.ID),
		Title:        def.Title,
		Description:  def.Description,
		Difficulty:   string(def.Difficulty),
		WindowDays:   def.WindowDays,
		RewardPoints: def.RewardPoints,
		RewardText:   def.RewardText(),
	}
}
