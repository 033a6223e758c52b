package in

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"detox/internal/modules/usage/dto"
	usagein "detox/internal/modules/usage/port/in"
)

type CLIHandler struct {
	usecase usagein.Usecase
}

func NewCLIHandler(usecase usagein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Scan recognizes imagePath, or reads tokens from tokensFile (one per line) when set.
func (h CLIHandler) Scan(ctx context.Context, user, imagePath, tokensFile, recognizer string) (dto.ScanOutput, error) {
	input := dto.ScanInput{User: user, ImagePath: imagePath, Recognizer: recognizer}
	if tokensFile != "" {
		tokens, err := readTokens(tokensFile)
		if err != nil {
			return dto.ScanOutput{}, err
		}
		input.Tokens = tokens
	}
	return h.usecase.Scan(ctx, input)
}

func (h CLIHandler) Confirm(ctx context.Context, user, scanID string, date time.Time) (dto.LogOutput, error) {
	return h.usecase.Confirm(ctx, dto.ConfirmInput{User: user, ScanID: scanID, Date: date})
}

func (h CLIHandler) Log(ctx context.Context, user string, date time.Time, total, youtube, instagram int) (dto.LogOutput, error) {
	return h.usecase.Log(ctx, dto.LogInput{User: user, Date: date, Total: total, YouTube: youtube, Instagram: instagram})
}

func (h CLIHandler) History(ctx context.Context, user string, limit int) ([]dto.DayOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{User: user, Limit: limit})
}

func readTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tokens file: %w", err)
	}
	defer f.Close()
	tokens := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}
	return tokens, nil
}
