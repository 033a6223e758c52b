package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "detox/internal/platform/errors"
)

func TestMessage(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: commit transaction: database is locked", apperrors.ErrPersistence), apperrors.RetryMessage},
		{fmt.Errorf("confirm scan-1: %w", apperrors.ErrNoUsageDetected), "no usage detected"},
		{fmt.Errorf("%w: total minutes -5 is negative", apperrors.ErrValidation), "validation failed: total minutes -5 is negative"},
		{errors.New("other"), "other"},
	}
	for _, tc := range cases {
		if got := apperrors.Message(tc.err); got != tc.want {
			t.Fatalf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
