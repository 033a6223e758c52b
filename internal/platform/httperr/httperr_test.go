package httperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/httperr"
)

func TestFromMapsSentinels(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", apperrors.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: bad", apperrors.ErrInvalidInput), http.StatusBadRequest},
		{apperrors.ErrNoUsageDetected, http.StatusBadRequest},
		{fmt.Errorf("get: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{apperrors.ErrScanNotFound, http.StatusNotFound},
		{apperrors.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("%w: boom", apperrors.ErrRecognizer), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: insert outcome: disk", apperrors.ErrPersistence), http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var he *echo.HTTPError
		if !errors.As(httperr.From(tc.err), &he) {
			t.Fatalf("%v: expected echo error", tc.err)
		}
		if he.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, he.Code)
		}
	}
}

func TestPersistenceMessageHidesCause(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: commit transaction: database is locked", apperrors.ErrPersistence)
	var he *echo.HTTPError
	if !errors.As(httperr.From(err), &he) || he.Message != apperrors.RetryMessage {
		t.Fatalf("expected retry message, got %+v", he)
	}
	if httperr.From(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
