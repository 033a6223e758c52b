package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "detox/internal/platform/errors"
)

// Status maps an application error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNoUsageDetected):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrScanNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRecognizer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// From converts err into an echo error response.
func From(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(Status(err), apperrors.Message(err)).SetInternal(err)
}
