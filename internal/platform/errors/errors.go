package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrValidation marks out-of-domain usage figures reaching evaluation.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence marks a failed durable-store call; the caller may retry.
	ErrPersistence  = errors.New("persistence failure")
	ErrUserExists   = errors.New("user already exists")
	ErrScanNotFound = errors.New("scan not found or expired")
	// ErrNoUsageDetected marks a scan whose tokens yielded zero minutes.
	ErrNoUsageDetected = errors.New("no usage detected")
	ErrRecognizer      = errors.New("recognizer failure")
)

// RetryMessage is shown when a durable write failed and nothing was saved.
const RetryMessage = "could not save today's log, try again"

// Message is the user-facing text for err, shared by the CLI and HTTP surfaces.
// Persistence causes stay internal.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPersistence):
		return RetryMessage
	case errors.Is(err, ErrNoUsageDetected):
		return ErrNoUsageDetected.Error()
	default:
		return err.Error()
	}
}
