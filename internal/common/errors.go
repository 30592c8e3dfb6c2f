package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy. Everything the oracle or the store can do wrong is
// folded into one of these before it crosses a package boundary.
var (
	// ErrInvalidUpload rejects a submission before any record is created:
	// missing file, wrong MIME type, empty payload.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrRateLimited means the extraction provider signaled quota
	// exhaustion; the user gets a distinct retry-later message.
	ErrRateLimited = errors.New("rate limited by extraction provider")
	// ErrMalformedExtraction means the provider responded but the payload
	// was not the expected JSON shape.
	ErrMalformedExtraction = errors.New("malformed extraction response")
	// ErrExtractionFailed covers every other provider-side failure.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrNotFound is returned for operations on a nonexistent course id.
	ErrNotFound = errors.New("resource not found")
	// ErrPersistence is a store-level failure.
	ErrPersistence = errors.New("persistence error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps a classified error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage maps a classified error to the message shown to the client.
// Internal detail never leaks through here.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidUpload):
		return "File must be a PDF"
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please try again in a few minutes."
	case errors.Is(err, ErrMalformedExtraction), errors.Is(err, ErrExtractionFailed):
		return "Failed to process PDF with AI. Please try again."
	case errors.Is(err, ErrNotFound):
		return "Course not found"
	default:
		return "Internal server error"
	}
}
