// Package services provides the application service in front of the workflow
// engine, plus standardized error types for the HTTP layer to map.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid analysis status")
	ErrEmptyAnalysisID  = errors.New("analysis ID cannot be empty")
	ErrEmptyVideoURL    = errors.New("video URL cannot be empty")
	ErrEmptyVideoPath   = errors.New("video path cannot be empty")
)

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyAnalysisID) ||
		errors.Is(err, ErrEmptyVideoURL) ||
		errors.Is(err, ErrEmptyVideoPath)
}
