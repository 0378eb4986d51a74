// Package persistence provides standardized error types for storage operations.
package persistence

import "errors"

var (
	// ErrAnalysisNotFound indicates no analysis exists for the given identifier.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrInvalidSortField indicates an unsupported sort column was requested.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortOrder indicates a sort direction other than asc/desc.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

func IsAnalysisNotFound(err error) bool {
	return errors.Is(err, ErrAnalysisNotFound)
}

func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}

func IsInvalidSortOrder(err error) bool {
	return errors.Is(err, ErrInvalidSortOrder)
}

// SortableFields is the allowlist shared by every implementation.
var SortableFields = []string{"created_at", "updated_at", "title"}
