// Package persistence provides the storage abstraction for analysis records.
package persistence

import (
	"context"

	"github.com/vidlens/vidlens/pkg/models"
)

// ListAnalysesOptions controls filtering, sorting and pagination of listings.
type ListAnalysesOptions struct {
	Limit  int
	Offset int

	Status *models.Status

	SortBy    string
	SortOrder string
}

// ListAnalysesResult is one page of analysis records.
type ListAnalysesResult struct {
	Analyses    []*models.Analysis
	TotalCount  int64
	HasNextPage bool
}

type Persistence interface {
	SaveAnalysis(ctx context.Context, analysis *models.Analysis) error
	AnalysisByID(ctx context.Context, id string) (*models.Analysis, error)
	ListAnalyses(ctx context.Context, opts ListAnalysesOptions) (*ListAnalysesResult, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
