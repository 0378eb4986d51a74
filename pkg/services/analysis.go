package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/vidlens/vidlens/pkg/eventbus"
	"github.com/vidlens/vidlens/pkg/events"
	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/persistence"
)

// Runner executes one workflow run to its terminal state. Satisfied by
// workflow.Controller.
type Runner interface {
	Run(ctx context.Context, initial models.AnalysisState) models.AnalysisState
}

// Analysis runs the workflow for incoming requests, persists terminal states
// and publishes lifecycle events.
type Analysis struct {
	persistence persistence.Persistence
	runner      Runner
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewAnalysis(p persistence.Persistence, runner Runner, publisher eventbus.EventPublisher, logger *slog.Logger) *Analysis {
	return &Analysis{
		persistence: p,
		runner:      runner,
		publisher:   publisher,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Analysis) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// AnalyzeYouTube runs the workflow for a remote video locator. The returned
// record carries the terminal status; workflow failures are data, not error
// returns — the error return is reserved for infrastructure problems.
func (s *Analysis) AnalyzeYouTube(ctx context.Context, videoURL string) (*models.Analysis, error) {
	if videoURL == "" {
		return nil, ErrEmptyVideoURL
	}

	state := models.NewAnalysisState(uuid.NewString(), videoURL, "")

	return s.run(ctx, state)
}

// AnalyzeUpload runs the workflow for a locally uploaded file. The stored
// locator is an upload:// sentinel so persisted rows always carry one.
func (s *Analysis) AnalyzeUpload(ctx context.Context, videoPath, originalName string) (*models.Analysis, error) {
	if videoPath == "" {
		return nil, ErrEmptyVideoPath
	}

	state := models.NewAnalysisState(uuid.NewString(), "upload://"+originalName, videoPath)

	return s.run(ctx, state)
}

func (s *Analysis) run(ctx context.Context, state models.AnalysisState) (*models.Analysis, error) {
	final := s.runner.Run(ctx, state)

	// A cancelled run persists nothing.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis %s cancelled: %w", state.ID, err)
	}

	record := models.AnalysisFromState(final)

	if err := s.persistence.SaveAnalysis(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting analysis %s: %w", record.ID, err)
	}

	s.publishTerminal(ctx, final)

	return record, nil
}

// publishTerminal emits the lifecycle event for a terminal state. Publishing
// is best-effort; a bus failure never fails the analysis itself.
func (s *Analysis) publishTerminal(ctx context.Context, state models.AnalysisState) {
	if s.publisher == nil {
		return
	}

	base := events.BaseEvent{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		AnalysisID: state.ID,
	}

	var (
		event eventbus.Event
		err   error
	)

	if state.Status == models.StatusSuccess && state.FinalResult != nil {
		base.Type = events.AnalysisCompletedEvent
		event = events.AnalysisCompleted{
			BaseEvent:   base,
			VideoURL:    state.VideoURL,
			FinalResult: *state.FinalResult,
		}
	} else {
		base.Type = events.AnalysisFailedEvent
		event = events.AnalysisFailed{
			BaseEvent: base,
			VideoURL:  state.VideoURL,
			Status:    state.Status,
			Errors:    state.Errors,
		}
	}

	if err = s.publisher.Publish(ctx, state.ID, event); err != nil {
		s.logger.Warn("publishing analysis event failed", "analysis_id", state.ID, "error", err)
	}
}

// GetAnalysis fetches one analysis record by identifier.
func (s *Analysis) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	if id == "" {
		return nil, ErrEmptyAnalysisID
	}

	analysis, err := s.persistence.AnalysisByID(ctx, id)
	if err != nil {
		if persistence.IsAnalysisNotFound(err) {
			return nil, err
		}

		return nil, fmt.Errorf("fetching analysis %s: %w", id, err)
	}

	return analysis, nil
}

// ListAnalysesRequest contains options for listing analyses.
type ListAnalysesRequest struct {
	Limit  int
	Offset int

	Status string

	SortBy    string
	SortOrder string
}

// ListAnalysesResponse is one page of analyses.
type ListAnalysesResponse struct {
	Analyses    []*models.Analysis `json:"analyses"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListAnalyses retrieves analyses with filtering, sorting and pagination.
func (s *Analysis) ListAnalyses(ctx context.Context, req ListAnalysesRequest) (*ListAnalysesResponse, error) {
	if err := s.validateListRequest(&req); err != nil {
		return nil, err
	}

	opts := persistence.ListAnalysesOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	if req.Status != "" {
		status := models.Status(req.Status)
		opts.Status = &status
	}

	result, err := s.persistence.ListAnalyses(ctx, opts)
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		if persistence.IsInvalidSortOrder(err) {
			return nil, ErrInvalidSortOrder
		}

		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	return &ListAnalysesResponse{
		Analyses:    result.Analyses,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

func (s *Analysis) validateListRequest(req *ListAnalysesRequest) error {
	if req.Limit <= 0 {
		req.Limit = defaultPageSize
	}

	if req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	if !slices.Contains(persistence.SortableFields, req.SortBy) {
		return ErrInvalidSortField
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return ErrInvalidSortOrder
	}

	if req.Status != "" && !models.Status(req.Status).Valid() {
		return ErrInvalidStatus
	}

	return nil
}
