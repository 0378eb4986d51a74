// Package web provides HTTP request and response types for the analysis API.
package web

import (
	"time"

	"github.com/vidlens/vidlens/pkg/models"
)

// CreateYouTubeAnalysisRequest is the body for analyzing a remote video.
type CreateYouTubeAnalysisRequest struct {
	VideoURL string `json:"video_url" validate:"required,url,contains=youtube."`
}

// AnalysisResponse is the created-resource shape for a successful run: the
// metadata group and the analysis group assembled by the structuring stage.
type AnalysisResponse struct {
	ID            string                 `json:"id"`
	VideoMetadata models.VideoMetadata   `json:"video_metadata"`
	Analysis      models.AnalysisOutcome `json:"analysis"`
}

// AnalysisFailureResponse carries the run's error sequence verbatim; the
// message text is part of the documented failure contract.
type AnalysisFailureResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// AnalysisListItem is one row of a listing.
type AnalysisListItem struct {
	ID            string                 `json:"id"`
	VideoURL      string                 `json:"video_url"`
	Status        models.Status          `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	VideoMetadata models.VideoMetadata   `json:"video_metadata"`
	Analysis      models.AnalysisOutcome `json:"analysis"`
	Errors        []string               `json:"errors,omitempty"`
}

// TransformAnalysisResponse maps a successful record into the response shape.
func TransformAnalysisResponse(analysis *models.Analysis) AnalysisResponse {
	final := analysis.FinalResult()

	return AnalysisResponse{
		ID:            analysis.ID,
		VideoMetadata: final.VideoMetadata,
		Analysis:      final.Analysis,
	}
}

// TransformAnalysisListItem maps a record of any status into a listing row.
func TransformAnalysisListItem(analysis *models.Analysis) AnalysisListItem {
	final := analysis.FinalResult()

	return AnalysisListItem{
		ID:            analysis.ID,
		VideoURL:      analysis.VideoURL,
		Status:        analysis.Status,
		CreatedAt:     analysis.CreatedAt,
		VideoMetadata: final.VideoMetadata,
		Analysis:      final.Analysis,
		Errors:        analysis.Errors,
	}
}
