package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/providers"
)

// Structuring extracts exactly three key points and assembles the externally
// shaped final result from everything the earlier stages produced.
type Structuring struct {
	reasoner providers.Reasoner
	logger   *slog.Logger
}

func NewStructuring(reasoner providers.Reasoner, logger *slog.Logger) *Structuring {
	return &Structuring{
		reasoner: reasoner,
		logger:   logger,
	}
}

func (s *Structuring) Name() string { return "structuring" }

type keyPointsResult struct {
	KeyPoints []string `json:"key_points"`
}

func (s *Structuring) Run(ctx context.Context, state models.AnalysisState) models.StateDelta {
	logger := s.logger.With("analysis_id", state.ID, "stage", s.Name())

	if state.Transcript == nil || *state.Transcript == "" {
		logger.Warn("skipped: no transcript")

		return models.SkipDelta("No transcript available")
	}

	transcript := truncate(*state.Transcript, maxPromptChars)

	raw, err := s.reasoner.Complete(ctx, providers.StructuredRequest{
		System:     structuringSystemPrompt,
		User:       fmt.Sprintf(structuringUserPrompt, transcript),
		SchemaName: "key_points_extraction",
		Schema:     keyPointsSchema,
	})
	if err != nil {
		logger.Error("structuring failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error analyzing structuring: %v", err))
	}

	var result keyPointsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Error("decoding key points failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error analyzing structuring: %v", err))
	}

	// Never truncate or pad: a wrong cardinality is a provider failure.
	if len(result.KeyPoints) != models.KeyPointCount {
		logger.Error("wrong key point cardinality", "got", len(result.KeyPoints))

		return models.FailureDelta(fmt.Sprintf("Error analyzing structuring: expected exactly %d key points, got %d",
			models.KeyPointCount, len(result.KeyPoints)))
	}

	finalResult := assembleFinalResult(state, result.KeyPoints)

	logger.Info("structuring completed", "key_points", len(result.KeyPoints))

	return models.StateDelta{
		KeyPoints:   result.KeyPoints,
		FinalResult: &finalResult,
		Status:      models.StatusSuccess,
	}
}

func assembleFinalResult(state models.AnalysisState, keyPoints []string) models.FinalResult {
	final := models.FinalResult{
		Analysis: models.AnalysisOutcome{
			KeyPoints: append([]string(nil), keyPoints...),
		},
	}

	if state.Title != nil {
		final.VideoMetadata.Title = *state.Title
	}

	if state.DurationSeconds != nil {
		final.VideoMetadata.DurationSeconds = *state.DurationSeconds
	}

	if state.LanguageCode != nil {
		final.VideoMetadata.LanguageCode = *state.LanguageCode
	}

	if state.Sentiment != nil {
		final.Analysis.Sentiment = *state.Sentiment
	}

	if state.SentimentScore != nil {
		final.Analysis.SentimentScore = *state.SentimentScore
	}

	if state.Tone != nil {
		final.Analysis.Tone = *state.Tone
	}

	return final
}
