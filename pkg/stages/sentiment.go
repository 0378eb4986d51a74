package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/providers"
)

// Sentiment derives the sentiment label, score and tone from the transcript
// through the structured-reasoning provider.
type Sentiment struct {
	reasoner providers.Reasoner
	logger   *slog.Logger
}

func NewSentiment(reasoner providers.Reasoner, logger *slog.Logger) *Sentiment {
	return &Sentiment{
		reasoner: reasoner,
		logger:   logger,
	}
}

func (s *Sentiment) Name() string { return "sentiment_analysis" }

type sentimentResult struct {
	Sentiment      models.Sentiment `json:"sentiment"`
	SentimentScore float64          `json:"sentiment_score"`
	Tone           string           `json:"tone"`
}

func (s *Sentiment) Run(ctx context.Context, state models.AnalysisState) models.StateDelta {
	logger := s.logger.With("analysis_id", state.ID, "stage", s.Name())

	if state.Transcript == nil || *state.Transcript == "" {
		logger.Warn("skipped: no transcript")

		return models.SkipDelta("No transcript available")
	}

	transcript := truncate(*state.Transcript, maxPromptChars)

	raw, err := s.reasoner.Complete(ctx, providers.StructuredRequest{
		System:     sentimentSystemPrompt,
		User:       fmt.Sprintf(sentimentUserPrompt, transcript),
		SchemaName: "sentiment_analysis",
		Schema:     sentimentSchema,
	})
	if err != nil {
		logger.Error("sentiment analysis failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error analyzing sentiment: %v", err))
	}

	var result sentimentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Error("decoding sentiment result failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error analyzing sentiment: %v", err))
	}

	if !result.Sentiment.Valid() {
		return models.FailureDelta(fmt.Sprintf("Error analyzing sentiment: invalid sentiment label %q", result.Sentiment))
	}

	if result.SentimentScore < 0 || result.SentimentScore > 1 {
		return models.FailureDelta(fmt.Sprintf("Error analyzing sentiment: score %v outside [0, 1]", result.SentimentScore))
	}

	logger.Info("sentiment analysis completed",
		"sentiment", string(result.Sentiment),
		"sentiment_score", result.SentimentScore,
		"tone", result.Tone)

	return models.StateDelta{
		Sentiment:      &result.Sentiment,
		SentimentScore: &result.SentimentScore,
		Tone:           &result.Tone,
		Status:         models.StatusAnalyzed,
	}
}

// truncate bounds a string to limit runes without splitting a rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
