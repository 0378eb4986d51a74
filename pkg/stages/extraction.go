// Package stages implements the three processing stages of the analysis
// workflow: extraction, sentiment and structuring.
package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/providers"
)

// Audio-sufficiency floor. A transcript passes when it reaches EITHER
// minimum: only text below both floors is rejected. This guards against the
// transcription provider hallucinating plausible text from silence, which
// downstream stages cannot detect.
const (
	minTranscriptWords = 5
	minTranscriptChars = 10
)

const insufficientAudioMessage = "Audio not found or insufficient. Transcript too short: %d words, %d characters. Minimum required: %d words or %d characters."

// Extraction resolves a video input into a transcript plus source metadata.
// Remote locators go through the remote source, uploaded files through the
// local one; both yield a temporary audio asset that is always cleaned up
// before the stage returns.
type Extraction struct {
	remote providers.AudioSource
	local  providers.AudioSource

	transcriber providers.Transcriber
	logger      *slog.Logger
}

func NewExtraction(remote, local providers.AudioSource, transcriber providers.Transcriber, logger *slog.Logger) *Extraction {
	return &Extraction{
		remote:      remote,
		local:       local,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (e *Extraction) Name() string { return "extraction" }

func (e *Extraction) Run(ctx context.Context, state models.AnalysisState) models.StateDelta {
	logger := e.logger.With("analysis_id", state.ID, "stage", e.Name())

	source := e.remote
	input := providers.VideoInput{URL: state.VideoURL}

	if state.VideoPath != "" {
		source = e.local
		input = providers.VideoInput{Path: state.VideoPath}
	}

	asset, err := source.Fetch(ctx, input)
	if err != nil {
		logger.Error("fetching audio failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error while downloading audio: %v", err))
	}

	defer func() {
		if cleanupErr := asset.Cleanup(); cleanupErr != nil {
			logger.Warn("removing temporary audio failed", "error", cleanupErr)
		}
	}()

	transcription, err := e.transcriber.Transcribe(ctx, asset.Path)
	if err != nil {
		logger.Error("transcription failed", "error", err)

		return models.FailureDelta(fmt.Sprintf("Error while transcribing audio: %v", err))
	}

	transcript := strings.TrimSpace(transcription.Text)

	wordCount := len(strings.Fields(transcript))
	charCount := utf8.RuneCountInString(transcript)

	if wordCount < minTranscriptWords && charCount < minTranscriptChars {
		logger.Warn("transcript below sufficiency floor", "words", wordCount, "chars", charCount)

		return models.FailureDelta(fmt.Sprintf(insufficientAudioMessage,
			wordCount, charCount, minTranscriptWords, minTranscriptChars))
	}

	language := asset.LanguageCode
	if language == "" {
		language = transcription.LanguageCode
	}

	logger.Info("extraction completed",
		"title", asset.Title,
		"duration_seconds", asset.DurationSeconds,
		"language_code", language,
		"transcript_chars", charCount)

	title := asset.Title
	duration := asset.DurationSeconds

	return models.StateDelta{
		Transcript:      &transcript,
		Title:           &title,
		DurationSeconds: &duration,
		LanguageCode:    &language,
		Status:          models.StatusExtracted,
	}
}
