package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/providers"
	"github.com/vidlens/vidlens/pkg/stages"
	"github.com/vidlens/vidlens/pkg/workflow"
)

type scriptedSource struct {
	asset *providers.AudioAsset
}

func (s *scriptedSource) Fetch(_ context.Context, _ providers.VideoInput) (*providers.AudioAsset, error) {
	return s.asset, nil
}

type scriptedTranscriber struct {
	text string
}

func (s *scriptedTranscriber) Transcribe(_ context.Context, _ string) (providers.Transcription, error) {
	return providers.Transcription{Text: s.text, LanguageCode: "en"}, nil
}

type scriptedReasoner struct {
	bySchema map[string][]byte
	calls    []string
}

func (s *scriptedReasoner) Complete(_ context.Context, req providers.StructuredRequest) ([]byte, error) {
	s.calls = append(s.calls, req.SchemaName)

	return s.bySchema[req.SchemaName], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pipelineController(transcript string, reasoner *scriptedReasoner) *workflow.Controller {
	asset := providers.NewAudioAsset("/tmp/audio.mp3", nil)
	asset.Title = "a song"
	asset.DurationSeconds = 212
	asset.LanguageCode = "en"

	return workflow.NewController(
		workflow.Config{Logger: discardLogger()},
		stages.NewExtraction(
			&scriptedSource{asset: asset},
			&scriptedSource{asset: asset},
			&scriptedTranscriber{text: transcript},
			discardLogger(),
		),
		stages.NewSentiment(reasoner, discardLogger()),
		stages.NewStructuring(reasoner, discardLogger()),
	)
}

func TestPipeline_SuccessfulRun(t *testing.T) {
	t.Parallel()

	reasoner := &scriptedReasoner{bySchema: map[string][]byte{
		"sentiment_analysis":    []byte(`{"sentiment":"positive","sentiment_score":0.85,"tone":"motivational"}`),
		"key_points_extraction": []byte(`{"key_points":["unwavering commitment","loyalty","relationships"]}`),
	}}

	controller := pipelineController(
		"This song is about unwavering commitment and loyalty in relationships",
		reasoner,
	)

	final := controller.Run(context.Background(), models.NewAnalysisState("a-1", "https://www.youtube.com/watch?v=x", ""))

	assert.Equal(t, models.StatusSuccess, final.Status)
	assert.Empty(t, final.Errors)
	assert.Equal(t, []string{"sentiment_analysis", "key_points_extraction"}, reasoner.calls)

	require.NotNil(t, final.FinalResult)
	assert.Equal(t, "a song", final.FinalResult.VideoMetadata.Title)
	assert.Equal(t, 212, final.FinalResult.VideoMetadata.DurationSeconds)
	assert.Equal(t, "en", final.FinalResult.VideoMetadata.LanguageCode)
	assert.Equal(t, models.SentimentPositive, final.FinalResult.Analysis.Sentiment)
	assert.InDelta(t, 0.85, final.FinalResult.Analysis.SentimentScore, 1e-9)
	assert.Equal(t, "motivational", final.FinalResult.Analysis.Tone)
	assert.Len(t, final.FinalResult.Analysis.KeyPoints, models.KeyPointCount)
}

func TestPipeline_EmptyTranscriptFailsEarly(t *testing.T) {
	t.Parallel()

	reasoner := &scriptedReasoner{bySchema: map[string][]byte{}}
	controller := pipelineController("", reasoner)

	final := controller.Run(context.Background(), models.NewAnalysisState("a-2", "https://www.youtube.com/watch?v=x", ""))

	assert.Equal(t, models.StatusFailed, final.Status)
	require.Len(t, final.Errors, 1)
	assert.Equal(t,
		"Audio not found or insufficient. Transcript too short: 0 words, 0 characters. Minimum required: 5 words or 10 characters.",
		final.Errors[0])
	assert.Empty(t, reasoner.calls, "analysis stages must not run without a transcript")
	assert.Nil(t, final.FinalResult)
}
