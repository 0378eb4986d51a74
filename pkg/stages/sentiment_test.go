package stages_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/providers"
	"github.com/vidlens/vidlens/pkg/stages"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

type fakeReasoner struct {
	response []byte
	err      error
	seen     []providers.StructuredRequest
}

func (f *fakeReasoner) Complete(_ context.Context, req providers.StructuredRequest) ([]byte, error) {
	f.seen = append(f.seen, req)

	if f.err != nil {
		return nil, f.err
	}

	return f.response, nil
}

func extractedState(transcript string) models.AnalysisState {
	state := models.NewAnalysisState("a-1", "https://www.youtube.com/watch?v=x", "")
	state.Transcript = &transcript
	state.Title = strPtr("a title")
	state.Status = models.StatusExtracted

	return state
}

func TestSentiment_Success(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{
		response: []byte(`{"sentiment":"positive","sentiment_score":0.85,"tone":"motivational"}`),
	}

	stage := stages.NewSentiment(reasoner, testLogger())
	delta := stage.Run(context.Background(), extractedState("a transcript with plenty of words"))

	assert.Empty(t, delta.Errors)
	assert.Equal(t, models.StatusAnalyzed, delta.Status)

	require.NotNil(t, delta.Sentiment)
	assert.Equal(t, models.SentimentPositive, *delta.Sentiment)
	require.NotNil(t, delta.SentimentScore)
	assert.InDelta(t, 0.85, *delta.SentimentScore, 1e-9)
	require.NotNil(t, delta.Tone)
	assert.Equal(t, "motivational", *delta.Tone)

	require.Len(t, reasoner.seen, 1)
	assert.Equal(t, "sentiment_analysis", reasoner.seen[0].SchemaName)
	assert.Contains(t, reasoner.seen[0].User, "a transcript with plenty of words")
}

func TestSentiment_SkipsWithoutTranscript(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		state models.AnalysisState
	}{
		{name: "nil transcript", state: models.NewAnalysisState("a-2", "url", "")},
		{name: "empty transcript", state: extractedState("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reasoner := &fakeReasoner{}
			stage := stages.NewSentiment(reasoner, testLogger())

			delta := stage.Run(context.Background(), tc.state)

			assert.Equal(t, models.StatusSkipped, delta.Status)
			assert.Equal(t, []string{"No transcript available"}, delta.Errors)
			assert.Empty(t, reasoner.seen, "provider must not be called on skip")
		})
	}
}

func TestSentiment_ProviderFailure(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{err: errors.New("rate limited")}
	stage := stages.NewSentiment(reasoner, testLogger())

	delta := stage.Run(context.Background(), extractedState("a transcript"))

	assert.Equal(t, models.StatusFailed, delta.Status)
	require.Len(t, delta.Errors, 1)
	assert.Equal(t, "Error analyzing sentiment: rate limited", delta.Errors[0])
}

func TestSentiment_RejectsInvalidResults(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		response string
	}{
		{name: "unknown label", response: `{"sentiment":"ecstatic","sentiment_score":0.5,"tone":"calm"}`},
		{name: "score above one", response: `{"sentiment":"positive","sentiment_score":1.3,"tone":"calm"}`},
		{name: "negative score", response: `{"sentiment":"negative","sentiment_score":-0.1,"tone":"calm"}`},
		{name: "not json", response: `sentiment: positive`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reasoner := &fakeReasoner{response: []byte(tc.response)}
			stage := stages.NewSentiment(reasoner, testLogger())

			delta := stage.Run(context.Background(), extractedState("a transcript"))

			assert.Equal(t, models.StatusFailed, delta.Status)
			require.Len(t, delta.Errors, 1)
			assert.Contains(t, delta.Errors[0], "Error analyzing sentiment:")
		})
	}
}

func TestSentiment_TruncatesLongTranscripts(t *testing.T) {
	t.Parallel()

	reasoner := &fakeReasoner{
		response: []byte(`{"sentiment":"neutral","sentiment_score":0.5,"tone":"calm"}`),
	}
	stage := stages.NewSentiment(reasoner, testLogger())

	long := strings.Repeat("word ", 2000)
	delta := stage.Run(context.Background(), extractedState(long))

	assert.Equal(t, models.StatusAnalyzed, delta.Status)

	require.Len(t, reasoner.seen, 1)
	assert.NotContains(t, reasoner.seen[0].User, long, "prompt carries the bounded transcript, not the full one")
}
