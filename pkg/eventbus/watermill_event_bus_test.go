package eventbus_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlens/vidlens/pkg/eventbus"
	"github.com/vidlens/vidlens/pkg/events"
	"github.com/vidlens/vidlens/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoChannelEventBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus(testLogger())
	defer func() { _ = bus.Close() }()

	received := make(chan any, 1)

	err := bus.Handle(events.AnalysisCompletedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.AnalysisCompleted{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.AnalysisCompletedEvent,
			Timestamp:  time.Now().UTC(),
			AnalysisID: "a-1",
		},
		VideoURL: "https://www.youtube.com/watch?v=x",
		FinalResult: models.FinalResult{
			Analysis: models.AnalysisOutcome{
				Sentiment:      models.SentimentPositive,
				SentimentScore: 0.85,
				Tone:           "motivational",
				KeyPoints:      []string{"one", "two", "three"},
			},
		},
	}

	require.NoError(t, bus.Publish(ctx, "a-1", published))

	select {
	case event := <-received:
		completed, ok := event.(*events.AnalysisCompleted)
		require.True(t, ok)
		assert.Equal(t, "a-1", completed.AnalysisID)
		assert.Equal(t, models.SentimentPositive, completed.FinalResult.Analysis.Sentiment)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the completed event")
	}
}

func TestGoChannelEventBus_UnhandledTypeIsIgnored(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus(testLogger())
	defer func() { _ = bus.Close() }()

	completedSeen := make(chan struct{}, 1)

	err := bus.Handle(events.AnalysisCompletedEvent, func(_ context.Context, _ any) error {
		completedSeen <- struct{}{}

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// Publish a failed event nobody handles, then a completed one. Seeing
	// the completed event proves the unhandled one was acked and skipped.
	failed := events.AnalysisFailed{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.AnalysisFailedEvent, AnalysisID: "a-1"},
		Status:    models.StatusFailed,
		Errors:    []string{"Error while downloading audio: gone"},
	}
	require.NoError(t, bus.Publish(ctx, "a-1", failed))

	completed := events.AnalysisCompleted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.AnalysisCompletedEvent, AnalysisID: "a-2"},
	}
	require.NoError(t, bus.Publish(ctx, "a-2", completed))

	select {
	case <-completedSeen:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the completed event")
	}
}

func TestGenerateID_Unique(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewGoChannelEventBus(testLogger())
	defer func() { _ = bus.Close() }()

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
