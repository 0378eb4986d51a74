// Package events defines the lifecycle notifications emitted when an
// analysis run reaches a terminal state.
package events

import (
	"time"

	"github.com/vidlens/vidlens/pkg/models"
)

type EventType string

const Topic = "vidlens.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	AnalysisCompletedEvent EventType = "analysis.completed"
	AnalysisFailedEvent    EventType = "analysis.failed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	AnalysisID string    `json:"analysis_id"`
}

// AnalysisCompleted is published when a run finishes with StatusSuccess.
type AnalysisCompleted struct {
	BaseEvent

	VideoURL    string             `json:"video_url"`
	FinalResult models.FinalResult `json:"final_result"`
}

func (e AnalysisCompleted) GetType() EventType {
	return AnalysisCompletedEvent
}

// AnalysisFailed is published when a run halts with StatusFailed or
// StatusSkipped. Errors carries the run's error sequence verbatim.
type AnalysisFailed struct {
	BaseEvent

	VideoURL string        `json:"video_url"`
	Status   models.Status `json:"status"`
	Errors   []string      `json:"errors"`
}

func (e AnalysisFailed) GetType() EventType {
	return AnalysisFailedEvent
}
